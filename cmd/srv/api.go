package main

import (
	"fmt"
	"net/http"

	"github.com/raffleclub/backend/internal/middleware"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/pkg/jwt"
	"github.com/raffleclub/backend/pkg/router"
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(cliCtx *cli.Context) error {
	s.loadConfig(cliCtx)
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadDeliveryCaller()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port %s", cfg.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(s.ctx)
	s.router.After(middleware.Logger())

	tokenEngine := jwt.NewEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.TokenExpiration)
	s.router.Before(middleware.ParseAccessToken(tokenEngine))

	// Public API
	{
		router.GET(s.router, "/getRaffle", s.raffleDomain.Get)
		router.GET(s.router, "/getRaffles", s.raffleDomain.GetList)
		router.GET(s.router, "/getWinnerLeaderBoard", s.statisticDomain.GetWinnerLeaderBoard)
		router.GET(s.router, "/getWinCount", s.statisticDomain.GetWinCount)
		router.GET(s.router, "/getGroupAdmins", s.groupDomain.GetAdmins)
	}

	// These following APIs need authentication.
	authRouter := s.router.Branch("/")
	authRouter.Before(middleware.Authenticate())
	{
		// User API
		router.POST(authRouter, "/registerUser", s.userDomain.Register)
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)

		// Raffle API
		router.POST(authRouter, "/createRaffle", s.raffleDomain.Create)
		router.POST(authRouter, "/joinRaffle", s.participationDomain.Join)
		router.POST(authRouter, "/drawRaffle", s.raffleDomain.Draw)
		router.POST(authRouter, "/cancelRaffle", s.raffleDomain.Cancel)

		// Subscription API
		router.POST(authRouter, "/registerSubscription", s.subscriptionDomain.Register)
		router.GET(authRouter, "/getSubscription", s.subscriptionDomain.Get)
		router.GET(authRouter, "/getSubscriptions", s.subscriptionDomain.GetList)
		router.POST(authRouter, "/cancelSubscription", s.subscriptionDomain.Cancel)

		// Group API
		router.POST(authRouter, "/createGroup", s.groupDomain.Create)
		router.POST(authRouter, "/addGroupAdmin", s.groupDomain.AddAdmin)
	}
}
