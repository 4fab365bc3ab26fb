package main

import (
	"context"
	"net/http"

	"github.com/raffleclub/backend/config"
	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/domain"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/logger"
	"github.com/raffleclub/backend/pkg/router"
	"github.com/raffleclub/backend/pkg/storage"
	"github.com/raffleclub/backend/pkg/telegram"
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/raffleclub/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo         repository.UserRepository
	groupRepo        repository.GroupRepository
	groupAdminRepo   repository.GroupAdminRepository
	raffleRepo       repository.RaffleRepository
	participantRepo  repository.ParticipantRepository
	subscriptionRepo repository.SubscriptionRepository

	userDomain          domain.UserDomain
	raffleDomain        domain.RaffleDomain
	participationDomain domain.ParticipationDomain
	subscriptionDomain  domain.SubscriptionDomain
	groupDomain         domain.GroupDomain
	statisticDomain     domain.StatisticDomain

	redisClient    xredis.Client
	storage        storage.Storage
	deliveryCaller telegram.Caller

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cliCtx *cli.Context) {
	cfg, err := config.Load(cliCtx.String("config"))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadDatabase() {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(
		mysql.Open(cfg.ConnectionString()),
		&gorm.Config{TranslateError: true},
	)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadStorage() {
	s.storage = storage.NewS3Storage(xcontext.Configs(s.ctx).Storage)
}

func (s *srv) loadDeliveryCaller() {
	s.deliveryCaller = telegram.NewCaller(xcontext.Configs(s.ctx).Telegram)
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.groupRepo = repository.NewGroupRepository()
	s.groupAdminRepo = repository.NewGroupAdminRepository()
	s.raffleRepo = repository.NewRaffleRepository()
	s.participantRepo = repository.NewParticipantRepository()
	s.subscriptionRepo = repository.NewSubscriptionRepository()
}

func (s *srv) loadDomains() {
	globalRoleVerifier := common.NewGlobalRoleVerifier(s.userRepo)
	groupRoleVerifier := common.NewGroupRoleVerifier(s.groupAdminRepo, s.userRepo)
	eligibilityGate := common.NewEligibilityGate(s.groupRepo, s.subscriptionRepo)

	s.userDomain = domain.NewUserDomain(s.userRepo, s.groupRepo)
	s.raffleDomain = domain.NewRaffleDomain(s.raffleRepo, s.participantRepo,
		s.groupRepo, groupRoleVerifier, s.redisClient, s.deliveryCaller)
	s.participationDomain = domain.NewParticipationDomain(s.raffleRepo,
		s.participantRepo, s.userRepo, eligibilityGate)
	s.subscriptionDomain = domain.NewSubscriptionDomain(s.subscriptionRepo,
		s.groupRepo, groupRoleVerifier, s.storage, s.deliveryCaller)
	s.groupDomain = domain.NewGroupDomain(s.groupRepo, s.groupAdminRepo,
		s.userRepo, globalRoleVerifier, groupRoleVerifier)
	s.statisticDomain = domain.NewStatisticDomain(s.redisClient)
}
