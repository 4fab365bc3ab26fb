package middleware

import (
	"context"
	"strings"

	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/jwt"
	"github.com/raffleclub/backend/pkg/router"
	"github.com/raffleclub/backend/pkg/xcontext"
)

// ParseAccessToken extracts the bearer token, if any, and records the user
// id into the context. An absent or invalid token is not an error here;
// Authenticate decides whether the route demands one.
func ParseAccessToken(engine *jwt.Engine[model.AccessToken]) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		r := xcontext.HTTPRequest(ctx)
		if r == nil {
			return ctx, nil
		}

		auth, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || auth != "Bearer" {
			return ctx, nil
		}

		info, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, nil
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if xcontext.RequestUserID(ctx) == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		return ctx, nil
	}
}
