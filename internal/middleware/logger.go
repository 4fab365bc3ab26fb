package middleware

import (
	"context"
	"errors"

	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/router"
	"github.com/raffleclub/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context, err error) {
		r := xcontext.HTTPRequest(ctx)
		if r == nil {
			return
		}

		if err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %s | %d", r.Method, r.URL.Path, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %s | %v", r.Method, r.URL.Path, err)
			}
		} else {
			xcontext.Logger(ctx).Infof("%s | %s", r.Method, r.URL.Path)
		}
	}
}
