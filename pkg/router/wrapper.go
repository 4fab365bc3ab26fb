package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		ctx := router.requestContext(ginCtx)

		resp, err := func() (any, error) {
			var err error
			for _, middleware := range router.befores {
				if ctx, err = middleware(ctx); err != nil {
					return nil, err
				}
			}

			var req Request
			switch method {
			case http.MethodGet:
				err = ginCtx.ShouldBindQuery(&req)
			default:
				err = ginCtx.ShouldBindJSON(&req)
			}
			if err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Cannot parse the request")
			}

			return handler(ctx, &req)
		}()

		for _, closer := range router.afters {
			closer(ctx, err)
		}

		if err != nil {
			ginCtx.JSON(http.StatusOK, newErrorResponse(err))
			return
		}

		ginCtx.JSON(http.StatusOK, newResponse(resp))
	}
}
