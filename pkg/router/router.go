package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raffleclub/backend/pkg/xcontext"
)

// HandlerFunc is the business handler signature. GET handlers receive the
// query string bound into the request struct, POST handlers the JSON body.
type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It may derive a new context, which
// the handler then receives. A returned error short-circuits the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler with the error it produced, if any.
type CloserFunc func(ctx context.Context, err error)

type Router struct {
	Inner gin.IRouter

	ctx     context.Context
	befores []MiddlewareFunc
	afters  []CloserFunc
}

// New creates a router on top of gin. The given context must carry the
// configs, logger, and database handle; every request context derives from
// it.
func New(ctx context.Context) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{Inner: gin.New(), ctx: ctx}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(closer CloserFunc) {
	r.afters = append(r.afters, closer)
}

// Branch creates a sub router with its own middleware chain. Middlewares
// registered on the parent before the branch point are inherited.
func (r *Router) Branch(pattern string) *Router {
	return &Router{
		Inner:   r.Inner.Group(pattern),
		ctx:     r.ctx,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]CloserFunc{}, r.afters...),
	}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) requestContext(ginCtx *gin.Context) context.Context {
	return xcontext.WithHTTPRequest(r.ctx, ginCtx.Request)
}
