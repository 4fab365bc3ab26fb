package xcontext

import (
	"context"
	"net/http"

	"github.com/raffleclub/backend/config"
	"github.com/raffleclub/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey     struct{}
	loggerKey      struct{}
	dbKey          struct{}
	txKey          struct{}
	userIDKey      struct{}
	httpRequestKey struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		panic("no configs in context")
	}

	return cfg
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		panic("no logger in context")
	}

	return l
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the database handle of the context. If a transaction was opened
// with WithDBTransaction and is still in-flight, the transaction is returned
// instead.
func DB(ctx context.Context) *gorm.DB {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok && !holder.done {
		return holder.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("no database in context")
	}

	return db
}

type txHolder struct {
	tx   *gorm.DB
	done bool
}

// WithDBTransaction begins a transaction and makes DB() return it until the
// transaction is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txHolder{tx: DB(ctx).Begin()})
}

// WithCommitDBTransaction commits the in-flight transaction, if any.
func WithCommitDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok && !holder.done {
		holder.tx.Commit()
		holder.done = true
	}
}

// WithRollbackDBTransaction rollbacks the in-flight transaction. It is a
// no-op after WithCommitDBTransaction, so it is safe to defer right after the
// transaction is opened.
func WithRollbackDBTransaction(ctx context.Context) {
	if holder, ok := ctx.Value(txKey{}).(*txHolder); ok && !holder.done {
		holder.tx.Rollback()
		holder.done = true
	}
}

func WithRequestUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func RequestUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return userID
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

// HTTPRequest returns the request being served, or nil outside of a request
// scope.
func HTTPRequest(ctx context.Context) *http.Request {
	r, ok := ctx.Value(httpRequestKey{}).(*http.Request)
	if !ok {
		return nil
	}

	return r
}
