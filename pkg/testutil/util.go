package testutil

import (
	"context"
	"time"

	"github.com/raffleclub/backend/config"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/logger"
	"github.com/raffleclub/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}

	// Every pooled connection of an in-memory sqlite gets its own empty
	// database, so the pool is capped at one connection. Concurrent
	// queries serialize on it instead of seeing missing tables.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Auth: config.AuthConfigs{
			TokenSecret:     "secret",
			TokenExpiration: time.Minute,
		},
		Storage: config.S3Configs{
			ReceiptBucket: "receipts-test",
		},
		Telegram: config.TelegramConfigs{
			Endpoint: "http://localhost",
			BotToken: "test-token",
		},
		Notifier: config.NotifierConfigs{
			Hour:               6,
			Timezone:           "America/Sao_Paulo",
			ExpiringWindowDays: 2,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	InsertFixtures(ctx)
	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
