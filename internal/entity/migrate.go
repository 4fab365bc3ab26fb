package entity

import (
	"context"

	"github.com/raffleclub/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Group{},
		&GroupAdmin{},
		&Raffle{},
		&RaffleParticipant{},
		&Subscription{},
	)
}
