package entity

import (
	"time"

	"github.com/raffleclub/backend/pkg/enum"
)

type SubscriptionStatus string

var (
	SubscriptionActive    = enum.New(SubscriptionStatus("active"))
	SubscriptionExpired   = enum.New(SubscriptionStatus("expired"))
	SubscriptionCancelled = enum.New(SubscriptionStatus("cancelled"))
)

// Subscription is a paid period of one user in one group. The stored status
// may lag behind the dates, so eligibility is always recomputed from EndDate
// rather than read from Status.
type Subscription struct {
	Base

	UserID string `gorm:"uniqueIndex:idx_subscription_user_group"`
	User   User   `gorm:"foreignKey:UserID"`

	GroupID string `gorm:"uniqueIndex:idx_subscription_user_group"`
	Group   Group  `gorm:"foreignKey:GroupID"`

	StartDate time.Time
	EndDate   time.Time

	// AmountPaid accumulates across renewals.
	AmountPaid float64

	Status        SubscriptionStatus
	PaymentMethod string
	ReceiptURL    string
}
