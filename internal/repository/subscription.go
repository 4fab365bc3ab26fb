package repository

import (
	"context"
	"time"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/dateutil"
	"github.com/raffleclub/backend/pkg/xcontext"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	Get(ctx context.Context, userID, groupID string) (*entity.Subscription, error)
	GetByGroupID(ctx context.Context, groupID string) ([]entity.Subscription, error)

	// Renew applies a payment to an existing subscription: a lapsed period
	// restarts from the given dates, a live one keeps its start date and
	// has its end date pushed out by one period. Paid amounts accumulate.
	Renew(ctx context.Context, existing *entity.Subscription, payment *entity.Subscription, now time.Time) (*entity.Subscription, error)

	Cancel(ctx context.Context, userID, groupID string) error

	// GetExpiring returns active subscriptions whose end date falls within
	// [today, today+withinDays], both bounds inclusive, relative to now.
	GetExpiring(ctx context.Context, now time.Time, withinDays int) ([]entity.Subscription, error)
}

type subscriptionRepository struct{}

func NewSubscriptionRepository() *subscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	return xcontext.DB(ctx).Create(sub).Error
}

func (r *subscriptionRepository) Get(
	ctx context.Context, userID, groupID string,
) (*entity.Subscription, error) {
	var result entity.Subscription
	err := xcontext.DB(ctx).
		Take(&result, "user_id=? AND group_id=?", userID, groupID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *subscriptionRepository) GetByGroupID(
	ctx context.Context, groupID string,
) ([]entity.Subscription, error) {
	var result []entity.Subscription
	err := xcontext.DB(ctx).Where("group_id=?", groupID).
		Order("end_date ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *subscriptionRepository) Renew(
	ctx context.Context,
	existing *entity.Subscription,
	payment *entity.Subscription,
	now time.Time,
) (*entity.Subscription, error) {
	updated := *existing
	if existing.EndDate.Before(dateutil.StartOfDay(now)) {
		// The previous period already lapsed, so the new one starts fresh.
		updated.StartDate = payment.StartDate
		updated.EndDate = payment.EndDate
	} else {
		updated.EndDate = dateutil.AddPeriod(existing.EndDate)
	}

	updated.AmountPaid = existing.AmountPaid + payment.AmountPaid
	updated.Status = entity.SubscriptionActive
	updated.PaymentMethod = payment.PaymentMethod
	if payment.ReceiptURL != "" {
		updated.ReceiptURL = payment.ReceiptURL
	}

	err := xcontext.DB(ctx).Model(&entity.Subscription{}).
		Where("id=?", existing.ID).
		Updates(map[string]any{
			"start_date":     updated.StartDate,
			"end_date":       updated.EndDate,
			"amount_paid":    updated.AmountPaid,
			"status":         updated.Status,
			"payment_method": updated.PaymentMethod,
			"receipt_url":    updated.ReceiptURL,
		}).Error
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, userID, groupID string) error {
	return xcontext.DB(ctx).Model(&entity.Subscription{}).
		Where("user_id=? AND group_id=?", userID, groupID).
		Update("status", entity.SubscriptionCancelled).Error
}

func (r *subscriptionRepository) GetExpiring(
	ctx context.Context, now time.Time, withinDays int,
) ([]entity.Subscription, error) {
	from := dateutil.StartOfDay(now)
	to := from.AddDate(0, 0, withinDays+1)

	var result []entity.Subscription
	err := xcontext.DB(ctx).
		Where("status=?", entity.SubscriptionActive).
		Where("end_date >= ? AND end_date < ?", from, to).
		Order("end_date ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
