package common

import (
	"context"
	"errors"
	"time"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/dateutil"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type EligibilityDecision struct {
	Eligible bool

	// DaysRemaining is how many whole days the subscription still covers;
	// it is negative one when the group does not gate on subscriptions.
	DaysRemaining int

	// Reason explains a negative decision in user-facing terms.
	Reason string
}

// EligibilityGate decides whether a user may join raffles of a group. The
// decision is always recomputed from the subscription dates; the stored
// status field is only honored for explicit cancellations, because status
// updates lag behind the calendar.
type EligibilityGate struct {
	groupRepo        repository.GroupRepository
	subscriptionRepo repository.SubscriptionRepository

	now func() time.Time
}

func NewEligibilityGate(
	groupRepo repository.GroupRepository,
	subscriptionRepo repository.SubscriptionRepository,
) *EligibilityGate {
	return &EligibilityGate{
		groupRepo:        groupRepo,
		subscriptionRepo: subscriptionRepo,
		now:              time.Now,
	}
}

// WithClock overrides the gate's clock. Tests use it to pin today.
func (g *EligibilityGate) WithClock(now func() time.Time) *EligibilityGate {
	g.now = now
	return g
}

func (g *EligibilityGate) Check(
	ctx context.Context, userID, groupID string,
) (EligibilityDecision, error) {
	group, err := g.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return EligibilityDecision{}, err
	}

	if !group.RequiresSubscription {
		return EligibilityDecision{Eligible: true, DaysRemaining: -1}, nil
	}

	sub, err := g.subscriptionRepo.Get(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EligibilityDecision{
				Eligible: false,
				Reason:   "An active subscription is required to join raffles of this group",
			}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get subscription of user %s: %v", userID, err)
		return EligibilityDecision{}, err
	}

	if sub.Status == entity.SubscriptionCancelled {
		return EligibilityDecision{
			Eligible: false,
			Reason:   "Your subscription was cancelled",
		}, nil
	}

	daysRemaining := dateutil.DaysUntil(g.now(), sub.EndDate)
	if daysRemaining < 0 {
		return EligibilityDecision{
			Eligible: false,
			Reason:   "Your subscription has expired",
		}, nil
	}

	return EligibilityDecision{Eligible: true, DaysRemaining: daysRemaining}, nil
}
