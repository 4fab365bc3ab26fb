package cron

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/raffleclub/backend/config"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/dateutil"
	"github.com/raffleclub/backend/pkg/telegram"
	"github.com/raffleclub/backend/pkg/xcontext"
)

// SubscriptionReminderCronJob messages every subscriber whose paid period
// ends within the configured window. It fires once a day at the configured
// wall-clock hour.
type SubscriptionReminderCronJob struct {
	cfg              config.NotifierConfigs
	subscriptionRepo repository.SubscriptionRepository
	groupRepo        repository.GroupRepository
	deliveryCaller   telegram.Caller

	isRunning atomic.Bool
	now       func() time.Time
}

func NewSubscriptionReminderCronJob(
	cfg config.NotifierConfigs,
	subscriptionRepo repository.SubscriptionRepository,
	groupRepo repository.GroupRepository,
	deliveryCaller telegram.Caller,
) *SubscriptionReminderCronJob {
	return &SubscriptionReminderCronJob{
		cfg:              cfg,
		subscriptionRepo: subscriptionRepo,
		groupRepo:        groupRepo,
		deliveryCaller:   deliveryCaller,
		now:              time.Now,
	}
}

// WithClock overrides the job's clock. Tests use it to pin today.
func (job *SubscriptionReminderCronJob) WithClock(now func() time.Time) *SubscriptionReminderCronJob {
	job.now = now
	return job
}

func (job *SubscriptionReminderCronJob) Do(ctx context.Context) {
	// A run still in flight means the previous tick has not finished.
	// The overlapping tick is skipped, not queued.
	if !job.isRunning.CompareAndSwap(false, true) {
		xcontext.Logger(ctx).Warnf("Subscription reminder is still running, skipped this turn")
		return
	}
	defer job.isRunning.Store(false)

	now := job.now()
	subscriptions, err := job.subscriptionRepo.GetExpiring(ctx, now, job.cfg.ExpiringWindowDays)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get expiring subscriptions: %v", err)
		return
	}

	sent, failed := 0, 0
	for i := range subscriptions {
		message, err := job.reminderMessage(ctx, now, &subscriptions[i])
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot compose reminder for %s: %v",
				subscriptions[i].UserID, err)
			failed++
			continue
		}

		if err := job.deliveryCaller.SendDirectMessage(ctx, subscriptions[i].UserID, message); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot remind %s: %v", subscriptions[i].UserID, err)
			failed++
			continue
		}

		sent++
	}

	xcontext.Logger(ctx).Infof("Subscription reminder finished: %d expiring, %d sent, %d failed",
		len(subscriptions), sent, failed)

	logChannel := xcontext.Configs(ctx).Telegram.LogChannelID
	if logChannel != "" && len(subscriptions) > 0 {
		summary := fmt.Sprintf("Expiry reminders: %d expiring, %d sent, %d failed",
			len(subscriptions), sent, failed)
		if _, err := job.deliveryCaller.PostGroupMessage(ctx, logChannel, summary); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot post reminder summary: %v", err)
		}
	}
}

func (job *SubscriptionReminderCronJob) reminderMessage(
	ctx context.Context, now time.Time, sub *entity.Subscription,
) (string, error) {
	group, err := job.groupRepo.GetByID(ctx, sub.GroupID)
	if err != nil {
		return "", err
	}

	switch daysLeft := dateutil.DaysUntil(now, sub.EndDate); daysLeft {
	case 0:
		return fmt.Sprintf(
			"Your subscription of %s expires TODAY. Renew it to keep joining raffles.",
			group.Name), nil
	case 1:
		return fmt.Sprintf(
			"Your subscription of %s expires tomorrow (%s).",
			group.Name, sub.EndDate.Format("02/01/2006")), nil
	default:
		return fmt.Sprintf(
			"Your subscription of %s expires in %d days (%s).",
			group.Name, daysLeft, sub.EndDate.Format("02/01/2006")), nil
	}
}

func (job *SubscriptionReminderCronJob) RunNow() bool {
	return false
}

func (job *SubscriptionReminderCronJob) Next() time.Time {
	return dateutil.NextDailyTrigger(job.now(), job.cfg.Hour, job.cfg.Location())
}
