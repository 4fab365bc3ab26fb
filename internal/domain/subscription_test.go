package domain

import (
	"testing"
	"time"

	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/dateutil"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newSubscriptionDomainForTest(delivery *testutil.MockDeliveryCaller, now time.Time) *subscriptionDomain {
	userRepo := repository.NewUserRepository()
	return NewSubscriptionDomain(
		repository.NewSubscriptionRepository(),
		repository.NewGroupRepository(),
		common.NewGroupRoleVerifier(repository.NewGroupAdminRepository(), userRepo),
		&testutil.MockStorage{},
		delivery,
	).WithClock(func() time.Time { return now })
}

func Test_subscriptionDomain_Register(t *testing.T) {
	ctx := testutil.MockContext()
	delivery := testutil.NewMockDeliveryCaller()
	today := time.Date(2023, time.May, 10, 15, 0, 0, 0, time.UTC)
	subscriptionDomain := newSubscriptionDomainForTest(delivery, today)

	// Only administrators register payments.
	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)
	_, err := subscriptionDomain.Register(ctxMember1, &model.RegisterSubscriptionRequest{
		UserID: testutil.Member3.ID, GroupID: testutil.Group1.ID, Amount: 30,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	// A first payment opens a one month period starting today.
	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	resp, err := subscriptionDomain.Register(ctxOwner1, &model.RegisterSubscriptionRequest{
		UserID: testutil.Member3.ID, GroupID: testutil.Group1.ID, Amount: 30, PaymentMethod: "pix",
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, time.May, 10, 0, 0, 0, 0, time.UTC), resp.Subscription.StartDate)
	require.Equal(t, time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC), resp.Subscription.EndDate)
	require.Equal(t, float64(30), resp.Subscription.AmountPaid)
	require.Len(t, delivery.DirectMessages[testutil.Member3.ID], 1)

	// A payment while the period is live extends it, keeping the start
	// date, and the paid amounts accumulate.
	resp, err = subscriptionDomain.Register(ctxOwner1, &model.RegisterSubscriptionRequest{
		UserID: testutil.Member3.ID, GroupID: testutil.Group1.ID, Amount: 30, PaymentMethod: "pix",
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, time.May, 10, 0, 0, 0, 0, time.UTC), resp.Subscription.StartDate)
	require.Equal(t, time.Date(2023, time.July, 10, 0, 0, 0, 0, time.UTC), resp.Subscription.EndDate)
	require.Equal(t, float64(60), resp.Subscription.AmountPaid)
}

func Test_subscriptionDomain_Register_lapsedRestartsToday(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now()
	subscriptionDomain := newSubscriptionDomainForTest(testutil.NewMockDeliveryCaller(), now)

	// Member2's previous period ended a month ago. The renewal does not
	// stack onto the stale end date, it restarts from the paid period.
	start := dateutil.StartOfDay(now)
	end := start.AddDate(0, 1, 0)
	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	resp, err := subscriptionDomain.Register(ctxOwner1, &model.RegisterSubscriptionRequest{
		UserID:    testutil.Member2.ID,
		GroupID:   testutil.Group1.ID,
		Amount:    30,
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.True(t, resp.Subscription.StartDate.Equal(start))
	require.True(t, resp.Subscription.EndDate.Equal(end))
	require.Equal(t, float64(60), resp.Subscription.AmountPaid)
}

func Test_subscriptionDomain_Register_monthEndSnapsToNextMonth(t *testing.T) {
	ctx := testutil.MockContext()
	today := time.Date(2023, time.May, 30, 9, 0, 0, 0, time.UTC)
	subscriptionDomain := newSubscriptionDomainForTest(testutil.NewMockDeliveryCaller(), today)

	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	resp, err := subscriptionDomain.Register(ctxOwner1, &model.RegisterSubscriptionRequest{
		UserID: testutil.Member3.ID, GroupID: testutil.Group1.ID, Amount: 30,
	})
	require.NoError(t, err)
	require.Equal(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), resp.Subscription.StartDate)
	require.Equal(t, time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), resp.Subscription.EndDate)
}

func Test_subscriptionDomain_GetAndCancel(t *testing.T) {
	ctx := testutil.MockContext()
	now := time.Now()
	subscriptionDomain := newSubscriptionDomainForTest(testutil.NewMockDeliveryCaller(), now)

	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)
	resp, err := subscriptionDomain.Get(ctxMember1, &model.GetSubscriptionRequest{
		GroupID: testutil.Group1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 10, resp.DaysRemaining)

	ctxMember3 := testutil.MockContextWithUserID(ctx, testutil.Member3.ID)
	_, err = subscriptionDomain.Get(ctxMember3, &model.GetSubscriptionRequest{
		GroupID: testutil.Group1.ID,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)

	// A cancelled subscription stops gating access even before its end
	// date.
	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	_, err = subscriptionDomain.Cancel(ctxOwner1, &model.CancelSubscriptionRequest{
		UserID: testutil.Member1.ID, GroupID: testutil.Group1.ID,
	})
	require.NoError(t, err)

	gate := common.NewEligibilityGate(
		repository.NewGroupRepository(), repository.NewSubscriptionRepository())
	decision, err := gate.Check(ctx, testutil.Member1.ID, testutil.Group1.ID)
	require.NoError(t, err)
	require.False(t, decision.Eligible)
}

func Test_eligibilityGate_staleActiveStatus(t *testing.T) {
	ctx := testutil.MockContext()
	gate := common.NewEligibilityGate(
		repository.NewGroupRepository(), repository.NewSubscriptionRepository())

	// One day after the end date the stored status still says active, but
	// the gate recomputes from the dates and refuses.
	dayAfter := testutil.Member1Subscription.EndDate.AddDate(0, 0, 1)
	gate.WithClock(func() time.Time { return dayAfter })

	decision, err := gate.Check(ctx, testutil.Member1.ID, testutil.Group1.ID)
	require.NoError(t, err)
	require.False(t, decision.Eligible)

	// On the end date itself the subscription still covers the day.
	gate.WithClock(func() time.Time { return testutil.Member1Subscription.EndDate })
	decision, err = gate.Check(ctx, testutil.Member1.ID, testutil.Group1.ID)
	require.NoError(t, err)
	require.True(t, decision.Eligible)
	require.Equal(t, 0, decision.DaysRemaining)
}
