package domain

import (
	"sync"
	"testing"

	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newParticipationDomainForTest() *participationDomain {
	groupRepo := repository.NewGroupRepository()
	subscriptionRepo := repository.NewSubscriptionRepository()
	return NewParticipationDomain(
		repository.NewRaffleRepository(),
		repository.NewParticipantRepository(),
		repository.NewUserRepository(),
		common.NewEligibilityGate(groupRepo, subscriptionRepo),
	)
}

func Test_participationDomain_Join(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group1.ID)
	participationDomain := newParticipationDomainForTest()

	// Member1 holds a live subscription and joins successfully.
	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)
	resp, err := participationDomain.Join(ctxMember1, &model.JoinRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
	require.Equal(t, 1, resp.ParticipantCount)

	// A second join of the same user reports the duplicate.
	_, err = participationDomain.Join(ctxMember1, &model.JoinRaffleRequest{RaffleID: raffle.ID})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)

	// Exactly one participant row exists and the count was bumped once.
	participants, err := repository.NewParticipantRepository().GetByRaffleID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)

	stored, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.ParticipantCount)
}

func Test_participationDomain_Join_concurrentSameUser(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group2.ID)
	participationDomain := newParticipationDomainForTest()
	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)

	// Simultaneous joins of the same user race on the unique index; the
	// insert decides, so exactly one wins no matter the interleaving.
	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := participationDomain.Join(ctxMember1, &model.JoinRaffleRequest{RaffleID: raffle.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	joined, duplicated := 0, 0
	for err := range errs {
		if err == nil {
			joined++
			continue
		}

		var errx errorx.Error
		require.ErrorAs(t, err, &errx)
		require.Equal(t, errorx.AlreadyExists, errx.Code)
		duplicated++
	}
	require.Equal(t, 1, joined)
	require.Equal(t, attempts-1, duplicated)

	participants, err := repository.NewParticipantRepository().GetByRaffleID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Len(t, participants, 1)

	stored, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.ParticipantCount)
}

func Test_participationDomain_Join_subscriptionGate(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group1.ID)
	participationDomain := newParticipationDomainForTest()

	// Member2's subscription lapsed although its stored status still says
	// active. Eligibility comes from the dates, so the join is refused.
	ctxMember2 := testutil.MockContextWithUserID(ctx, testutil.Member2.ID)
	_, err := participationDomain.Join(ctxMember2, &model.JoinRaffleRequest{RaffleID: raffle.ID})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.SubscriptionRequired, errx.Code)

	// Member3 has no subscription at all.
	ctxMember3 := testutil.MockContextWithUserID(ctx, testutil.Member3.ID)
	_, err = participationDomain.Join(ctxMember3, &model.JoinRaffleRequest{RaffleID: raffle.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.SubscriptionRequired, errx.Code)

	// The same users join freely in a group that does not gate.
	openRaffle := testutil.SampleRaffle(ctx, testutil.Group2.ID)
	resp, err := participationDomain.Join(ctxMember3, &model.JoinRaffleRequest{RaffleID: openRaffle.ID})
	require.NoError(t, err)
	require.Equal(t, 1, resp.ParticipantCount)
}

func Test_participationDomain_Join_closedRaffle(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group2.ID)
	participationDomain := newParticipationDomainForTest()

	err := repository.NewRaffleRepository().
		UpdateStatus(ctx, raffle.ID, entity.RaffleOpen, entity.RaffleCancelled)
	require.NoError(t, err)

	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)
	_, err = participationDomain.Join(ctxMember1, &model.JoinRaffleRequest{RaffleID: raffle.ID})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.RaffleClosed, errx.Code)
}
