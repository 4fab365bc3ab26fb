package domain

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/testutil"
	"github.com/raffleclub/backend/pkg/xredis"
	"github.com/stretchr/testify/require"
)

func newRaffleDomainForTest(delivery *testutil.MockDeliveryCaller, redisClient xredis.Client) *raffleDomain {
	if redisClient == nil {
		redisClient = &testutil.MockRedisClient{}
	}

	userRepo := repository.NewUserRepository()
	return NewRaffleDomain(
		repository.NewRaffleRepository(),
		repository.NewParticipantRepository(),
		repository.NewGroupRepository(),
		common.NewGroupRoleVerifier(repository.NewGroupAdminRepository(), userRepo),
		redisClient,
		delivery,
	).WithRand(func() *rand.Rand {
		return rand.New(rand.NewSource(7))
	})
}

func Test_raffleDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	delivery := testutil.NewMockDeliveryCaller()
	raffleDomain := newRaffleDomainForTest(delivery, nil)

	// Regular members cannot create raffles.
	ctxMember1 := testutil.MockContextWithUserID(ctx, testutil.Member1.ID)
	_, err := raffleDomain.Create(ctxMember1, &model.CreateRaffleRequest{
		GroupID: testutil.Group1.ID, NumWinners: 1, Prize: "Gift card",
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	// The winner count must be positive.
	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	_, err = raffleDomain.Create(ctxOwner1, &model.CreateRaffleRequest{
		GroupID: testutil.Group1.ID, NumWinners: 0, Prize: "Gift card",
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// The group admin creates the raffle and the announcement is posted.
	resp, err := raffleDomain.Create(ctxOwner1, &model.CreateRaffleRequest{
		GroupID: testutil.Group1.ID, NumWinners: 2, Prize: "Gift card",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, delivery.GroupMessages[testutil.Group1.ID], 1)

	stored, err := repository.NewRaffleRepository().GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RaffleOpen, stored.Status)
	require.NotEmpty(t, stored.AnnouncementID)
}

func Test_raffleDomain_Cancel(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group1.ID)
	raffleDomain := newRaffleDomainForTest(testutil.NewMockDeliveryCaller(), nil)

	ctxOwner1 := testutil.MockContextWithUserID(ctx, testutil.Owner1.ID)
	_, err := raffleDomain.Cancel(ctxOwner1, &model.CancelRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)

	// The performed timestamp belongs to the draw; a cancellation leaves
	// it empty.
	stored, err := repository.NewRaffleRepository().GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RaffleCancelled, stored.Status)
	require.Nil(t, stored.PerformedAt)

	// Terminal statuses never move again.
	_, err = raffleDomain.Cancel(ctxOwner1, &model.CancelRaffleRequest{RaffleID: raffle.ID})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)

	_, err = raffleDomain.Draw(ctxOwner1, &model.DrawRaffleRequest{RaffleID: raffle.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_raffleDomain_Draw(t *testing.T) {
	ctx := testutil.MockContext()
	raffleRepo := repository.NewRaffleRepository()
	participantRepo := repository.NewParticipantRepository()

	raffle := &entity.Raffle{
		Base:       entity.Base{ID: "two-winner-raffle"},
		GroupID:    testutil.Group2.ID,
		NumWinners: 2,
		Prize:      "Gift card",
		Status:     entity.RaffleOpen,
	}
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	delivery := testutil.NewMockDeliveryCaller()
	winBumps := map[string]int{}
	redisClient := &testutil.MockRedisClient{
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			winBumps[member] += int(incr)
			return nil
		},
	}
	raffleDomain := newRaffleDomainForTest(delivery, redisClient)

	// An empty pool is refused before the raffle is closed.
	ctxAdmin := testutil.MockContextWithUserID(ctx, testutil.Admin.ID)
	_, err := raffleDomain.Draw(ctxAdmin, &model.DrawRaffleRequest{RaffleID: raffle.ID})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)

	stored, err := raffleRepo.GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RaffleOpen, stored.Status)

	// Three members join, then the raffle needs two winners.
	participationDomain := newParticipationDomainForTest()
	for _, userID := range []string{testutil.Member1.ID, testutil.Member2.ID, testutil.Member3.ID} {
		_, err := participationDomain.Join(
			testutil.MockContextWithUserID(ctx, userID),
			&model.JoinRaffleRequest{RaffleID: raffle.ID})
		require.NoError(t, err)
	}

	resp, err := raffleDomain.Draw(ctxAdmin, &model.DrawRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)
	require.Len(t, resp.Winners, 2)
	require.NotEqual(t, resp.Winners[0].UserID, resp.Winners[1].UserID)
	require.Equal(t, 1, resp.Winners[0].Position)
	require.Equal(t, 2, resp.Winners[1].Position)

	// Winners are flagged in the database with their positions.
	for _, winner := range resp.Winners {
		participant, err := participantRepo.Get(ctx, raffle.ID, winner.UserID)
		require.NoError(t, err)
		require.True(t, participant.IsWinner)
		require.Equal(t, winner.Position, participant.WinPosition)

		require.Equal(t, 1, winBumps[winner.UserID])
		require.Len(t, delivery.DirectMessages[winner.UserID], 1)
	}

	stored, err = raffleRepo.GetByID(ctx, raffle.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RaffleDrawn, stored.Status)
	require.NotNil(t, stored.PerformedAt)

	// A repeated trigger finds the raffle already performed.
	_, err = raffleDomain.Draw(ctxAdmin, &model.DrawRaffleRequest{RaffleID: raffle.ID})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_raffleDomain_Draw_concurrentTriggers(t *testing.T) {
	ctx := testutil.MockContext()
	raffle := testutil.SampleRaffle(ctx, testutil.Group2.ID)
	raffleDomain := newRaffleDomainForTest(testutil.NewMockDeliveryCaller(), nil)

	participationDomain := newParticipationDomainForTest()
	_, err := participationDomain.Join(
		testutil.MockContextWithUserID(ctx, testutil.Member1.ID),
		&model.JoinRaffleRequest{RaffleID: raffle.ID})
	require.NoError(t, err)

	// Out of several simultaneous triggers exactly one performs the draw.
	ctxAdmin := testutil.MockContextWithUserID(ctx, testutil.Admin.ID)
	const triggers = 4
	errs := make(chan error, triggers)
	var wg sync.WaitGroup
	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := raffleDomain.Draw(ctxAdmin, &model.DrawRaffleRequest{RaffleID: raffle.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	performed := 0
	for err := range errs {
		if err == nil {
			performed++
			continue
		}

		var errx errorx.Error
		require.ErrorAs(t, err, &errx)
		require.Equal(t, errorx.AlreadyExists, errx.Code)
	}
	require.Equal(t, 1, performed)
}

func Test_raffleDomain_Draw_previousWinnersWeighLess(t *testing.T) {
	ctx := testutil.MockContext()
	raffleRepo := repository.NewRaffleRepository()
	participantRepo := repository.NewParticipantRepository()

	// Member1 already won an earlier raffle of the group.
	past := testutil.SampleRaffle(ctx, testutil.Group2.ID)
	_, err := participantRepo.Get(ctx, past.ID, testutil.Member1.ID)
	require.Error(t, err)

	err = participantRepo.Create(ctx, &entity.RaffleParticipant{
		Base:     entity.Base{ID: "past-participant"},
		RaffleID: past.ID,
		UserID:   testutil.Member1.ID,
		Name:     testutil.Member1.Name,
	})
	require.NoError(t, err)
	require.NoError(t, raffleRepo.UpdateStatus(ctx, past.ID, entity.RaffleOpen, entity.RaffleDrawn))
	require.NoError(t, participantRepo.MarkWinner(ctx, past.ID, testutil.Member1.ID, 1))

	raffle := &entity.Raffle{
		Base:       entity.Base{ID: "current-raffle"},
		GroupID:    testutil.Group2.ID,
		NumWinners: 1,
		Prize:      "Trophy",
		Status:     entity.RaffleOpen,
	}
	require.NoError(t, raffleRepo.Create(ctx, raffle))

	raffleDomain := newRaffleDomainForTest(testutil.NewMockDeliveryCaller(), nil)
	pool, err := raffleDomain.snapshotPool(ctx, raffle)
	require.NoError(t, err)
	require.Empty(t, pool)

	for _, userID := range []string{testutil.Member1.ID, testutil.Member2.ID} {
		err := participantRepo.Create(ctx, &entity.RaffleParticipant{
			Base:     entity.Base{ID: "current-" + userID},
			RaffleID: raffle.ID,
			UserID:   userID,
			Name:     userID,
		})
		require.NoError(t, err)
	}

	pool, err = raffleDomain.snapshotPool(ctx, raffle)
	require.NoError(t, err)
	require.Len(t, pool, 2)

	weights := map[string]float64{}
	for _, candidate := range pool {
		weights[candidate.UserID] = candidate.Weight
	}

	require.InDelta(t, 0.5, weights[testutil.Member1.ID], 1e-9)
	require.InDelta(t, 1.0, weights[testutil.Member2.ID], 1e-9)
}
