package domain

import (
	"context"
	"testing"

	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func Test_statisticDomain_GetWinnerLeaderBoard(t *testing.T) {
	ctx := testutil.MockContext()

	ranged := false
	statisticDomain := NewStatisticDomain(&testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return key == common.RedisKeyGroupWins(testutil.Group1.ID), nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			ranged = true
			return []redis.Z{
				{Member: testutil.Member1.ID, Score: 3},
				{Member: testutil.Member2.ID, Score: 1},
			}, nil
		},
	})

	resp, err := statisticDomain.GetWinnerLeaderBoard(ctx, &model.GetWinnerLeaderBoardRequest{
		GroupID: testutil.Group1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, []model.WinnerRank{
		{UserID: testutil.Member1.ID, Wins: 3},
		{UserID: testutil.Member2.ID, Wins: 1},
	}, resp.Ranks)

	// A group without any wins yet answers empty without ranging.
	ranged = false
	resp, err = statisticDomain.GetWinnerLeaderBoard(ctx, &model.GetWinnerLeaderBoardRequest{
		GroupID: testutil.Group2.ID,
	})
	require.NoError(t, err)
	require.Empty(t, resp.Ranks)
	require.False(t, ranged)
}

func Test_statisticDomain_GetWinCount(t *testing.T) {
	ctx := testutil.MockContext()
	statisticDomain := NewStatisticDomain(&testutil.MockRedisClient{
		ZScoreFunc: func(ctx context.Context, key string, member string) (float64, error) {
			if member == testutil.Member1.ID {
				return 3, nil
			}
			return 0, nil
		},
	})

	resp, err := statisticDomain.GetWinCount(ctx, &model.GetWinCountRequest{
		GroupID: testutil.Group1.ID, UserID: testutil.Member1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), resp.Wins)

	// The calling user is the default subject.
	ctxMember2 := testutil.MockContextWithUserID(ctx, testutil.Member2.ID)
	resp, err = statisticDomain.GetWinCount(ctxMember2, &model.GetWinCountRequest{
		GroupID: testutil.Group1.ID,
	})
	require.NoError(t, err)
	require.Equal(t, testutil.Member2.ID, resp.UserID)
	require.Equal(t, int64(0), resp.Wins)
}
