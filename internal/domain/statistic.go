package domain

import (
	"context"

	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/raffleclub/backend/pkg/xredis"
)

type StatisticDomain interface {
	GetWinnerLeaderBoard(context.Context, *model.GetWinnerLeaderBoardRequest) (*model.GetWinnerLeaderBoardResponse, error)
	GetWinCount(context.Context, *model.GetWinCountRequest) (*model.GetWinCountResponse, error)
}

type statisticDomain struct {
	redisClient xredis.Client
}

func NewStatisticDomain(redisClient xredis.Client) *statisticDomain {
	return &statisticDomain{redisClient: redisClient}
}

func (d *statisticDomain) GetWinnerLeaderBoard(
	ctx context.Context, req *model.GetWinnerLeaderBoardRequest,
) (*model.GetWinnerLeaderBoardResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := common.RedisKeyGroupWins(req.GroupID)

	// A group with no recorded wins has no sorted set yet.
	existed, err := d.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check win leaderboard of group %s: %v", req.GroupID, err)
		return nil, errorx.Unknown
	}

	if !existed {
		return &model.GetWinnerLeaderBoardResponse{Ranks: []model.WinnerRank{}}, nil
	}

	records, err := d.redisClient.ZRevRangeWithScores(ctx, key, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get win leaderboard of group %s: %v", req.GroupID, err)
		return nil, errorx.Unknown
	}

	ranks := []model.WinnerRank{}
	for _, record := range records {
		member, ok := record.Member.(string)
		if !ok {
			continue
		}

		ranks = append(ranks, model.WinnerRank{UserID: member, Wins: int64(record.Score)})
	}

	return &model.GetWinnerLeaderBoardResponse{Ranks: ranks}, nil
}

func (d *statisticDomain) GetWinCount(
	ctx context.Context, req *model.GetWinCountRequest,
) (*model.GetWinCountResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	score, err := d.redisClient.ZScore(ctx, common.RedisKeyGroupWins(req.GroupID), userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get win count of %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return &model.GetWinCountResponse{UserID: userID, Wins: int64(score)}, nil
}
