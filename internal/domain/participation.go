package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ParticipationDomain interface {
	Join(context.Context, *model.JoinRaffleRequest) (*model.JoinRaffleResponse, error)
}

type participationDomain struct {
	raffleRepo      repository.RaffleRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	eligibilityGate *common.EligibilityGate
}

func NewParticipationDomain(
	raffleRepo repository.RaffleRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	eligibilityGate *common.EligibilityGate,
) *participationDomain {
	return &participationDomain{
		raffleRepo:      raffleRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		eligibilityGate: eligibilityGate,
	}
}

func (d *participationDomain) Join(
	ctx context.Context, req *model.JoinRaffleRequest,
) (*model.JoinRaffleResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if raffle.Status != entity.RaffleOpen {
		return nil, errorx.New(errorx.RaffleClosed, "This raffle is no longer open")
	}

	decision, err := d.eligibilityGate.Check(ctx, userID, raffle.GroupID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check eligibility of %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	if !decision.Eligible {
		return nil, errorx.New(errorx.SubscriptionRequired, "%s", decision.Reason)
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	name := user.Name
	if req.Name != "" {
		name = req.Name
	}

	// The unique index on (raffle_id, user_id) is the only dedup
	// mechanism. No prior existence check: the insert either takes
	// effect or reports the duplicate.
	participant := &entity.RaffleParticipant{
		Base:     entity.Base{ID: uuid.NewString()},
		RaffleID: raffle.ID,
		UserID:   user.ID,
		Name:     name,
	}

	if err := d.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "You already joined this raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot add participant to raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	count, err := d.raffleRepo.IncreaseParticipantCount(ctx, raffle.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count participants of raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("User %s joined raffle %s (participant %d)", userID, raffle.ID, count)
	return &model.JoinRaffleResponse{ParticipantCount: count}, nil
}
