package domain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raffleclub/backend/internal/common"
	"github.com/raffleclub/backend/internal/domain/draw"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/crypto"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/telegram"
	"github.com/raffleclub/backend/pkg/xcontext"
	"github.com/raffleclub/backend/pkg/xredis"
	"gorm.io/gorm"
)

type RaffleDomain interface {
	Create(context.Context, *model.CreateRaffleRequest) (*model.CreateRaffleResponse, error)
	Get(context.Context, *model.GetRaffleRequest) (*model.GetRaffleResponse, error)
	GetList(context.Context, *model.GetRafflesRequest) (*model.GetRafflesResponse, error)
	Draw(context.Context, *model.DrawRaffleRequest) (*model.DrawRaffleResponse, error)
	Cancel(context.Context, *model.CancelRaffleRequest) (*model.CancelRaffleResponse, error)
}

type raffleDomain struct {
	raffleRepo      repository.RaffleRepository
	participantRepo repository.ParticipantRepository
	groupRepo       repository.GroupRepository
	roleVerifier    *common.GroupRoleVerifier
	redisClient     xredis.Client
	deliveryCaller  telegram.Caller

	newRand func() *rand.Rand
}

func NewRaffleDomain(
	raffleRepo repository.RaffleRepository,
	participantRepo repository.ParticipantRepository,
	groupRepo repository.GroupRepository,
	roleVerifier *common.GroupRoleVerifier,
	redisClient xredis.Client,
	deliveryCaller telegram.Caller,
) *raffleDomain {
	return &raffleDomain{
		raffleRepo:      raffleRepo,
		participantRepo: participantRepo,
		groupRepo:       groupRepo,
		roleVerifier:    roleVerifier,
		redisClient:     redisClient,
		deliveryCaller:  deliveryCaller,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(crypto.SeedInt64()))
		},
	}
}

// WithRand overrides the random source factory. Tests use it to get
// reproducible draws.
func (d *raffleDomain) WithRand(newRand func() *rand.Rand) *raffleDomain {
	d.newRand = newRand
	return d
}

func (d *raffleDomain) Create(
	ctx context.Context, req *model.CreateRaffleRequest,
) (*model.CreateRaffleResponse, error) {
	if req.NumWinners <= 0 {
		return nil, errorx.New(errorx.BadRequest, "The number of winners must be a positive number")
	}

	group, err := d.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found group")
		}

		xcontext.Logger(ctx).Errorf("Cannot get group: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, group.ID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	raffle := &entity.Raffle{
		Base:       entity.Base{ID: uuid.NewString()},
		GroupID:    group.ID,
		NumWinners: req.NumWinners,
		Prize:      req.Prize,
		Status:     entity.RaffleOpen,
	}

	if err := d.raffleRepo.Create(ctx, raffle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create raffle: %v", err)
		return nil, errorx.Unknown
	}

	announcement := fmt.Sprintf("New raffle: %s\nWinners: %d", raffle.Prize, raffle.NumWinners)
	messageID, err := d.deliveryCaller.PostGroupMessage(ctx, group.ID, announcement)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot announce raffle %s: %v", raffle.ID, err)
	} else if err := d.raffleRepo.SetAnnouncementID(ctx, raffle.ID, messageID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot save announcement id of raffle %s: %v", raffle.ID, err)
	}

	xcontext.Logger(ctx).Infof("Raffle %s created in group %s with %d winners",
		raffle.ID, group.ID, raffle.NumWinners)

	return &model.CreateRaffleResponse{ID: raffle.ID}, nil
}

func (d *raffleDomain) Get(
	ctx context.Context, req *model.GetRaffleRequest,
) (*model.GetRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetRaffleResponse{Raffle: model.ConvertRaffle(raffle)}, nil
}

func (d *raffleDomain) GetList(
	ctx context.Context, req *model.GetRafflesRequest,
) (*model.GetRafflesResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	raffles, err := d.raffleRepo.GetByGroupID(ctx, req.GroupID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get raffles of group %s: %v", req.GroupID, err)
		return nil, errorx.Unknown
	}

	clientRaffles := []model.Raffle{}
	for i := range raffles {
		clientRaffles = append(clientRaffles, model.ConvertRaffle(&raffles[i]))
	}

	return &model.GetRafflesResponse{Raffles: clientRaffles}, nil
}

func (d *raffleDomain) Draw(
	ctx context.Context, req *model.DrawRaffleRequest,
) (*model.DrawRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, raffle.GroupID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only administrators can perform the draw")
	}

	if raffle.ParticipantCount == 0 {
		return nil, errorx.New(errorx.NotFound, "The raffle has no participants")
	}

	// The compare-and-swap below is the single-flight guard: out of any
	// number of concurrent draw triggers, exactly one proceeds past this
	// point for a given raffle.
	err = d.raffleRepo.UpdateStatus(ctx, raffle.ID, entity.RaffleOpen, entity.RaffleDrawn)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "The raffle was already performed or cancelled")
		}

		xcontext.Logger(ctx).Errorf("Cannot close raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	pool, err := d.snapshotPool(ctx, raffle)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot snapshot pool of raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	winners, err := draw.Draw(d.newRand(), pool, raffle.NumWinners)
	if err != nil {
		if errors.Is(err, draw.ErrNoEligibleWinners) {
			xcontext.Logger(ctx).Warnf("Raffle %s closed without selectable winners", raffle.ID)
			return nil, errorx.New(errorx.NoEligibleWinners,
				"No participant is currently selectable, the raffle was closed without winners")
		}

		xcontext.Logger(ctx).Errorf("Cannot draw raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	clientWinners := []model.RaffleWinner{}
	for i, winner := range winners {
		if err := d.participantRepo.MarkWinner(ctx, raffle.ID, winner.UserID, i+1); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot record winner %s of raffle %s: %v",
				winner.UserID, raffle.ID, err)
			return nil, errorx.Unknown
		}

		clientWinners = append(clientWinners, model.RaffleWinner{
			UserID:   winner.UserID,
			Name:     winner.Name,
			Position: i + 1,
		})
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.afterDraw(ctx, raffle, clientWinners)
	return &model.DrawRaffleResponse{Winners: clientWinners}, nil
}

// snapshotPool loads the participants of the raffle together with their
// luck modifier. Users who won raffles of the group before carry a lower
// weight: 1/(1+wins).
func (d *raffleDomain) snapshotPool(
	ctx context.Context, raffle *entity.Raffle,
) ([]draw.Candidate, error) {
	participants, err := d.participantRepo.GetByRaffleID(ctx, raffle.ID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}

	wins, err := d.participantRepo.CountWinsByGroup(ctx, raffle.GroupID, userIDs)
	if err != nil {
		return nil, err
	}

	pool := make([]draw.Candidate, 0, len(participants))
	for _, p := range participants {
		pool = append(pool, draw.Candidate{
			UserID: p.UserID,
			Name:   p.Name,
			Weight: 1 / float64(1+wins[p.UserID]),
		})
	}

	return pool, nil
}

// afterDraw handles everything that must not fail the draw: win counters,
// winner notifications, the announcement update, and the summary record.
func (d *raffleDomain) afterDraw(
	ctx context.Context, raffle *entity.Raffle, winners []model.RaffleWinner,
) {
	names := make([]string, 0, len(winners))
	for _, winner := range winners {
		names = append(names, winner.Name)

		err := d.redisClient.ZIncrBy(ctx, common.RedisKeyGroupWins(raffle.GroupID), 1, winner.UserID)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot bump win counter of %s: %v", winner.UserID, err)
		}

		message := fmt.Sprintf(
			"Congratulations! You won the raffle %q at position %d. "+
				"Contact an administrator to redeem your prize.",
			raffle.Prize, winner.Position)
		if err := d.deliveryCaller.SendDirectMessage(ctx, winner.UserID, message); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot notify winner %s of raffle %s: %v",
				winner.UserID, raffle.ID, err)
		}
	}

	if raffle.AnnouncementID != "" {
		text := fmt.Sprintf("%s\nWinners:\n%s\nPerformed at: %s",
			raffle.Prize, strings.Join(names, "\n"), time.Now().Format(time.RFC822))
		err := d.deliveryCaller.EditGroupMessage(ctx, raffle.GroupID, raffle.AnnouncementID, text)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update announcement of raffle %s: %v", raffle.ID, err)
		}
	}

	xcontext.Logger(ctx).Infof("Raffle %s performed: %d participants, %d winners",
		raffle.ID, raffle.ParticipantCount, len(winners))
}

func (d *raffleDomain) Cancel(
	ctx context.Context, req *model.CancelRaffleRequest,
) (*model.CancelRaffleResponse, error) {
	raffle, err := d.raffleRepo.GetByID(ctx, req.RaffleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found raffle")
		}

		xcontext.Logger(ctx).Errorf("Cannot get raffle: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roleVerifier.Verify(ctx, raffle.GroupID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only administrators can cancel the raffle")
	}

	err = d.raffleRepo.UpdateStatus(ctx, raffle.ID, entity.RaffleOpen, entity.RaffleCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "The raffle was already performed or cancelled")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel raffle %s: %v", raffle.ID, err)
		return nil, errorx.Unknown
	}

	if raffle.AnnouncementID != "" {
		text := fmt.Sprintf("%s\n\nRAFFLE CANCELLED", raffle.Prize)
		err := d.deliveryCaller.EditGroupMessage(ctx, raffle.GroupID, raffle.AnnouncementID, text)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update announcement of raffle %s: %v", raffle.ID, err)
		}
	}

	xcontext.Logger(ctx).Infof("Raffle %s cancelled", raffle.ID)
	return &model.CancelRaffleResponse{}, nil
}
