package repository

import (
	"context"
	"time"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByID(ctx context.Context, raffleID string) (*entity.Raffle, error)
	GetByGroupID(ctx context.Context, groupID string, limit int) ([]entity.Raffle, error)

	// UpdateStatus transitions the raffle from one status to another as a
	// single compare-and-swap. It returns gorm.ErrRecordNotFound when the
	// raffle is not in the expected status anymore, which is how a losing
	// concurrent caller learns the raffle was already processed.
	UpdateStatus(ctx context.Context, raffleID string, from, to entity.RaffleStatus) error

	// IncreaseParticipantCount atomically bumps the cached counter and
	// returns the new value.
	IncreaseParticipantCount(ctx context.Context, raffleID string) (int, error)

	SetAnnouncementID(ctx context.Context, raffleID, announcementID string) error
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByID(ctx context.Context, raffleID string) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", raffleID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *raffleRepository) GetByGroupID(
	ctx context.Context, groupID string, limit int,
) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).Where("group_id=?", groupID).
		Order("created_at DESC").Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) UpdateStatus(
	ctx context.Context, raffleID string, from, to entity.RaffleStatus,
) error {
	updates := map[string]any{"status": to}
	if to == entity.RaffleDrawn {
		updates["performed_at"] = time.Now()
	}

	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND status=?", raffleID, from).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *raffleRepository) IncreaseParticipantCount(
	ctx context.Context, raffleID string,
) (int, error) {
	tx := xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=?", raffleID).
		Update("participant_count", gorm.Expr("participant_count+?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", raffleID).Error; err != nil {
		return 0, err
	}

	return result.ParticipantCount, nil
}

func (r *raffleRepository) SetAnnouncementID(
	ctx context.Context, raffleID, announcementID string,
) error {
	return xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=?", raffleID).
		Update("announcement_id", announcementID).Error
}
