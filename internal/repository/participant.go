package repository

import (
	"context"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipantRepository interface {
	// Create inserts the participant row, relying on the unique index on
	// (raffle_id, user_id) to reject duplicates. It returns
	// gorm.ErrDuplicatedKey when the user already joined; callers must
	// treat that as the idempotent outcome, not as a failure.
	Create(ctx context.Context, participant *entity.RaffleParticipant) error

	Get(ctx context.Context, raffleID, userID string) (*entity.RaffleParticipant, error)
	GetByRaffleID(ctx context.Context, raffleID string) ([]entity.RaffleParticipant, error)

	// MarkWinner flags the participant with a 1-based draw position.
	MarkWinner(ctx context.Context, raffleID, userID string, position int) error

	// CountWinsByGroup returns how many raffles of the group each of the
	// given users has already won. Users with no wins are absent from the
	// result.
	CountWinsByGroup(ctx context.Context, groupID string, userIDs []string) (map[string]int, error)
}

type participantRepository struct{}

func NewParticipantRepository() *participantRepository {
	return &participantRepository{}
}

func (r *participantRepository) Create(
	ctx context.Context, participant *entity.RaffleParticipant,
) error {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "raffle_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(participant)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrDuplicatedKey
	}

	return nil
}

func (r *participantRepository) Get(
	ctx context.Context, raffleID, userID string,
) (*entity.RaffleParticipant, error) {
	var result entity.RaffleParticipant
	err := xcontext.DB(ctx).
		Take(&result, "raffle_id=? AND user_id=?", raffleID, userID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *participantRepository) GetByRaffleID(
	ctx context.Context, raffleID string,
) ([]entity.RaffleParticipant, error) {
	var result []entity.RaffleParticipant
	err := xcontext.DB(ctx).Where("raffle_id=?", raffleID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *participantRepository) MarkWinner(
	ctx context.Context, raffleID, userID string, position int,
) error {
	tx := xcontext.DB(ctx).Model(&entity.RaffleParticipant{}).
		Where("raffle_id=? AND user_id=?", raffleID, userID).
		Updates(map[string]any{
			"is_winner":    true,
			"win_position": position,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *participantRepository) CountWinsByGroup(
	ctx context.Context, groupID string, userIDs []string,
) (map[string]int, error) {
	if len(userIDs) == 0 {
		return map[string]int{}, nil
	}

	var rows []struct {
		UserID string
		Wins   int
	}

	err := xcontext.DB(ctx).Model(&entity.RaffleParticipant{}).
		Select("raffle_participants.user_id AS user_id, COUNT(*) AS wins").
		Joins("JOIN raffles ON raffles.id = raffle_participants.raffle_id").
		Where("raffles.group_id=?", groupID).
		Where("raffle_participants.is_winner=?", true).
		Where("raffle_participants.user_id IN (?)", userIDs).
		Group("raffle_participants.user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	wins := make(map[string]int, len(rows))
	for _, row := range rows {
		wins[row.UserID] = row.Wins
	}

	return wins, nil
}
