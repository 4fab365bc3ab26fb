package repository

import (
	"context"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, userID string) (*entity.User, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
