package repository

import (
	"context"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/xcontext"
)

type GroupAdminRepository interface {
	Create(ctx context.Context, admin *entity.GroupAdmin) error
	Get(ctx context.Context, userID, groupID string) (*entity.GroupAdmin, error)
	GetByGroupID(ctx context.Context, groupID string) ([]entity.GroupAdmin, error)
}

type groupAdminRepository struct{}

func NewGroupAdminRepository() *groupAdminRepository {
	return &groupAdminRepository{}
}

func (r *groupAdminRepository) Create(ctx context.Context, admin *entity.GroupAdmin) error {
	return xcontext.DB(ctx).Create(admin).Error
}

func (r *groupAdminRepository) Get(
	ctx context.Context, userID, groupID string,
) (*entity.GroupAdmin, error) {
	var result entity.GroupAdmin
	err := xcontext.DB(ctx).
		Take(&result, "user_id=? AND group_id=?", userID, groupID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupAdminRepository) GetByGroupID(
	ctx context.Context, groupID string,
) ([]entity.GroupAdmin, error) {
	var result []entity.GroupAdmin
	err := xcontext.DB(ctx).Where("group_id=?", groupID).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
