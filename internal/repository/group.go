package repository

import (
	"context"

	"github.com/puzpuzpuz/xsync"
	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	CreateIfNotExists(ctx context.Context, group *entity.Group) error
	GetByID(ctx context.Context, groupID string) (*entity.Group, error)
}

type groupRepository struct {
	// Groups change rarely and are read on every join, so lookups go
	// through an in-process cache.
	cache *xsync.MapOf[string, entity.Group]
}

func NewGroupRepository() *groupRepository {
	return &groupRepository{cache: xsync.NewMapOf[entity.Group]()}
}

func (r *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	if err := xcontext.DB(ctx).Create(group).Error; err != nil {
		return err
	}

	r.cache.Store(group.ID, *group)
	return nil
}

func (r *groupRepository) CreateIfNotExists(ctx context.Context, group *entity.Group) error {
	err := xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(group).Error
	if err != nil {
		return err
	}

	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, groupID string) (*entity.Group, error) {
	if group, ok := r.cache.Load(groupID); ok {
		return &group, nil
	}

	var result entity.Group
	if err := xcontext.DB(ctx).Take(&result, "id=?", groupID).Error; err != nil {
		return nil, err
	}

	r.cache.Store(groupID, result)
	return &result, nil
}
