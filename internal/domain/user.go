package domain

import (
	"context"
	"errors"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/model"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/errorx"
	"github.com/raffleclub/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	Register(context.Context, *model.RegisterUserRequest) (*model.RegisterUserResponse, error)
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
}

type userDomain struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
) *userDomain {
	return &userDomain{userRepo: userRepo, groupRepo: groupRepo}
}

// Register records the calling user, refreshing the display name on every
// call. It is idempotent, so bot frontends fire it on every first contact
// without checking whether the user is already known.
func (d *userDomain) Register(
	ctx context.Context, req *model.RegisterUserRequest,
) (*model.RegisterUserResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	userID := xcontext.RequestUserID(ctx)
	err := d.userRepo.Upsert(ctx, &entity.User{
		Base: entity.Base{ID: userID},
		Name: req.Name,
		Role: entity.RoleUser,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	// A registration arriving from an unknown chat bootstraps the group
	// as ungated. Known groups keep their settings.
	if req.GroupID != "" {
		err := d.groupRepo.CreateIfNotExists(ctx, &entity.Group{
			Base:   entity.Base{ID: req.GroupID},
			Name:   req.GroupName,
			Active: true,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot bootstrap group %s: %v", req.GroupID, err)
			return nil, errorx.Unknown
		}
	}

	xcontext.Logger(ctx).Infof("User %s registered", userID)
	return &model.RegisterUserResponse{}, nil
}

func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetMeRequest,
) (*model.GetMeResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", userID, err)
		return nil, errorx.Unknown
	}

	return &model.GetMeResponse{User: model.User{
		ID:   user.ID,
		Name: user.Name,
		Role: string(user.Role),
	}}, nil
}
