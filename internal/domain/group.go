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

type GroupDomain interface {
	Create(context.Context, *model.CreateGroupRequest) (*model.CreateGroupResponse, error)
	AddAdmin(context.Context, *model.AddGroupAdminRequest) (*model.AddGroupAdminResponse, error)
	GetAdmins(context.Context, *model.GetGroupAdminsRequest) (*model.GetGroupAdminsResponse, error)
}

type groupDomain struct {
	groupRepo          repository.GroupRepository
	groupAdminRepo     repository.GroupAdminRepository
	userRepo           repository.UserRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	groupRoleVerifier  *common.GroupRoleVerifier
}

func NewGroupDomain(
	groupRepo repository.GroupRepository,
	groupAdminRepo repository.GroupAdminRepository,
	userRepo repository.UserRepository,
	globalRoleVerifier *common.GlobalRoleVerifier,
	groupRoleVerifier *common.GroupRoleVerifier,
) *groupDomain {
	return &groupDomain{
		groupRepo:          groupRepo,
		groupAdminRepo:     groupAdminRepo,
		userRepo:           userRepo,
		globalRoleVerifier: globalRoleVerifier,
		groupRoleVerifier:  groupRoleVerifier,
	}
}

func (d *groupDomain) Create(
	ctx context.Context, req *model.CreateGroupRequest,
) (*model.CreateGroupResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.RoleSuperAdmin, entity.RoleAdmin); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if req.GroupID == "" || req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty group id or name")
	}

	group := &entity.Group{
		Base:                 entity.Base{ID: req.GroupID},
		Name:                 req.Name,
		RequiresSubscription: req.RequiresSubscription,
		Active:               true,
	}

	if err := d.groupRepo.Create(ctx, group); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create group: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Group %s registered (gated=%t)", group.ID, group.RequiresSubscription)
	return &model.CreateGroupResponse{}, nil
}

func (d *groupDomain) AddAdmin(
	ctx context.Context, req *model.AddGroupAdminRequest,
) (*model.AddGroupAdminResponse, error) {
	if err := d.groupRoleVerifier.Verify(ctx, req.GroupID); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	admin := &entity.GroupAdmin{
		Base:            entity.Base{ID: uuid.NewString()},
		GroupID:         req.GroupID,
		UserID:          req.UserID,
		PermissionLevel: req.PermissionLevel,
	}

	if err := d.groupAdminRepo.Create(ctx, admin); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add admin %s to group %s: %v",
			req.UserID, req.GroupID, err)
		return nil, errorx.Unknown
	}

	return &model.AddGroupAdminResponse{}, nil
}

func (d *groupDomain) GetAdmins(
	ctx context.Context, req *model.GetGroupAdminsRequest,
) (*model.GetGroupAdminsResponse, error) {
	admins, err := d.groupAdminRepo.GetByGroupID(ctx, req.GroupID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get admins of group %s: %v", req.GroupID, err)
		return nil, errorx.Unknown
	}

	clientAdmins := []model.GroupAdmin{}
	for _, admin := range admins {
		clientAdmins = append(clientAdmins, model.GroupAdmin{
			UserID:          admin.UserID,
			PermissionLevel: admin.PermissionLevel,
		})
	}

	return &model.GetGroupAdminsResponse{Admins: clientAdmins}, nil
}
