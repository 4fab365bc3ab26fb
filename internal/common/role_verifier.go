package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/raffleclub/backend/internal/entity"
	"github.com/raffleclub/backend/internal/repository"
	"github.com/raffleclub/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(
	ctx context.Context, requiredRoles ...entity.GlobalRole,
) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// GroupRoleVerifier answers whether the calling user may perform admin
// operations in a group. Global admins always pass; everyone else needs a
// GroupAdmin record.
type GroupRoleVerifier struct {
	groupAdminRepo repository.GroupAdminRepository
	userRepo       repository.UserRepository
}

func NewGroupRoleVerifier(
	groupAdminRepo repository.GroupAdminRepository,
	userRepo repository.UserRepository,
) *GroupRoleVerifier {
	return &GroupRoleVerifier{groupAdminRepo: groupAdminRepo, userRepo: userRepo}
}

func (verifier *GroupRoleVerifier) Verify(ctx context.Context, groupID string) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if u.Role == entity.RoleSuperAdmin || u.Role == entity.RoleAdmin {
		return nil
	}

	_, err = verifier.groupAdminRepo.Get(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user does not have permission")
		}

		return err
	}

	return nil
}
