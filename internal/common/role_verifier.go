package common

import (
	"context"
	"fmt"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/internal/repository"
	"github.com/droplabz/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// CommunityRoleVerifier checks that the requesting user can perform organizer
// operations on a community.
type CommunityRoleVerifier struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
}

func NewCommunityRoleVerifier(
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
) *CommunityRoleVerifier {
	return &CommunityRoleVerifier{memberRepo: memberRepo, userRepo: userRepo}
}

func (verifier *CommunityRoleVerifier) Verify(ctx context.Context, communityID string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return fmt.Errorf("no request user")
	}

	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if u.Role == entity.RoleSuperAdmin {
		return nil
	}

	member, err := verifier.memberRepo.Get(ctx, userID, communityID)
	if err != nil {
		return fmt.Errorf("user is not a community member")
	}

	if !slices.Contains([]entity.CommunityRole{entity.RoleOwner, entity.RoleAdmin}, member.Role) {
		return fmt.Errorf("user role does not have permission")
	}

	return nil
}
