package repository

import (
	"context"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, userID string) (*entity.User, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member *entity.Member) error
	Get(ctx context.Context, userID, communityID string) (*entity.Member, error)
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

type memberRepository struct{}

func NewMemberRepository() *memberRepository {
	return &memberRepository{}
}

func (r *memberRepository) Create(ctx context.Context, member *entity.Member) error {
	return xcontext.DB(ctx).Create(member).Error
}

func (r *memberRepository) Get(ctx context.Context, userID, communityID string) (*entity.Member, error) {
	var result entity.Member
	err := xcontext.DB(ctx).Take(&result, "user_id=? AND community_id=?", userID, communityID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
