package repository

import (
	"context"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

type CommunityRepository interface {
	Create(ctx context.Context, community *entity.Community) error
	GetByID(ctx context.Context, communityID string) (*entity.Community, error)
	GetByHandle(ctx context.Context, handle string) (*entity.Community, error)
}

type communityRepository struct{}

func NewCommunityRepository() *communityRepository {
	return &communityRepository{}
}

func (r *communityRepository) Create(ctx context.Context, community *entity.Community) error {
	return xcontext.DB(ctx).Create(community).Error
}

func (r *communityRepository) GetByID(ctx context.Context, communityID string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "id=?", communityID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *communityRepository) GetByHandle(ctx context.Context, handle string) (*entity.Community, error) {
	var result entity.Community
	if err := xcontext.DB(ctx).Take(&result, "handle=?", handle).Error; err != nil {
		return nil, err
	}

	return &result, nil
}
