package repository

import (
	"context"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

type WinnerRepository interface {
	Create(ctx context.Context, winner *entity.Winner) error
	CreateBatch(ctx context.Context, winners []entity.Winner) error
	GetByID(ctx context.Context, winnerID string) (*entity.Winner, error)
	GetByEventID(ctx context.Context, eventID string) ([]entity.Winner, error)
	GetByEventEntry(ctx context.Context, eventID, entryID string) (*entity.Winner, error)
	CountByEventID(ctx context.Context, eventID string) (int64, error)
}

type winnerRepository struct{}

func NewWinnerRepository() *winnerRepository {
	return &winnerRepository{}
}

func (r *winnerRepository) Create(ctx context.Context, winner *entity.Winner) error {
	return xcontext.DB(ctx).Create(winner).Error
}

func (r *winnerRepository) CreateBatch(ctx context.Context, winners []entity.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Create(&winners).Error
}

func (r *winnerRepository) GetByID(ctx context.Context, winnerID string) (*entity.Winner, error) {
	var result entity.Winner
	if err := xcontext.DB(ctx).Take(&result, "id=?", winnerID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *winnerRepository) GetByEventID(ctx context.Context, eventID string) ([]entity.Winner, error) {
	var result []entity.Winner
	err := xcontext.DB(ctx).Where("event_id=?", eventID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *winnerRepository) GetByEventEntry(
	ctx context.Context, eventID, entryID string,
) (*entity.Winner, error) {
	var result entity.Winner
	err := xcontext.DB(ctx).Take(&result, "event_id=? AND entry_id=?", eventID, entryID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *winnerRepository) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Winner{}).
		Where("event_id=?", eventID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
