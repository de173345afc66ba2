package repository

import (
	"context"
	"time"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, eventID string) (*entity.Event, error)
	GetByCommunityID(ctx context.Context, communityID string) ([]entity.Event, error)
	GetActiveEndedEvents(ctx context.Context, now time.Time) ([]entity.Event, error)
	Update(ctx context.Context, eventID string, data map[string]any) error
	UpdateStatus(ctx context.Context, eventID string, from, to entity.EventStatus) error
	CheckAndIncreaseWinners(ctx context.Context, eventID string, n int) error
}

type eventRepository struct{}

func NewEventRepository() *eventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return xcontext.DB(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, eventID string) (*entity.Event, error) {
	var result entity.Event
	if err := xcontext.DB(ctx).Take(&result, "id=?", eventID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *eventRepository) GetByCommunityID(ctx context.Context, communityID string) ([]entity.Event, error) {
	var result []entity.Event
	err := xcontext.DB(ctx).Where("community_id=?", communityID).
		Order("created_at DESC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) GetActiveEndedEvents(ctx context.Context, now time.Time) ([]entity.Event, error) {
	var result []entity.Event
	err := xcontext.DB(ctx).
		Where("status=? AND end_at <= ?", entity.EventActive, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *eventRepository) Update(ctx context.Context, eventID string, data map[string]any) error {
	return xcontext.DB(ctx).Model(&entity.Event{}).
		Where("id=?", eventID).Updates(data).Error
}

// UpdateStatus transitions the event status only if the current status still
// matches. A gorm.ErrRecordNotFound means the event changed under us.
func (r *eventRepository) UpdateStatus(
	ctx context.Context, eventID string, from, to entity.EventStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Event{}).
		Where("id=? AND status=?", eventID, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CheckAndIncreaseWinners grabs n winner spots in one conditional update. It
// returns gorm.ErrRecordNotFound when fewer than n spots remain; the counter
// is never partially increased.
func (r *eventRepository) CheckAndIncreaseWinners(ctx context.Context, eventID string, n int) error {
	tx := xcontext.DB(ctx).Model(&entity.Event{}).
		Where("id=? AND total_winners + ? <= max_winners - reserved_spots", eventID, n).
		Update("total_winners", gorm.Expr("total_winners+?", n))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
