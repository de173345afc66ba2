package repository

import (
	"context"
	"fmt"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

type EntryFilter struct {
	Status        entity.EntryStatus
	DiscordUserID string
}

type EntryRepository interface {
	Create(ctx context.Context, entry *entity.Entry) error
	GetByID(ctx context.Context, entryID string) (*entity.Entry, error)
	GetByEventWallet(ctx context.Context, eventID, walletAddress string) (*entity.Entry, error)
	GetByEventID(ctx context.Context, eventID string, filter EntryFilter) ([]entity.Entry, error)
	GetEligibleForDraw(ctx context.Context, eventID string) ([]entity.Entry, error)
	CountByEventID(ctx context.Context, eventID string) (int64, error)
	MarkIneligibleByIDs(ctx context.Context, eventID string, entryIDs []string, reason string) error
}

type entryRepository struct{}

func NewEntryRepository() *entryRepository {
	return &entryRepository{}
}

func (r *entryRepository) Create(ctx context.Context, entry *entity.Entry) error {
	return xcontext.DB(ctx).Create(entry).Error
}

func (r *entryRepository) GetByID(ctx context.Context, entryID string) (*entity.Entry, error) {
	var result entity.Entry
	if err := xcontext.DB(ctx).Take(&result, "id=?", entryID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryRepository) GetByEventWallet(
	ctx context.Context, eventID, walletAddress string,
) (*entity.Entry, error) {
	var result entity.Entry
	err := xcontext.DB(ctx).
		Take(&result, "event_id=? AND wallet_address=?", eventID, walletAddress).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryRepository) GetByEventID(
	ctx context.Context, eventID string, filter EntryFilter,
) ([]entity.Entry, error) {
	var result []entity.Entry
	tx := xcontext.DB(ctx).Where("event_id=?", eventID).Order("admission_seq ASC")

	if filter.Status != "" {
		tx = tx.Where("status=?", filter.Status)
	}

	if filter.DiscordUserID != "" {
		tx = tx.Where("discord_user_id=?", filter.DiscordUserID)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// GetEligibleForDraw returns the competitive pool: valid, not flagged, and not
// already bound to a winner row, in admission order.
func (r *entryRepository) GetEligibleForDraw(ctx context.Context, eventID string) ([]entity.Entry, error) {
	var result []entity.Entry
	err := xcontext.DB(ctx).
		Joins("LEFT JOIN winners ON winners.entry_id = entries.id AND winners.deleted_at IS NULL").
		Where("entries.event_id=? AND entries.status=? AND entries.is_ineligible=?",
			eventID, entity.EntryValid, false).
		Where("winners.id IS NULL").
		Order("entries.admission_seq ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entryRepository) CountByEventID(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Entry{}).
		Where("event_id=?", eventID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *entryRepository) MarkIneligibleByIDs(
	ctx context.Context, eventID string, entryIDs []string, reason string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Entry{}).
		Where("id IN (?) AND event_id=?", entryIDs, eventID).
		Updates(map[string]any{"is_ineligible": true, "ineligibility_reason": reason})
	if tx.Error != nil {
		return tx.Error
	}

	if int(tx.RowsAffected) != len(entryIDs) {
		return fmt.Errorf("expected to flag %d entries, flagged %d", len(entryIDs), tx.RowsAffected)
	}

	return nil
}
