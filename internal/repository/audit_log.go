package repository

import (
	"context"

	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/xcontext"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	GetByCommunityID(ctx context.Context, communityID string, offset, limit int) ([]entity.AuditLog, error)
}

type auditLogRepository struct{}

func NewAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return xcontext.DB(ctx).Create(log).Error
}

func (r *auditLogRepository) GetByCommunityID(
	ctx context.Context, communityID string, offset, limit int,
) ([]entity.AuditLog, error) {
	var result []entity.AuditLog
	err := xcontext.DB(ctx).Where("community_id=?", communityID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
