package entity

import (
	"context"

	"github.com/droplabz/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Community{},
		&Member{},
		&Event{},
		&Entry{},
		&Winner{},
		&AuditLog{},
	)
}
