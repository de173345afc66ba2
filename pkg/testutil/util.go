package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/droplabz/backend/config"
	"github.com/droplabz/backend/internal/entity"
	"github.com/droplabz/backend/pkg/logger"
	"github.com/droplabz/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext(t *testing.T) context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, testConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))

	// A named shared-cache database so every pooled connection sees the same
	// tables.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("cannot open sqlite: %v", err)
	}

	// One connection keeps sqlite serialized under the concurrency tests.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("cannot get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx = xcontext.WithDB(ctx, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("cannot create snowflake node: %v", err)
	}

	ctx = xcontext.WithSnowFlake(ctx, node)

	if err := entity.MigrateTable(ctx); err != nil {
		t.Fatalf("cannot migrate tables: %v", err)
	}

	return ctx
}

func MockContextWithUserID(t *testing.T, userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(t), userID)
}

func testConfigs() config.Configs {
	return config.Configs{
		Env: "testing",
		Database: config.DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "testing",
			User:     "root",
			Password: "",
		},
		Redis: config.RedisConfigs{Addr: "localhost:6379"},
		Event: config.EventConfigs{
			AdmissionMaxRetries:   3,
			AdmissionRetryBackoff: time.Millisecond,
			SnapshotCacheTTL:      time.Minute,
		},
		Cron: config.CronConfigs{EndedEventInterval: time.Minute},
	}
}
