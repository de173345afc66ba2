package xcontext

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/droplabz/backend/config"
	"github.com/droplabz/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey        struct{}
	txKey        struct{}
	loggerKey    struct{}
	configsKey   struct{}
	snowflakeKey struct{}
	userIDKey    struct{}
)

// txState is shared by every context derived from WithDBTransaction, so a
// commit or rollback through a derived context is visible to the parent scope.
type txState struct {
	tx   *gorm.DB
	done bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the transaction opened by WithDBTransaction if one is still in
// flight, otherwise the root gorm.DB.
func DB(ctx context.Context) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && !state.done {
		return state.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		panic("no database in context")
	}

	return db
}

// WithDBTransaction begins a transaction and scopes it to the returned
// context. Until WithCommitDBTransaction or WithRollbackDBTransaction is
// called, DB() on the returned context resolves to the transaction.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txState{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && !state.done {
		state.tx.Commit()
		state.done = true
	}

	return ctx
}

// WithRollbackDBTransaction rollbacks the in-flight transaction if it has not
// been committed. It is safe to defer unconditionally.
func WithRollbackDBTransaction(ctx context.Context) context.Context {
	if state, ok := ctx.Value(txKey{}).(*txState); ok && !state.done {
		state.tx.Rollback()
		state.done = true
	}

	return ctx
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.ERROR)
	}

	return l
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Configs{}
	}

	return cfg
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, ok := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	if !ok {
		panic("no snowflake node in context")
	}

	return node
}

func WithRequestUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func RequestUserID(ctx context.Context) string {
	id, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return ""
	}

	return id
}
