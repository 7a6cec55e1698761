package ctx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context carries the shared process-wide handles: database,
// redis and logger. It is constructed once during bootstrap and
// handed to every repo explicitly.
type Context struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
	Log   *zap.SugaredLogger
}

func NewContext(ctx context.Context, db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Context {
	return &Context{
		DB:    db,
		Redis: rdb,
		Ctx:   ctx,
		Log:   log,
	}
}

func (c *Context) GetCtx() context.Context {
	return c.Ctx
}

func (c *Context) GetDB() *gorm.DB {
	return c.DB
}

func (c *Context) GetRedis() *redis.Client {
	return c.Redis
}
