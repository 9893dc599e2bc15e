package main

import (
	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/sewtrack/sewtrack/internal/clock"
	"github.com/sewtrack/sewtrack/internal/config"
	"github.com/sewtrack/sewtrack/internal/logger"
	"github.com/sewtrack/sewtrack/internal/migration"
	"github.com/sewtrack/sewtrack/internal/observability"
	"github.com/sewtrack/sewtrack/internal/server"
	"github.com/sewtrack/sewtrack/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		logger.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		fx.Provide(newRedisClient),
		db.Module,
		clock.Module,
		server.Module,
		migration.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// newRedisClient returns nil when no address is configured; the tenant
// session store falls back to its in-process implementation.
func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
