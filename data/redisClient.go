package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/redis/go-redis/v9"
)

const redisPingAttempts = 5

// NewRedisClient connects to the snapshot Redis and waits until it answers
// PING. Failure to connect is fatal.
func NewRedisClient(cfg *config.Config) *redis.Client {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	if err := pingWithRetry(rdb, cfg.Redis.DialTimeout, redisPingAttempts); err != nil {
		slog.Error("Redis connection failed", slog.String("addr", addr), slog.String("err", err.Error()))
		_ = rdb.Close()
		panic(err)
	}
	slog.Info("Redis connected", slog.String("addr", addr), slog.Int("db", cfg.Redis.DB), slog.String("snapshotKey", cfg.Storage.SnapshotKey))

	return rdb
}

func pingWithRetry(rdb *redis.Client, timeout time.Duration, attempts int) error {
	var err error
	for ; attempts > 0; attempts-- {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			return nil
		}

		slog.Info("Redis is trying to connect", slog.Int("attempts left", attempts-1))
		time.Sleep(connRetryDelay)
	}
	return err
}
