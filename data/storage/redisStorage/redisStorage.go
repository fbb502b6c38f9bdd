package redisStorage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/instrument_catalog/data/storage"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	redis *redis.Client
	key   string
}

func New(redisClient *redis.Client, key string) *RedisStorage {
	return &RedisStorage{redis: redisClient, key: key}
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("LoadSnapshot start", slog.String("rqID", rqID), slog.String("key", r.key))

	res, err := r.redis.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", r.key))
		return nil, err
	}

	snapshot, err := model.DecodeSnapshot(res)
	if err != nil {
		slog.Error("can't decode snapshot in LoadSnapshot", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", r.key))
		return nil, err
	}

	slog.Debug("LoadSnapshot finished", slog.String("rqID", rqID), slog.Int("entries", snapshot.Len()))

	return snapshot, nil
}

// SaveSnapshot stages the payload under a temp key and renames it over the
// target inside MULTI/EXEC.
func (r *RedisStorage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SaveSnapshot", slog.String("rqID", rqID), slog.String("key", r.key))

	data, err := model.EncodeSnapshot(snapshot)
	if err != nil {
		slog.Error("can't encode snapshot in SaveSnapshot", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	tmpKey := r.key + ":tmp:" + uuid.NewString()

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tmpKey, data, 0)
		pipe.Rename(ctx, tmpKey, r.key)
		return nil
	})
	if err != nil {
		slog.Error("failed on TxPipelined", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", r.key))
		return err
	}

	slog.Debug("SaveSnapshot completed", slog.String("rqID", rqID), slog.Int("entries", snapshot.Len()))

	return nil
}
