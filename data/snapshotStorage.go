package data

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/data/storage/fileStorage"
	"github.com/KotFed0t/instrument_catalog/data/storage/postgresStorage"
	"github.com/KotFed0t/instrument_catalog/data/storage/redisStorage"
	"github.com/KotFed0t/instrument_catalog/internal/model"
)

type SnapshotStorage interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
}

// NewSnapshotStorage opens the backend selected by STORAGE_BACKEND. The
// returned func releases its connections.
func NewSnapshotStorage(cfg *config.Config) (SnapshotStorage, func()) {
	slog.Info("snapshot storage selected", slog.String("backend", cfg.Storage.Backend))

	switch cfg.Storage.Backend {
	case config.StorageRedis:
		rdb := NewRedisClient(cfg)
		return redisStorage.New(rdb, cfg.Storage.SnapshotKey), func() { _ = rdb.Close() }
	case config.StoragePostgres:
		db := NewPostgresClient(cfg)
		return postgresStorage.New(db, cfg.Storage.SnapshotKey), func() { _ = db.Close() }
	default:
		return fileStorage.New(cfg.Storage.SnapshotFile), func() {}
	}
}
