package postgresStorage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/KotFed0t/instrument_catalog/data/storage"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
)

// body is stored as TEXT rather than JSONB to keep the key order.
const (
	selectSnapshotQuery = `SELECT body FROM instrument_snapshots WHERE name = $1`
	upsertSnapshotQuery = `INSERT INTO instrument_snapshots (name, body, entries, updated_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			entries = EXCLUDED.entries,
			updated_at = EXCLUDED.updated_at`
)

type PostgresStorage struct {
	db   *sqlx.DB
	name string
}

func New(db *sqlx.DB, name string) *PostgresStorage {
	return &PostgresStorage{db: db, name: name}
}

func (p *PostgresStorage) LoadSnapshot(ctx context.Context) (snapshot *model.Snapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("LoadSnapshot start", slog.String("rqID", rqID), slog.String("query", selectSnapshotQuery))
	defer func() {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Error("LoadSnapshot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("LoadSnapshot finished", slog.String("rqID", rqID))
		}
	}()

	var body string
	err = p.db.GetContext(ctx, &body, selectSnapshotQuery, p.name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return model.DecodeSnapshot([]byte(body))
}

// SaveSnapshot replaces the whole row in one statement.
func (p *PostgresStorage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("SaveSnapshot start", slog.String("rqID", rqID), slog.String("name", p.name))
	defer func() {
		if err != nil {
			slog.Error("SaveSnapshot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("SaveSnapshot completed", slog.String("rqID", rqID), slog.Int("entries", snapshot.Len()))
		}
	}()

	data, err := model.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, upsertSnapshotQuery, p.name, string(data), snapshot.Len())
	return err
}
