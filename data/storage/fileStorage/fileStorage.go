package fileStorage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KotFed0t/instrument_catalog/data/storage"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
)

type FileStorage struct {
	path string
}

func New(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FileStorage.LoadSnapshot"

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		slog.Error("can't read snapshot file", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path), slog.String("err", err.Error()))
		return nil, err
	}

	snapshot, err := model.DecodeSnapshot(data)
	if err != nil {
		slog.Error("can't decode snapshot file", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path), slog.String("err", err.Error()))
		return nil, err
	}

	return snapshot, nil
}

// SaveSnapshot writes into a temp file next to the target and renames it over
// the target, so readers see either the previous snapshot or the new one.
func (s *FileStorage) SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FileStorage.SaveSnapshot"

	defer func() {
		if err != nil {
			slog.Error("failed to save snapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path), slog.String("err", err.Error()))
		}
	}()

	data, err := model.EncodeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	slog.Debug("snapshot saved", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", s.path), slog.Int("entries", snapshot.Len()))

	return nil
}
