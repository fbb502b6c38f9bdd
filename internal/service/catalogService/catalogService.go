package catalogService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/instrument_catalog/data/storage"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi"
	"github.com/KotFed0t/instrument_catalog/internal/metrics"
	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/internal/model/etoroModel"
	"github.com/KotFed0t/instrument_catalog/internal/service"
	"github.com/KotFed0t/instrument_catalog/utils"
	"golang.org/x/sync/singleflight"
)

const (
	ensureFlightKey  = "ensure"
	rebuildFlightKey = "rebuild"
)

type InstrumentsSource interface {
	GetInstruments(ctx context.Context) ([]etoroModel.RawInstrument, error)
}

type SnapshotStorage interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *model.Snapshot) error
}

type Cache interface {
	GetInstruments(ctx context.Context) ([]model.InstrumentRecord, bool)
	SetInstruments(ctx context.Context, records []model.InstrumentRecord)
	Flush(ctx context.Context)
}

type CatalogService struct {
	source  InstrumentsSource
	storage SnapshotStorage
	cache   Cache
	metrics *metrics.Metrics

	// buildMu serializes builds against the storage target, sf collapses
	// concurrent callers waiting for the same build.
	buildMu sync.Mutex
	sf      singleflight.Group

	// cacheGen is bumped by every committed build; a load only fills the
	// cache when no build committed since the load started.
	cacheMu  sync.Mutex
	cacheGen uint64
}

func New(source InstrumentsSource, storage SnapshotStorage, cache Cache, m *metrics.Metrics) *CatalogService {
	return &CatalogService{
		source:  source,
		storage: storage,
		cache:   cache,
		metrics: m,
	}
}

// BuildSnapshot fetches the source, deduplicates it and replaces the stored
// snapshot. Storage is left untouched when the fetch fails.
func (s *CatalogService) BuildSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.doFlight(ctx, rebuildFlightKey, func(ctx context.Context) (*model.Snapshot, error) {
		s.buildMu.Lock()
		defer s.buildMu.Unlock()
		return s.build(ctx)
	})
}

// RefreshSnapshot is BuildSnapshot shaped for the scheduler.
func (s *CatalogService) RefreshSnapshot(ctx context.Context) error {
	_, err := s.BuildSnapshot(ctx)
	return err
}

// GetInstruments loads the snapshot, building it first when storage has none,
// and answers the query over its records.
func (s *CatalogService) GetInstruments(ctx context.Context, params model.QueryParams) (res model.QueryResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CatalogService.GetInstruments"

	slog.Debug("GetInstruments start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("params", params))
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultFailure
		}
		s.metrics.QueriesTotal.WithLabelValues(result).Inc()
		slog.Debug("GetInstruments finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("totalCount", res.TotalCount))
	}()

	if params.Amount <= 0 {
		return model.QueryResult{}, fmt.Errorf("%w: amount must be positive, got %d", service.ErrInvalidQuery, params.Amount)
	}

	records, err := s.loadInstruments(ctx)
	if err != nil {
		return model.QueryResult{}, err
	}

	return Query(records, params)
}

// Instruments returns every record matching the filters of params, ignoring
// pagination. Used by exports.
func (s *CatalogService) Instruments(ctx context.Context, params model.QueryParams) ([]model.InstrumentRecord, error) {
	records, err := s.loadInstruments(ctx)
	if err != nil {
		return nil, err
	}
	return filterInstruments(records, params), nil
}

func (s *CatalogService) loadInstruments(ctx context.Context) ([]model.InstrumentRecord, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CatalogService.loadInstruments"

	if records, ok := s.cache.GetInstruments(ctx); ok {
		return records, nil
	}

	gen := s.currentCacheGen()

	snapshot, err := s.storage.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Info("snapshot is absent, building it", slog.String("rqID", rqID), slog.String("op", op))
		snapshot, err = s.ensureSnapshot(ctx)
		if err != nil {
			return nil, err
		}
	case err != nil:
		slog.Error("can't load snapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, fmt.Errorf("%w: load snapshot", service.ErrStorageFailure)
	}

	records := snapshot.Records()
	s.cacheIfCurrent(ctx, gen, records)

	return records, nil
}

func (s *CatalogService) currentCacheGen() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cacheGen
}

func (s *CatalogService) cacheIfCurrent(ctx context.Context, gen uint64, records []model.InstrumentRecord) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if gen != s.cacheGen {
		slog.Debug("snapshot replaced while loading, not caching", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
		return
	}
	s.cache.SetInstruments(ctx, records)
}

// replaceCached must run after the new snapshot is stored.
func (s *CatalogService) replaceCached(ctx context.Context, records []model.InstrumentRecord) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cacheGen++
	s.cache.Flush(ctx)
	s.cache.SetInstruments(ctx, records)
}

// ensureSnapshot builds the snapshot unless another caller stored one while
// this one was waiting for the build lock.
func (s *CatalogService) ensureSnapshot(ctx context.Context) (*model.Snapshot, error) {
	return s.doFlight(ctx, ensureFlightKey, func(ctx context.Context) (*model.Snapshot, error) {
		s.buildMu.Lock()
		defer s.buildMu.Unlock()

		snapshot, err := s.storage.LoadSnapshot(ctx)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("can't reload snapshot", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("op", "CatalogService.ensureSnapshot"), slog.String("err", err.Error()))
			return nil, fmt.Errorf("%w: reload snapshot", service.ErrStorageFailure)
		}

		return s.build(ctx)
	})
}

// doFlight runs fn once per key for all concurrent callers. fn gets a context
// detached from the caller's cancellation so a started build always commits;
// the caller itself stops waiting when ctx is done.
func (s *CatalogService) doFlight(ctx context.Context, key string, fn func(ctx context.Context) (*model.Snapshot, error)) (*model.Snapshot, error) {
	buildCtx := context.WithoutCancel(ctx)

	ch := s.sf.DoChan(key, func() (any, error) {
		return fn(buildCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// build must be called with buildMu held.
func (s *CatalogService) build(ctx context.Context) (snapshot *model.Snapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "CatalogService.build"
	start := time.Now()

	slog.Info("snapshot build start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		s.metrics.SnapshotBuildDur.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.SnapshotBuildsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			slog.Error("snapshot build failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return
		}
		s.metrics.SnapshotBuildsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}()

	raw, err := s.source.GetInstruments(ctx)
	if err != nil {
		if !errors.Is(err, externalApi.ErrMalformedSource) {
			return nil, fmt.Errorf("%w: %w", service.ErrSourceUnavailable, err)
		}
		s.metrics.MalformedSourceTotal.Inc()
		slog.Warn("source payload has no instruments list, building empty snapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		raw = nil
	}

	snapshot = dedupInstruments(raw)

	s.metrics.SourceEntriesFetched.Set(float64(len(raw)))
	slog.Info("instruments fetched", slog.String("rqID", rqID), slog.String("op", op), slog.Int("fetched", len(raw)), slog.Int("unique", snapshot.Len()))

	if err = s.storage.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("%w: save snapshot", service.ErrStorageFailure)
	}

	s.metrics.SnapshotEntries.Set(float64(snapshot.Len()))
	s.replaceCached(ctx, snapshot.Records())

	slog.Info("snapshot build completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("unique", snapshot.Len()), slog.Duration("duration", time.Since(start)))

	return snapshot, nil
}
