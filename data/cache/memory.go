package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/KotFed0t/instrument_catalog/internal/model"
	"github.com/KotFed0t/instrument_catalog/utils"
	gocache "github.com/patrickmn/go-cache"
)

const instrumentsKey = "instruments"

// MemoryCache keeps the decoded record sequence of the current snapshot so
// queries do not re-read durable storage on every call.
type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(expiration time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(expiration, 2*expiration)}
}

func (c *MemoryCache) GetInstruments(ctx context.Context) ([]model.InstrumentRecord, bool) {
	v, ok := c.cache.Get(instrumentsKey)
	if !ok {
		slog.Debug("instruments cache miss", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
		return nil, false
	}
	records, ok := v.([]model.InstrumentRecord)
	return records, ok
}

// SetInstruments stores records as is; callers must not mutate the slice afterwards.
func (c *MemoryCache) SetInstruments(ctx context.Context, records []model.InstrumentRecord) {
	c.cache.SetDefault(instrumentsKey, records)
	slog.Debug("instruments cached", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.Int("entries", len(records)))
}

func (c *MemoryCache) Flush(ctx context.Context) {
	c.cache.Flush()
	slog.Debug("instruments cache flushed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
}
