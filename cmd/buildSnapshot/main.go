// Command buildSnapshot fetches the instruments source once, rebuilds the
// snapshot in the configured storage and exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/data"
	"github.com/KotFed0t/instrument_catalog/data/cache"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi/etoroApi"
	"github.com/KotFed0t/instrument_catalog/internal/metrics"
	"github.com/KotFed0t/instrument_catalog/internal/service/catalogService"
	"github.com/KotFed0t/instrument_catalog/utils"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.MustLoad()

	utils.SetupLogger(cfg.LogLevel)

	snapshotStorage, closeStorage := data.NewSnapshotStorage(cfg)

	catalogSrv := catalogService.New(
		etoroApi.New(cfg),
		snapshotStorage,
		cache.NewMemoryCache(cfg.Cache.SnapshotExpiration),
		metrics.NewMetrics(prometheus.NewRegistry()),
	)

	ctx := utils.WithRequestID(context.Background(), "")

	snapshot, err := catalogSrv.BuildSnapshot(ctx)
	closeStorage()
	if err != nil {
		slog.Error("snapshot build failed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("err", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("saved %d unique instruments\n", snapshot.Len())
}
