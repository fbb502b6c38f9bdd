package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/instrument_catalog/config"
	"github.com/KotFed0t/instrument_catalog/data"
	"github.com/KotFed0t/instrument_catalog/data/cache"
	"github.com/KotFed0t/instrument_catalog/internal/externalApi/etoroApi"
	"github.com/KotFed0t/instrument_catalog/internal/metrics"
	"github.com/KotFed0t/instrument_catalog/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/instrument_catalog/internal/scheduler"
	"github.com/KotFed0t/instrument_catalog/internal/service/catalogService"
	"github.com/KotFed0t/instrument_catalog/internal/tgbot"
	"github.com/KotFed0t/instrument_catalog/internal/transport/telegram"
	"github.com/KotFed0t/instrument_catalog/internal/transport/toolApi"
	"github.com/KotFed0t/instrument_catalog/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.MustLoad()

	utils.SetupLogger(cfg.LogLevel)

	slog.Debug("config", slog.Any("cfg", cfg))

	snapshotStorage, closeStorage := data.NewSnapshotStorage(cfg)
	defer closeStorage()

	memoryCache := cache.NewMemoryCache(cfg.Cache.SnapshotExpiration)

	etoroApiClient := etoroApi.New(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	catalogSrv := catalogService.New(etoroApiClient, snapshotStorage, memoryCache, m)

	sched := scheduler.New()
	if cfg.Jobs.RefreshSnapshotInterval > 0 {
		sched.NewIntervalJob("refresh instruments snapshot", catalogSrv.RefreshSnapshot, cfg.Jobs.RefreshSnapshotInterval, false)
	}
	sched.Start()
	defer sched.Stop()

	toolCtrl := toolApi.NewController(catalogSrv, xslsxGenerator.New(), cfg.InstrumentsPerPage)
	httpServer := toolApi.NewServer(cfg, toolApi.NewRouter(cfg, toolCtrl, registry))
	httpServer.Start()
	defer httpServer.Stop()

	if cfg.Telegram.Token != "" {
		tgController := telegram.NewController(catalogSrv, cfg.InstrumentsPerPage)
		tgBot := tgbot.New(cfg, tgController)
		tgBot.Start()
		defer tgBot.Stop()
	} else {
		slog.Info("TELEGRAM_TOKEN is empty, tgbot disabled")
	}

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}
