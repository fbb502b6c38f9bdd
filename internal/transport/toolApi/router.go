package toolApi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KotFed0t/instrument_catalog/config"
	customMW "github.com/KotFed0t/instrument_catalog/internal/transport/toolApi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func NewRouter(cfg *config.Config, ctrl *Controller, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(customMW.Logger)

	r.Get("/healthz", ctrl.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(customMW.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))

		r.Get("/tools", ctrl.ListTools)
		r.Get("/tools/"+GetInstrumentsTool, ctrl.GetInstruments)
		r.Post("/tools/"+GetInstrumentsTool, ctrl.GetInstruments)
		r.Get("/instruments/export.xlsx", ctrl.ExportInstruments)
	})

	return r
}

type Server struct {
	srv *http.Server
}

func NewServer(cfg *config.Config, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", slog.String("err", err.Error()))
			panic(err)
		}
	}()
	slog.Info("http server started", slog.String("addr", s.srv.Addr))
}

func (s *Server) Stop() {
	slog.Info("start stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown failed", slog.String("err", err.Error()))
		return
	}
	slog.Info("http server stopped")
}
