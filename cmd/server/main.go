package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reeferwatch/backend/internal/config"
	"github.com/reeferwatch/backend/internal/db"
	httpapi "github.com/reeferwatch/backend/internal/http"
	"github.com/reeferwatch/backend/internal/metrics"
	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/notify"
	"github.com/reeferwatch/backend/internal/service"
	"github.com/reeferwatch/backend/internal/skills"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "reeferwatch-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	table := skills.DefaultTable()
	if cfg.SkillKeywordsFile != "" {
		table, err = skills.LoadFile(cfg.SkillKeywordsFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.SkillKeywordsFile).Msg("failed to load skill keywords")
		}
	}

	var sink notify.Notifier
	if cfg.NotifyWebhookURL == "" {
		sink = notify.LogNotifier{Logger: logger}
		logger.Info().Msg("using log notifier")
	} else {
		sink = notify.WebhookNotifier{BaseURL: cfg.NotifyWebhookURL}
	}
	dispatcher := notify.NewDispatcher(sink, cfg.NotifyQueueSize, logger)
	dispatcher.Start()
	defer dispatcher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry, dispatcher.Depth)

	scheduler := &service.SchedulerService{
		Store:    store,
		Skills:   table,
		Notifier: dispatcher,
		Metrics:  m,
		Logger:   logger,
		Policy: service.Policy{
			DailyJobCapacity:     cfg.DailyJobCapacity,
			LookaheadDays:        cfg.LookaheadDays,
			DefaultAssetLocation: models.Location{Lat: cfg.DefaultAssetLat, Lng: cfg.DefaultAssetLng},
		},
	}

	router := httpapi.Router(cfg, store, scheduler, registry, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
