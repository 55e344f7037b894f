package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/afford-api/internal/config"
	"github.com/yourorg/afford-api/internal/hydrator"
	"github.com/yourorg/afford-api/internal/store"
	"github.com/yourorg/afford-api/rapidapi"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.RapidAPIKey == "" {
		log.Fatal("RAPIDAPI_KEY must be provided")
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("PG_DSN must be provided")
	}
	if len(cfg.Hydrator.Zips) == 0 {
		log.Fatal("HYDRATOR_ZIPS must be provided")
	}

	client := rapidapi.NewClient(cfg.RapidAPIKey, rapidapi.WithRateLimit(cfg.RapidAPIRPS, 1))

	st, err := store.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("store open error: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := st.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("postgres ping error: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("postgres migrate error: %v", err)
	}
	cancel()

	job := &hydrator.BulkJob{
		Client:   client,
		Hydrator: &hydrator.Hydrator{Store: st},
		Config: hydrator.BulkConfig{
			Zips:                 cfg.Hydrator.Zips,
			MaxPrice:             cfg.Hydrator.MaxPrice,
			Interval:             cfg.Hydrator.Interval,
			Schedule:             cfg.Hydrator.Schedule,
			PauseBetweenRequests: cfg.Hydrator.Pause,
			RequestTimeout:       cfg.Hydrator.RequestTimeout,
		},
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Hydrator.RunOnce {
		if err := job.RunOnce(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("hydrator bulk run failed: %v", err)
		}
		return
	}

	if err := job.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("hydrator job stopped with error: %v", err)
	}
}
