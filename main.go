package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/yourorg/afford-api/http"
	httpv1 "github.com/yourorg/afford-api/http/v1"
	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/config"
	"github.com/yourorg/afford-api/internal/hydrator"
	"github.com/yourorg/afford-api/internal/incomecache"
	"github.com/yourorg/afford-api/internal/listings"
	"github.com/yourorg/afford-api/internal/redisx"
	"github.com/yourorg/afford-api/internal/refresh"
	"github.com/yourorg/afford-api/internal/store"
	"github.com/yourorg/afford-api/rapidapi"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.RapidAPIKey == "" {
		log.Printf("[WARN] RAPIDAPI_KEY not set; requests must carry %s", httpapi.KeyHeader)
	}
	client := rapidapi.NewClient(cfg.RapidAPIKey, rapidapi.WithRateLimit(cfg.RapidAPIRPS, 5))

	var income *incomecache.Source
	if cfg.Redis.Addr != "" {
		rdb := redisx.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx); err != nil {
			log.Printf("[WARN] redis ping failed, income cache disabled: %v", err)
		} else {
			income = &incomecache.Source{
				Cache:       rdb,
				Upstream:    client,
				TTL:         cfg.IncomeCache.TTL,
				StaleAfter:  cfg.IncomeCache.StaleAfter,
				NegativeTTL: cfg.IncomeCache.NegativeTTL,
			}
			income.Refresher = refresh.New(256, 2, 10*time.Second, income.Refresh)
			defer rdb.Close()
			defer income.Refresher.Close() // drain refreshes before closing redis
		}
		cancel()
	}

	var st *store.Store
	if cfg.PostgresDSN != "" {
		st, err = store.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		defer st.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.Ping(ctx); err != nil {
			log.Printf("[WARN] postgres ping failed, listing snapshots disabled: %v", err)
			st = nil
		} else if err := st.Migrate(ctx); err != nil {
			log.Printf("[WARN] postgres migrate failed, listing snapshots disabled: %v", err)
			st = nil
		}
		cancel()
	}

	affordDeps := httpapi.AffordDeps{Pipeline: func(apiKey string) *afford.Pipeline {
		c := client.WithKey(apiKey)
		var incomeSrc afford.IncomeSource = c
		if income != nil && c == client {
			// the cache refreshes with the server key
			incomeSrc = income
		}
		var listingSrc afford.ListingSource = c
		if st != nil {
			listingSrc = &listings.StoreFirst{
				Store:    st,
				Upstream: c,
				Hydrator: &hydrator.Hydrator{Store: st},
				MaxAge:   cfg.ListingMaxAge,
			}
		}
		return afford.NewPipeline(listingSrc, incomeSrc, nil)
	}}

	router := BuildRouter(affordDeps, httpv1.IncomeDeps{Income: income})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	log.Printf("afford-api listening on %s", srv.Addr)
	if err := serve(ctx, srv, 15*time.Second); err != nil {
		log.Printf("[WARN] server stopped: %v", err)
	}
}

// serve runs srv until ctx ends, then drains in-flight requests for up to grace.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Printf("[INFO] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
