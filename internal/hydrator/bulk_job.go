package hydrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/yourorg/afford-api/internal/canon"
	"github.com/yourorg/afford-api/rapidapi"
)

// Fetcher returns a raw listings payload; *rapidapi.Client implements it.
type Fetcher interface {
	FetchListings(ctx context.Context, location string, maxPrice float64) ([]byte, error)
}

type BulkConfig struct {
	Zips                 []string
	MaxPrice             float64
	Interval             time.Duration
	Schedule             string // cron spec, e.g. "0 */6 * * *"
	PauseBetweenRequests time.Duration
	RequestTimeout       time.Duration
}

// BulkJob keeps the listing snapshots of a fixed set of zips warm.
type BulkJob struct {
	Client   Fetcher
	Hydrator *Hydrator
	Logger   *log.Logger
	Config   BulkConfig
}

func (j *BulkJob) logf(format string, args ...any) {
	if j.Logger != nil {
		j.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (j *BulkJob) validate() error {
	if j == nil {
		return errors.New("nil bulk job")
	}
	if j.Client == nil {
		return errors.New("hydrator bulk job missing client")
	}
	if !j.Hydrator.Enabled() {
		return errors.New("hydrator bulk job requires hydrator with store")
	}
	if len(j.Config.Zips) == 0 {
		return errors.New("hydrator bulk job requires at least one zip")
	}
	return nil
}

// Run refreshes on Schedule when set, else every Interval; with neither it runs once.
func (j *BulkJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	if j.Config.Schedule != "" {
		return j.runCron(ctx)
	}
	interval := j.Config.Interval
	if interval <= 0 {
		return j.RunOnce(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.logf("[INFO] hydrator bulk job starting with interval %s (%d zip(s))", interval, len(j.Config.Zips))
	if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logf("[WARN] hydrator bulk job initial run error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			return stopped(ctx)
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logf("[WARN] hydrator bulk job iteration error: %v", err)
			}
		}
	}
}

func (j *BulkJob) runCron(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.Config.Schedule, func() {
		if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			j.logf("[WARN] hydrator bulk job scheduled run error: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("hydrator schedule %q: %w", j.Config.Schedule, err)
	}
	j.logf("[INFO] hydrator bulk job starting on schedule %q (%d zip(s))", j.Config.Schedule, len(j.Config.Zips))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return stopped(ctx)
}

func stopped(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// RunOnce fetches every configured zip once. A quota error stops the run; other
// per-zip failures are collected.
func (j *BulkJob) RunOnce(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	runID := uuid.New()
	start := time.Now()
	var joined error
	total := 0
	for i, raw := range j.Config.Zips {
		zip, err := canon.Zip(raw)
		if err != nil {
			joined = errors.Join(joined, fmt.Errorf("zip %q: %w", strings.TrimSpace(raw), err))
			continue
		}
		if i > 0 && j.Config.PauseBetweenRequests > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.Config.PauseBetweenRequests):
			}
		}
		n, err := j.ingestZip(ctx, runID, zip)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, rapidapi.ErrDailyLimitExceeded) {
				return errors.Join(joined, err)
			}
			joined = errors.Join(joined, err)
			continue
		}
		total += n
	}
	j.logf("[INFO] hydrator run %s persisted %d listings across %d zip(s) in %s", runID, total, len(j.Config.Zips), time.Since(start).Round(time.Millisecond))
	return joined
}

func (j *BulkJob) ingestZip(ctx context.Context, runID uuid.UUID, zip string) (int, error) {
	timeout := j.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxPrice := j.Config.MaxPrice
	if maxPrice <= 0 {
		maxPrice = 1_000_000
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	raw, err := j.Client.FetchListings(reqCtx, zip, maxPrice)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("zip %s fetch: %w", zip, err)
	}
	listings, err := rapidapi.MapListings(raw)
	if err != nil {
		return 0, fmt.Errorf("zip %s map: %w", zip, err)
	}
	n, err := j.Hydrator.Write(ctx, zip, maxPrice, runID, raw, listings)
	if err != nil {
		return 0, fmt.Errorf("zip %s persist: %w", zip, err)
	}
	if n == 0 {
		j.logf("[INFO] hydrator bulk job zip %s returned 0 listings", zip)
	}
	return n, nil
}
