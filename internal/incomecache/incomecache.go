// Package incomecache keeps median incomes per zip in Redis. Census medians move
// slowly, so stale entries are served while a background refresh runs, and zips
// the provider rejected are remembered for a short while.
package incomecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/redisx"
	"github.com/yourorg/afford-api/internal/refresh"
)

// Cache is implemented by *redisx.Client; Get reports absent keys with redisx.ErrMiss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Source struct {
	Cache       Cache
	Upstream    afford.IncomeSource
	Refresher   *refresh.Refresher
	TTL         time.Duration
	StaleAfter  time.Duration
	NegativeTTL time.Duration
	Logger      *log.Logger
	Now         func() time.Time
}

type envelope struct {
	Income     float64   `json:"median_income"`
	FetchedAt  time.Time `json:"fetched_at"`
	StaleAfter time.Time `json:"stale_after"`
}

// Lookup is a resolved income and where it came from.
type Lookup struct {
	Zip       string    `json:"zip"`
	Income    float64   `json:"median_income"`
	Source    string    `json:"source"` // "cache" or "fresh"
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}

func cacheKey(zip string) string { return "income:zip:" + zip }
func missKey(zip string) string  { return "income:miss:" + zip }

func (s *Source) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *Source) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// MedianIncome satisfies afford.IncomeSource.
func (s *Source) MedianIncome(ctx context.Context, zip string) (float64, error) {
	l, err := s.Lookup(ctx, zip)
	if err != nil {
		return 0, err
	}
	return l.Income, nil
}

func (s *Source) Lookup(ctx context.Context, zip string) (Lookup, error) {
	if s.Cache == nil {
		return s.fetch(ctx, zip)
	}
	ok, err := s.Cache.Exists(ctx, missKey(zip))
	if err != nil {
		s.logf("[WARN] income miss marker lookup for %s failed: %v", zip, err)
	}
	if ok {
		return Lookup{}, fmt.Errorf("zip %s recently rejected by provider: %w", zip, afford.ErrInvalidLocation)
	}

	val, err := s.Cache.Get(ctx, cacheKey(zip))
	if err != nil && !errors.Is(err, redisx.ErrMiss) {
		s.logf("[WARN] income cache read for %s failed: %v", zip, err)
	}
	if err == nil && val != "" {
		var env envelope
		if err := json.Unmarshal([]byte(val), &env); err == nil {
			stale := s.now().After(env.StaleAfter)
			if stale && s.Refresher != nil {
				s.Refresher.Enqueue(refresh.Job{Key: zip})
			}
			return Lookup{Zip: zip, Income: env.Income, Source: "cache", Stale: stale, FetchedAt: env.FetchedAt}, nil
		}
		s.logf("[WARN] income cache entry for %s unreadable; refetching", zip)
	}
	return s.fetch(ctx, zip)
}

// Refresh refetches zip and rewrites its cache entry.
func (s *Source) Refresh(ctx context.Context, j refresh.Job) {
	if _, err := s.fetch(ctx, j.Key); err != nil {
		s.logf("[WARN] income refresh for %s failed: %v", j.Key, err)
	}
}

func (s *Source) fetch(ctx context.Context, zip string) (Lookup, error) {
	if s.Upstream == nil {
		return Lookup{}, errors.New("no upstream income source")
	}
	income, err := s.Upstream.MedianIncome(ctx, zip)
	if err != nil {
		if s.Cache != nil && errors.Is(err, afford.ErrInvalidLocation) {
			if err := s.Cache.Set(ctx, missKey(zip), "1", maxDur(s.NegativeTTL, 10*time.Minute)); err != nil {
				s.logf("[WARN] income negative cache write for %s failed: %v", zip, err)
			}
		}
		return Lookup{}, err
	}
	now := s.now()
	if s.Cache != nil {
		env := envelope{Income: income, FetchedAt: now, StaleAfter: now.Add(maxDur(s.StaleAfter, 7*24*time.Hour))}
		b, _ := json.Marshal(env)
		if err := s.Cache.Set(ctx, cacheKey(zip), string(b), maxDur(s.TTL, 30*24*time.Hour)); err != nil {
			s.logf("[WARN] income cache write for %s failed: %v", zip, err)
		}
	}
	return Lookup{Zip: zip, Income: income, Source: "fresh", FetchedAt: now}, nil
}

func maxDur(a, b time.Duration) time.Duration {
	if a > 0 {
		return a
	}
	return b
}
