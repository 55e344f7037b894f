// Package listings serves listing searches from stored snapshots when they are
// fresh enough and from the provider otherwise.
package listings

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/afford-api/internal/hydrator"
	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/rapidapi"
)

// Reader is implemented by *store.Store.
type Reader interface {
	LatestSnapshot(ctx context.Context, zip string, maxPrice float64, maxAge time.Duration) ([]listing.Listing, bool, error)
}

// StoreFirst satisfies afford.ListingSource.
type StoreFirst struct {
	Store    Reader
	Upstream hydrator.Fetcher
	Hydrator *hydrator.Hydrator
	MaxAge   time.Duration
	Logger   *log.Logger
}

func (s *StoreFirst) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *StoreFirst) SearchListings(ctx context.Context, zip string, maxPrice float64) ([]listing.Listing, error) {
	if s.Store != nil && s.MaxAge > 0 {
		stored, found, err := s.Store.LatestSnapshot(ctx, zip, maxPrice, s.MaxAge)
		switch {
		case err != nil:
			s.logf("[WARN] db lookup failed for zip %s: %v", zip, err)
		case found:
			s.logf("[INFO] serving listings for %s from database (%d listings)", zip, len(stored))
			return stored, nil
		default:
			s.logf("[INFO] no fresh snapshot for %s at %.0f; falling back to provider", zip, maxPrice)
		}
	}

	raw, err := s.Upstream.FetchListings(ctx, zip, maxPrice)
	if err != nil {
		return nil, err
	}
	found, err := rapidapi.MapListings(raw)
	if err != nil {
		return nil, err
	}
	if s.Hydrator.Enabled() {
		if _, err := s.Hydrator.Write(ctx, zip, maxPrice, uuid.Nil, raw, found); err != nil {
			s.logf("[WARN] unable to persist listings for %s: %v", zip, err)
		}
	}
	s.logf("[INFO] served listings for %s from provider (%d listings)", zip, len(found))
	return found, nil
}
