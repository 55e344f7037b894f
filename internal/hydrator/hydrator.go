package hydrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/internal/store"
)

const (
	DefaultProvider = "rapidapi.zillow56"
	DefaultEndpoint = "search"
)

// SnapshotWriter is implemented by *store.Store.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, in store.SnapshotInput) (int, error)
}

// Hydrator persists provider results so later searches can be served locally.
type Hydrator struct {
	Store    SnapshotWriter
	Provider string
	Endpoint string
}

func (h *Hydrator) Enabled() bool { return h != nil && h.Store != nil }

// Write stores listings fetched for zip with the given price cap.
func (h *Hydrator) Write(ctx context.Context, zip string, maxPrice float64, runID uuid.UUID, raw []byte, listings []listing.Listing) (int, error) {
	if !h.Enabled() {
		return 0, nil
	}
	return h.Store.WriteSnapshot(ctx, store.SnapshotInput{
		Provider:    nonEmpty(h.Provider, DefaultProvider),
		Endpoint:    nonEmpty(h.Endpoint, DefaultEndpoint),
		Zip:         zip,
		MaxPrice:    maxPrice,
		RunID:       runID,
		PayloadJSON: raw,
		Listings:    listings,
	})
}

func nonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
