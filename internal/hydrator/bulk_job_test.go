package hydrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"

	"github.com/yourorg/afford-api/internal/canon"
	"github.com/yourorg/afford-api/internal/store"
	"github.com/yourorg/afford-api/rapidapi"
)

type fakeFetcher struct {
	payloads map[string]string
	errs     map[string]error
	calls    []string
}

func (f *fakeFetcher) FetchListings(_ context.Context, location string, _ float64) ([]byte, error) {
	f.calls = append(f.calls, location)
	if err := f.errs[location]; err != nil {
		return nil, err
	}
	return []byte(f.payloads[location]), nil
}

type fakeWriter struct {
	inputs []store.SnapshotInput
}

func (w *fakeWriter) WriteSnapshot(_ context.Context, in store.SnapshotInput) (int, error) {
	w.inputs = append(w.inputs, in)
	return len(in.Listings), nil
}

func payload(addresses ...string) string {
	out := `{"results":[`
	for i, a := range addresses {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"streetAddress":%q,"city":"Calabasas","state":"CA","zipcode":"91302","price":500000}`, a)
	}
	return out + `]}`
}

func newJob(f Fetcher, w SnapshotWriter, zips ...string) *BulkJob {
	return &BulkJob{
		Client:   f,
		Hydrator: &Hydrator{Store: w},
		Logger:   log.New(io.Discard, "", 0),
		Config:   BulkConfig{Zips: zips, MaxPrice: 750_000},
	}
}

func TestRunOncePersistsEachZip(t *testing.T) {
	f := &fakeFetcher{payloads: map[string]string{
		"91302": payload("1 A St", "2 B St", ""),
		"90210": payload(),
	}}
	w := &fakeWriter{}
	if err := newJob(f, w, "91302", " 90210 ").RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.calls) != 2 || f.calls[1] != "90210" {
		t.Fatalf("unexpected fetches %v", f.calls)
	}
	if len(w.inputs) != 2 {
		t.Fatalf("expected a snapshot per zip, got %d", len(w.inputs))
	}
	in := w.inputs[0]
	if in.Zip != "91302" || in.Provider != DefaultProvider || in.RunID == uuid.Nil || len(in.Listings) != 3 {
		t.Fatalf("unexpected snapshot %+v", in)
	}
	if in.MaxPrice != 750_000 || in.Listings[2].StreetAddress != "" {
		t.Fatalf("snapshot should keep cap and unaddressed listing, got %+v", in)
	}
	if empty := w.inputs[1]; empty.Zip != "90210" || len(empty.Listings) != 0 || empty.RunID != in.RunID {
		t.Fatalf("unexpected empty snapshot %+v", empty)
	}
}

func TestRunOnceCollectsErrorsAndStopsOnQuota(t *testing.T) {
	f := &fakeFetcher{
		payloads: map[string]string{"10001": payload("5 C St")},
		errs: map[string]error{
			"91302": errors.New("boom"),
			"90210": fmt.Errorf("status 429: %w", rapidapi.ErrDailyLimitExceeded),
		},
	}
	w := &fakeWriter{}
	err := newJob(f, w, "bad", "91302", "90210", "10001").RunOnce(context.Background())
	if !errors.Is(err, rapidapi.ErrDailyLimitExceeded) || !errors.Is(err, canon.ErrInvalidZip) {
		t.Fatalf("expected joined quota and zip errors, got %v", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("run should stop at quota, fetched %v", f.calls)
	}
	if len(w.inputs) != 0 {
		t.Fatalf("nothing should be written, got %d", len(w.inputs))
	}
}

func TestValidate(t *testing.T) {
	if err := newJob(&fakeFetcher{}, nil, "91302").RunOnce(context.Background()); err == nil {
		t.Fatal("expected missing store error")
	}
	if err := newJob(&fakeFetcher{}, &fakeWriter{}).RunOnce(context.Background()); err == nil {
		t.Fatal("expected missing zips error")
	}
}

func TestRunRejectsBadSchedule(t *testing.T) {
	j := newJob(&fakeFetcher{}, &fakeWriter{}, "91302")
	j.Config.Schedule = "every tuesday"
	if err := j.Run(context.Background()); err == nil {
		t.Fatal("expected schedule parse error")
	}
}
