package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/incomecache"
)

type stubIncome map[string]float64

func (s stubIncome) MedianIncome(_ context.Context, zip string) (float64, error) {
	v, ok := s[zip]
	if !ok {
		return 0, fmt.Errorf("status 404: %w", afford.ErrInvalidLocation)
	}
	return v, nil
}

func get(t *testing.T, d IncomeDeps, path string) (int, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	RegisterIncome(r, d)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestIncomeLookup(t *testing.T) {
	d := IncomeDeps{Income: &incomecache.Source{Upstream: stubIncome{"91302": 150_000}}}
	code, body := get(t, d, "/v1/income/91302")
	if code != http.StatusOK {
		t.Fatalf("status %d %v", code, body)
	}
	income, _ := body["income"].(map[string]any)
	if income["median_income"] != 150_000.0 || income["source"] != "fresh" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestIncomeErrors(t *testing.T) {
	d := IncomeDeps{Income: &incomecache.Source{Upstream: stubIncome{}}}
	if code, body := get(t, d, "/v1/income/12"); code != http.StatusBadRequest || body["error"] != "invalid_input" {
		t.Fatalf("got %d %v", code, body)
	}
	if code, body := get(t, d, "/v1/income/99999"); code != http.StatusNotFound || body["error"] != "not_found" {
		t.Fatalf("got %d %v", code, body)
	}
	if code, _ := get(t, IncomeDeps{}, "/v1/income/91302"); code != http.StatusServiceUnavailable {
		t.Fatalf("got %d", code)
	}
}
