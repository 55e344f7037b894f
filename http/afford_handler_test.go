package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/rapidapi"
)

type stubListings struct {
	out []listing.Listing
	err error
}

func (s stubListings) SearchListings(context.Context, string, float64) ([]listing.Listing, error) {
	return s.out, s.err
}

type stubIncome float64

func (s stubIncome) MedianIncome(context.Context, string) (float64, error) { return float64(s), nil }

func newServer(t *testing.T, src afford.ListingSource, keys *[]string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	RegisterAfford(r, AffordDeps{Pipeline: func(apiKey string) *afford.Pipeline {
		if keys != nil {
			*keys = append(*keys, apiKey)
		}
		return afford.NewPipeline(src, stubIncome(100_000), log.New(io.Discard, "", 0))
	}})
	RegisterOptions(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

var twoListings = stubListings{out: []listing.Listing{
	{StreetAddress: "1 A St", Zipcode: "91302", Price: 300_000},
	{StreetAddress: "2 B St", Zipcode: "91302"},
}}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestGetAffordReturnsTable(t *testing.T) {
	var keys []string
	srv := newServer(t, twoListings, &keys)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/afford?postal_code=91302&max_price=750,000&down_payment=20%25", nil)
	req.Header.Set(KeyHeader, "caller-key")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var table afford.Table
	decodeBody(t, resp, &table)
	if len(table.Rows) != 2 || table.Summary.Affordable != 1 || table.Summary.Unknown != 1 {
		t.Fatalf("unexpected table %+v", table)
	}
	if table.Budget.IncomeSource != afford.IncomeMedian || table.Budget.MonthlyCeiling != 1875 {
		t.Fatalf("unexpected budget %+v", table.Budget)
	}
	if len(table.Columns) != 21 || len(table.Errors) != 1 {
		t.Fatalf("columns %d errors %d", len(table.Columns), len(table.Errors))
	}
	if len(keys) != 1 || keys[0] != "caller-key" {
		t.Fatalf("pipeline built with keys %v", keys)
	}
}

func TestPostAffordAcceptsNumbers(t *testing.T) {
	srv := newServer(t, twoListings, nil)
	body := `{"postal_code":"91302","income":100000,"max_price":750000,"down_payment":0.2,"mortgage_product":"15-year fixed"}`
	resp, err := http.Post(srv.URL+"/afford", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	var table afford.Table
	decodeBody(t, resp, &table)
	if resp.StatusCode != http.StatusOK || table.Terms.Years != 15 || table.Budget.IncomeSource != afford.IncomeExplicit {
		t.Fatalf("status %d table %+v", resp.StatusCode, table)
	}
}

func TestAffordCSV(t *testing.T) {
	srv := newServer(t, twoListings, nil)
	resp, err := http.Get(srv.URL + "/afford?postal_code=91302&format=csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type %q", ct)
	}
	b, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 || lines[0] != strings.Join(afford.Columns, ",") {
		t.Fatalf("unexpected csv:\n%s", b)
	}
}

func TestAffordErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		src    afford.ListingSource
		query  string
		status int
		code   string
	}{
		{"missing zip", twoListings, "", http.StatusBadRequest, "invalid_input"},
		{"bad zip", twoListings, "postal_code=abc", http.StatusBadRequest, "invalid_input"},
		{"bad tier", twoListings, "postal_code=91302&max_price=123", http.StatusBadRequest, "invalid_input"},
		{"rejected location", stubListings{err: fmt.Errorf("status 404: %w", afford.ErrInvalidLocation)}, "postal_code=91302", http.StatusBadRequest, "invalid_input"},
		{"quota", stubListings{err: fmt.Errorf("status 429: %w", rapidapi.ErrDailyLimitExceeded)}, "postal_code=91302", http.StatusTooManyRequests, "provider_quota"},
		{"missing key", stubListings{err: rapidapi.ErrMissingKey}, "postal_code=91302", http.StatusUnauthorized, "api_key_required"},
		{"upstream down", stubListings{err: fmt.Errorf("status 503")}, "postal_code=91302", http.StatusBadGateway, "source_unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.src, nil)
			resp, err := http.Get(srv.URL + "/afford?" + tc.query)
			if err != nil {
				t.Fatal(err)
			}
			var body map[string]any
			decodeBody(t, resp, &body)
			if resp.StatusCode != tc.status || body["error"] != tc.code {
				t.Fatalf("got %d %v", resp.StatusCode, body)
			}
		})
	}
}

func TestPostAffordInvalidJSON(t *testing.T) {
	srv := newServer(t, twoListings, nil)
	resp, err := http.Post(srv.URL+"/afford", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid_json" {
		t.Fatalf("got %d %v", resp.StatusCode, body)
	}
}

func TestOptions(t *testing.T) {
	srv := newServer(t, twoListings, nil)
	resp, err := http.Get(srv.URL + "/options")
	if err != nil {
		t.Fatal(err)
	}
	var body optionsResponse
	decodeBody(t, resp, &body)
	if len(body.PriceTiers) != 7 || len(body.DownPayments) != 5 || len(body.Products) != 5 {
		t.Fatalf("unexpected options %+v", body)
	}
	if body.DefaultProduct != "30-year fixed" {
		t.Fatalf("default product %q", body.DefaultProduct)
	}
}
