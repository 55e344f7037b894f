package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/afford-api/internal/afford"
)

// KeyHeader carries the caller's own provider credential.
const KeyHeader = "X-RapidAPI-Key"

type AffordDeps struct {
	// Pipeline builds a search pipeline for a caller key; "" means the server key.
	Pipeline func(apiKey string) *afford.Pipeline
}

func RegisterAfford(r chi.Router, d AffordDeps) {
	// POST: JSON body
	r.Post("/afford", func(w http.ResponseWriter, req *http.Request) {
		var body afford.SearchRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			WriteError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		handleAfford(w, req, d, body)
	})

	// GET: query params, as submitted by the search form
	r.Get("/afford", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		body := afford.SearchRequest{
			PostalCode:  afford.Param(first(q.Get("postal_code"), q.Get("zip"))),
			Income:      afford.Param(q.Get("income")),
			MaxPrice:    afford.Param(q.Get("max_price")),
			DownPayment: afford.Param(q.Get("down_payment")),
			Product:     afford.Param(q.Get("mortgage_product")),
		}
		handleAfford(w, req, d, body)
	})
}

func handleAfford(w http.ResponseWriter, req *http.Request, d AffordDeps, body afford.SearchRequest) {
	query, err := afford.ParseRequest(body)
	if err != nil {
		WriteFailure(w, req, err)
		return
	}
	if d.Pipeline == nil {
		WriteError(w, req, http.StatusServiceUnavailable, "not_configured", "search pipeline not configured")
		return
	}
	key := strings.TrimSpace(req.Header.Get(KeyHeader))
	table, err := d.Pipeline(key).Run(req.Context(), query)
	if err != nil {
		WriteFailure(w, req, err)
		return
	}

	if strings.EqualFold(req.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="afford-%s.csv"`, table.PostalCode))
		if err := table.WriteCSV(w); err != nil {
			log.Printf("[WARN] csv write for %s failed: %v", table.PostalCode, err)
		}
		return
	}
	render.JSON(w, req, table)
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
