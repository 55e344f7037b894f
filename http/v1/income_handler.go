package v1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/afford-api/http"
	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/canon"
	"github.com/yourorg/afford-api/internal/incomecache"
)

type IncomeDeps struct {
	Income *incomecache.Source
}

// RegisterIncome serves cached zip median incomes with stale-while-revalidate.
func RegisterIncome(r chi.Router, d IncomeDeps) {
	r.Route("/v1/income", func(r chi.Router) {
		r.Get("/{zip}", func(w http.ResponseWriter, req *http.Request) {
			zip, err := canon.Zip(chi.URLParam(req, "zip"))
			if err != nil {
				httpapi.WriteError(w, req, http.StatusBadRequest, "invalid_input", err.Error())
				return
			}
			if d.Income == nil {
				httpapi.WriteError(w, req, http.StatusServiceUnavailable, "not_configured", "income source not configured")
				return
			}
			l, err := d.Income.Lookup(req.Context(), zip)
			if err != nil {
				if errors.Is(err, afford.ErrInvalidLocation) {
					httpapi.WriteError(w, req, http.StatusNotFound, "not_found", err.Error())
					return
				}
				httpapi.WriteFailure(w, req, &afford.SourceError{Source: afford.SourceIncome, Err: err})
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "income": l})
		})
	})
}
