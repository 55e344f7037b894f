package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/mortgage"
)

type optionsResponse struct {
	PriceTiers         []afford.PriceTier `json:"price_tiers"`
	DownPayments       []float64          `json:"down_payments"`
	Products           []mortgage.Product `json:"mortgage_products"`
	DefaultMaxPrice    float64            `json:"default_max_price"`
	DefaultDownPayment float64            `json:"default_down_payment"`
	DefaultProduct     string             `json:"default_mortgage_product"`
	Columns            []string           `json:"columns"`
}

// RegisterOptions serves the menus a search form offers.
func RegisterOptions(r chi.Router) {
	r.Get("/options", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, optionsResponse{
			PriceTiers:         afford.PriceTiers,
			DownPayments:       afford.DownPaymentOptions,
			Products:           mortgage.Products,
			DefaultMaxPrice:    afford.DefaultMaxPrice,
			DefaultDownPayment: afford.DefaultDownPayment,
			DefaultProduct:     mortgage.DefaultProduct,
			Columns:            afford.Columns,
		})
	})
}
