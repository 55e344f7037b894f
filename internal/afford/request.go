package afford

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/yourorg/afford-api/internal/mortgage"
)

// Param accepts a JSON string or number and keeps its text.
type Param string

func (p *Param) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Param(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*p = Param(num.String())
	return nil
}

// SearchRequest is a search as submitted by a form, query string or JSON body.
type SearchRequest struct {
	PostalCode  Param `json:"postal_code"`
	Income      Param `json:"income,omitempty"` // empty or "default": use the zip median
	MaxPrice    Param `json:"max_price,omitempty"`
	DownPayment Param `json:"down_payment,omitempty"`
	Product     Param `json:"mortgage_product,omitempty"`
}

type PriceTier struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

var PriceTiers = []PriceTier{
	{"100,000", 100_000},
	{"500,000", 500_000},
	{"750,000", 750_000},
	{"1,000,000", 1_000_000},
	{"2,500,000", 2_500_000},
	{"5,000,000", 5_000_000},
	{"10,000,000", 10_000_000},
}

var DownPaymentOptions = []float64{0.1, 0.2, 0.3, 0.4, 0.5}

const (
	DefaultMaxPrice    = 1_000_000
	DefaultDownPayment = 0.2
)

// ParseRequest checks a SearchRequest against the offered menus and builds the Query.
func ParseRequest(r SearchRequest) (Query, error) {
	var q Query
	q.PostalCode = strings.TrimSpace(string(r.PostalCode))
	if q.PostalCode == "" {
		return q, invalid("postal_code", "required")
	}

	if s := strings.TrimSpace(string(r.Income)); s != "" && !strings.EqualFold(s, "default") {
		v, err := parseAmount(s)
		if err != nil || v < 0 {
			return q, invalid("income", "%q is not a non-negative amount", s)
		}
		q.Income = &v
	}

	q.MaxPrice = DefaultMaxPrice
	if s := strings.TrimSpace(string(r.MaxPrice)); s != "" {
		v, err := parseAmount(s)
		if err != nil || !isTier(v) {
			return q, invalid("max_price", "%q is not one of the offered price tiers", s)
		}
		q.MaxPrice = v
	}

	down := DefaultDownPayment
	if s := strings.TrimSpace(string(r.DownPayment)); s != "" {
		v, err := parseFraction(s)
		if err != nil || !isDownPaymentOption(v) {
			return q, invalid("down_payment", "%q is not one of the offered down payments", s)
		}
		down = v
	}

	product, err := mortgage.Lookup(string(r.Product))
	if err != nil {
		return q, invalid("mortgage_product", "%v", err)
	}
	q.Terms = product.Terms(down)
	return q, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// "0.2", "20%" and "20" all mean a fifth down.
func parseFraction(s string) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, err
	}
	if pct || v > 1 {
		v /= 100
	}
	return v, nil
}

func isTier(v float64) bool {
	for _, t := range PriceTiers {
		if t.Value == v {
			return true
		}
	}
	return false
}

func isDownPaymentOption(v float64) bool {
	for _, o := range DownPaymentOptions {
		if math.Abs(o-v) < 1e-9 {
			return true
		}
	}
	return false
}
