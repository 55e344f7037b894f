package mortgage

import (
	"fmt"
	"strings"
)

type Product struct {
	Name  string  `json:"name"`
	Years int     `json:"years"`
	Rate  float64 `json:"rate"`
}

// Terms combines the product with a down payment fraction.
func (p Product) Terms(downPayment float64) LoanTerms {
	return LoanTerms{Rate: p.Rate, Years: p.Years, DownPayment: downPayment}
}

// Products is the fixed menu offered to buyers, in display order.
var Products = []Product{
	{Name: "30-year fixed", Years: 30, Rate: 0.0568},
	{Name: "20-year fixed", Years: 20, Rate: 0.0536},
	{Name: "15-year fixed", Years: 15, Rate: 0.0486},
	{Name: "30-year FHA", Years: 30, Rate: 0.0488},
	{Name: "30-year VA", Years: 30, Rate: 0.05},
}

// DefaultProduct is used when a request names none.
const DefaultProduct = "30-year fixed"

func Lookup(name string) (Product, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultProduct
	}
	want := productKey(name)
	for _, p := range Products {
		if productKey(p.Name) == want {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("unknown mortgage product %q", name)
}

// "20-year-fixed" and "20 YEAR FIXED" both resolve to "20-year fixed".
func productKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
