package afford

import (
	"strings"

	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/internal/mortgage"
)

// Affordability is the tag written to the affordable column.
type Affordability string

const (
	Affordable   Affordability = "yes"
	Unaffordable Affordability = "no"
	Unknown      Affordability = "unknown"
)

// Row is a listing annotated with its payment and affordability.
// MonthlyPayments is nil only when Affordable is Unknown.
type Row struct {
	listing.Listing
	MonthlyPayments *float64      `json:"monthly_payments"`
	Affordable      Affordability `json:"affordable"`
}

// Classify prices every listing under terms and tags it against the monthly ceiling.
// Each listing is handled on its own; unpriced listings come back as Unknown rows
// with a RowError rather than failing the batch.
func Classify(listings []listing.Listing, terms mortgage.LoanTerms, ceiling float64) ([]Row, []RowError) {
	rows := make([]Row, len(listings))
	var rowErrs []RowError
	for i, l := range listings {
		row, err := classifyOne(l, terms, ceiling)
		if err != nil {
			err.Index = i
			rowErrs = append(rowErrs, *err)
		}
		rows[i] = row
	}
	return rows, rowErrs
}

func classifyOne(l listing.Listing, terms mortgage.LoanTerms, ceiling float64) (Row, *RowError) {
	if !l.Priced() {
		return Row{Listing: l, Affordable: Unknown}, &RowError{
			Address: describe(l),
			Reason:  "missing or non-positive price",
		}
	}
	payment := mortgage.MonthlyPayment(l.Price, terms)
	tag := Unaffordable
	if payment <= ceiling {
		tag = Affordable
	}
	return Row{Listing: l, MonthlyPayments: &payment, Affordable: tag}, nil
}

func describe(l listing.Listing) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.StreetAddress, l.City, l.Zipcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "unknown address"
	}
	return strings.Join(parts, ", ")
}
