package afford

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/internal/mortgage"
)

const (
	IncomeExplicit = "explicit"
	IncomeMedian   = "zip_median"
)

// Budget is the income context of a search.
type Budget struct {
	Income         float64 `json:"income"`
	IncomeSource   string  `json:"income_source"`
	MonthlyCeiling float64 `json:"monthly_budget_ceiling"`
}

type Summary struct {
	Listings     int `json:"listings"`
	Affordable   int `json:"affordable"`
	Unaffordable int `json:"unaffordable"`
	Unknown      int `json:"unknown"`
}

// Table is the result handed to presentation: one row per listing returned
// by the listing source, in source order.
type Table struct {
	PostalCode string             `json:"postal_code"`
	MaxPrice   float64            `json:"max_price"`
	Terms      mortgage.LoanTerms `json:"loan_terms"`
	Budget     Budget             `json:"budget"`
	Summary    Summary            `json:"summary"`
	Columns    []string           `json:"columns"`
	Rows       []Row              `json:"rows"`
	Errors     []RowError         `json:"errors"`
}

// Columns is the fixed output schema.
var Columns = append(append([]string(nil), listing.Columns...), "monthly_payments", "affordable")

func newTable(q Query, zip string, b Budget, rows []Row, rowErrs []RowError) *Table {
	t := &Table{
		PostalCode: zip,
		MaxPrice:   q.MaxPrice,
		Terms:      q.Terms,
		Budget:     b,
		Columns:    append([]string(nil), Columns...),
		Rows:       rows,
		Errors:     rowErrs,
	}
	if t.Rows == nil {
		t.Rows = []Row{}
	}
	if t.Errors == nil {
		t.Errors = []RowError{}
	}
	t.Summary.Listings = len(rows)
	for _, r := range rows {
		switch r.Affordable {
		case Affordable:
			t.Summary.Affordable++
		case Unaffordable:
			t.Summary.Unaffordable++
		default:
			t.Summary.Unknown++
		}
	}
	return t
}

// Record renders the row as strings in Columns order.
func (r Row) Record() []string {
	l := r.Listing
	payment := ""
	if r.MonthlyPayments != nil {
		payment = decimal.NewFromFloat(*r.MonthlyPayments).StringFixed(2)
	}
	return []string{
		num(l.Bathrooms), num(l.Bedrooms), l.City, l.Country, l.Currency,
		l.HomeStatus, l.HomeType, num(l.Latitude), num(l.LivingArea), num(l.Longitude),
		l.LotAreaUnit, num(l.LotAreaValue), num(l.Price), num(l.RentZestimate), l.State,
		l.StreetAddress, num(l.TaxAssessedValue), num(l.Zestimate), l.Zipcode,
		payment, string(r.Affordable),
	}
}

func num(v float64) string { return decimal.NewFromFloat(v).String() }

// WriteCSV writes a header row followed by one record per row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
