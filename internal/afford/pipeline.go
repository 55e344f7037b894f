package afford

import (
	"context"
	"errors"
	"log"
	"math"

	"github.com/yourorg/afford-api/internal/budget"
	"github.com/yourorg/afford-api/internal/canon"
	"github.com/yourorg/afford-api/internal/listing"
	"github.com/yourorg/afford-api/internal/mortgage"
)

// ListingSource returns the for-sale listings at a location up to maxPrice.
type ListingSource interface {
	SearchListings(ctx context.Context, location string, maxPrice float64) ([]listing.Listing, error)
}

// IncomeSource returns the median household income of a zip code.
type IncomeSource interface {
	MedianIncome(ctx context.Context, zip string) (float64, error)
}

// Query is one affordability search. A nil Income is resolved to the
// zip's median household income.
type Query struct {
	PostalCode string
	MaxPrice   float64
	Income     *float64
	Terms      mortgage.LoanTerms
}

type Pipeline struct {
	Listings ListingSource
	Income   IncomeSource
	Logger   *log.Logger
}

func NewPipeline(listings ListingSource, income IncomeSource, logger *log.Logger) *Pipeline {
	return &Pipeline{Listings: listings, Income: income, Logger: logger}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logger != nil {
		p.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (q Query) validate() (string, error) {
	zip, err := canon.Zip(q.PostalCode)
	if err != nil {
		return "", invalid("postal_code", "%q is not a 5-digit zip code", q.PostalCode)
	}
	if !(q.MaxPrice > 0) || math.IsInf(q.MaxPrice, 0) {
		return "", invalid("max_price", "must be > 0, got %v", q.MaxPrice)
	}
	if q.Income != nil && (!(*q.Income >= 0) || math.IsInf(*q.Income, 0)) {
		return "", invalid("income", "must be >= 0, got %v", *q.Income)
	}
	if err := q.Terms.Validate(); err != nil {
		return "", invalid("loan_terms", "%v", err)
	}
	return zip, nil
}

// Run resolves income, fetches listings and returns the annotated table.
// Any source failure aborts the run without a table.
func (p *Pipeline) Run(ctx context.Context, q Query) (*Table, error) {
	zip, err := q.validate()
	if err != nil {
		return nil, err
	}

	b := Budget{IncomeSource: IncomeExplicit}
	if q.Income != nil {
		b.Income = *q.Income
	} else {
		if p.Income == nil {
			return nil, &SourceError{Source: SourceIncome, Err: errors.New("no income source configured")}
		}
		median, err := p.Income.MedianIncome(ctx, zip)
		if err != nil {
			return nil, sourceFailure(SourceIncome, err)
		}
		if !(median >= 0) || math.IsInf(median, 0) {
			return nil, &SourceError{Source: SourceIncome, Err: errors.New("median income out of range")}
		}
		b.Income = median
		b.IncomeSource = IncomeMedian
	}

	if p.Listings == nil {
		return nil, &SourceError{Source: SourceListings, Err: errors.New("no listing source configured")}
	}
	found, err := p.Listings.SearchListings(ctx, zip, q.MaxPrice)
	if err != nil {
		return nil, sourceFailure(SourceListings, err)
	}

	b.MonthlyCeiling = budget.MonthlyCeiling(b.Income)
	rows, rowErrs := Classify(found, q.Terms, b.MonthlyCeiling)
	for _, re := range rowErrs {
		p.logf("[WARN] zip %s: %v", zip, re)
	}

	t := newTable(q, zip, b, rows, rowErrs)
	p.logf("[INFO] zip %s: %d listings, %d affordable under %.2f/month", zip, len(rows), t.Summary.Affordable, b.MonthlyCeiling)
	return t, nil
}

func sourceFailure(source string, err error) error {
	if errors.Is(err, ErrInvalidLocation) {
		return &ValidationError{Field: "postal_code", Reason: err.Error()}
	}
	return &SourceError{Source: source, Err: err}
}
