package mortgage

import (
	"errors"
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("got %.6f, want %.6f (±%g)", got, want, tol)
	}
}

func TestMonthlyPaymentReference(t *testing.T) {
	terms := LoanTerms{Rate: 0.0548, Years: 30, DownPayment: 0.2}
	approx(t, MonthlyPayment(500000, terms), 2266.14, 1e-2)
	approx(t, MonthlyPayment(300000, terms), 1359.68, 1e-2)
	approx(t, MonthlyPayment(150000, terms), 679.84, 1e-2)
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	got := MonthlyPayment(240000, LoanTerms{Rate: 0, Years: 30, DownPayment: 0.2})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("zero rate produced %v", got)
	}
	approx(t, got, 240000*0.8/360, 1e-9)
}

func TestMonthlyPaymentFullDownPayment(t *testing.T) {
	for _, rate := range []float64{0, 0.05} {
		got := MonthlyPayment(400000, LoanTerms{Rate: rate, Years: 15, DownPayment: 1})
		if got != 0 {
			t.Fatalf("rate %v: expected 0 with 100%% down, got %v", rate, got)
		}
	}
}

func TestMonthlyPaymentMonotonicInPrice(t *testing.T) {
	for _, terms := range []LoanTerms{
		{Rate: 0, Years: 30, DownPayment: 0.1},
		{Rate: 0.0486, Years: 15, DownPayment: 0.3},
		{Rate: 0.0568, Years: 30, DownPayment: 0.5},
	} {
		prev := -1.0
		for price := 1000.0; price <= 10_000_000; price *= 1.7 {
			got := MonthlyPayment(price, terms)
			if got < 0 {
				t.Fatalf("%+v price %v: negative payment %v", terms, price, got)
			}
			if got <= prev {
				t.Fatalf("%+v price %v: payment %v not above %v", terms, price, got, prev)
			}
			prev = got
		}
	}
}

func TestScheduleTotals(t *testing.T) {
	terms := LoanTerms{Rate: 0, Years: 10, DownPayment: 0.5}
	s := Schedule(240000, terms)
	approx(t, s.Principal, 120000, 1e-9)
	approx(t, s.TotalPayment, 120000, 1e-6)
	approx(t, s.TotalInterest, 0, 1e-6)

	s = Schedule(500000, LoanTerms{Rate: 0.0548, Years: 30, DownPayment: 0.2})
	if s.TotalInterest <= 0 {
		t.Fatalf("expected positive interest, got %v", s.TotalInterest)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		terms LoanTerms
		want  error
	}{
		{LoanTerms{Rate: 0.05, Years: 30, DownPayment: 0.2}, nil},
		{LoanTerms{Rate: 0, Years: 1, DownPayment: 0}, nil},
		{LoanTerms{Rate: 0.05, Years: 30, DownPayment: 1}, nil},
		{LoanTerms{Rate: -0.01, Years: 30, DownPayment: 0.2}, ErrNegativeRate},
		{LoanTerms{Rate: 0.05, Years: 0, DownPayment: 0.2}, ErrNonPositiveTerm},
		{LoanTerms{Rate: 0.05, Years: 30, DownPayment: 1.2}, ErrDownPaymentRange},
		{LoanTerms{Rate: 0.05, Years: 30, DownPayment: -0.1}, ErrDownPaymentRange},
	}
	for _, c := range cases {
		err := c.terms.Validate()
		if c.want == nil && err != nil {
			t.Fatalf("%+v: unexpected error %v", c.terms, err)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Fatalf("%+v: got %v, want %v", c.terms, err, c.want)
		}
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("20-year-fixed")
	if err != nil {
		t.Fatal(err)
	}
	if p.Years != 20 || p.Rate != 0.0536 {
		t.Fatalf("unexpected product %+v", p)
	}
	p, err = Lookup("")
	if err != nil || p.Name != DefaultProduct {
		t.Fatalf("default lookup: %+v %v", p, err)
	}
	if _, err := Lookup("40-year balloon"); err == nil {
		t.Fatal("expected unknown product error")
	}
	terms := p.Terms(0.2)
	if terms.Rate != 0.0568 || terms.Years != 30 || terms.DownPayment != 0.2 {
		t.Fatalf("unexpected terms %+v", terms)
	}
}
