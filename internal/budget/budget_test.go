package budget

import "testing"

func TestMonthlyCeiling(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		120000: 2250,
		100000: 1875,
		60000:  1125,
	}
	for income, want := range cases {
		if got := MonthlyCeiling(income); got != want {
			t.Errorf("MonthlyCeiling(%v) = %v, want %v", income, got, want)
		}
	}
}
