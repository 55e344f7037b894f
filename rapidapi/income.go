package rapidapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// MedianIncome returns the census median household income for zip.
// It satisfies afford.IncomeSource.
func (c *Client) MedianIncome(ctx context.Context, zip string) (float64, error) {
	u := fmt.Sprintf("%s/v1/Census/HouseholdIncomeByZip/%s", c.incomeURL, url.PathEscape(zip))
	raw, err := c.get(ctx, IncomeHost, u)
	if err != nil {
		return 0, err
	}
	return MapIncome(raw)
}

func MapIncome(raw []byte) (float64, error) {
	var root struct {
		MedianIncome *number `json:"medianIncome"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return 0, fmt.Errorf("decode income payload: %w", err)
	}
	if root.MedianIncome == nil {
		return 0, errors.New("income payload has no medianIncome")
	}
	v := float64(*root.MedianIncome)
	if v <= 0 {
		return 0, fmt.Errorf("income payload has unusable medianIncome %v", v)
	}
	return v, nil
}
