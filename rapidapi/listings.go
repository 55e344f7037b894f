package rapidapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/listing"
)

// FetchListings returns the raw Zillow search payload for location, capped at maxPrice.
func (c *Client) FetchListings(ctx context.Context, location string, maxPrice float64) ([]byte, error) {
	q := url.Values{}
	q.Set("location", location)
	if maxPrice > 0 {
		q.Set("price_max", strconv.FormatFloat(maxPrice, 'f', 0, 64))
	}
	return c.get(ctx, ZillowHost, fmt.Sprintf("%s/search?%s", c.listingURL, q.Encode()))
}

// SearchListings fetches and maps listings; it satisfies afford.ListingSource.
func (c *Client) SearchListings(ctx context.Context, location string, maxPrice float64) ([]listing.Listing, error) {
	raw, err := c.FetchListings(ctx, location, maxPrice)
	if err != nil {
		return nil, err
	}
	return MapListings(raw)
}

// number accepts a JSON number, a numeric string or null.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// provider sometimes sends labels like "--"; treat as absent
		*n = 0
		return nil
	}
	*n = number(v)
	return nil
}

// text accepts a JSON string or number and keeps its textual form.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*t = text(num.String())
	return nil
}

type zResult struct {
	Bathrooms        number `json:"bathrooms"`
	Bedrooms         number `json:"bedrooms"`
	City             text   `json:"city"`
	Country          text   `json:"country"`
	Currency         text   `json:"currency"`
	HomeStatus       text   `json:"homeStatus"`
	HomeType         text   `json:"homeType"`
	Latitude         number `json:"latitude"`
	LivingArea       number `json:"livingArea"`
	Longitude        number `json:"longitude"`
	LotAreaUnit      text   `json:"lotAreaUnit"`
	LotAreaValue     number `json:"lotAreaValue"`
	Price            number `json:"price"`
	RentZestimate    number `json:"rentZestimate"`
	State            text   `json:"state"`
	StreetAddress    text   `json:"streetAddress"`
	TaxAssessedValue number `json:"taxAssessedValue"`
	Zestimate        number `json:"zestimate"`
	Zipcode          text   `json:"zipcode"`
}

// MapListings maps a Zillow search payload ({"results": [...]}) to listings.
// A well-formed payload without results means the location was not understood.
func MapListings(raw []byte) ([]listing.Listing, error) {
	var root struct {
		Results *[]zResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode listings payload: %w", err)
	}
	if root.Results == nil {
		return nil, fmt.Errorf("listings payload has no results: %w", afford.ErrInvalidLocation)
	}

	out := make([]listing.Listing, 0, len(*root.Results))
	for _, r := range *root.Results {
		out = append(out, listing.Listing{
			Bathrooms:        float64(r.Bathrooms),
			Bedrooms:         float64(r.Bedrooms),
			City:             string(r.City),
			Country:          string(r.Country),
			Currency:         string(r.Currency),
			HomeStatus:       string(r.HomeStatus),
			HomeType:         string(r.HomeType),
			Latitude:         float64(r.Latitude),
			LivingArea:       float64(r.LivingArea),
			Longitude:        float64(r.Longitude),
			LotAreaUnit:      string(r.LotAreaUnit),
			LotAreaValue:     float64(r.LotAreaValue),
			Price:            float64(r.Price),
			RentZestimate:    float64(r.RentZestimate),
			State:            string(r.State),
			StreetAddress:    string(r.StreetAddress),
			TaxAssessedValue: float64(r.TaxAssessedValue),
			Zestimate:        float64(r.Zestimate),
			Zipcode:          string(r.Zipcode),
		})
	}
	return out, nil
}
