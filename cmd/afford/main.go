// Command afford runs one affordability search and prints the result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/yourorg/afford-api/internal/afford"
	"github.com/yourorg/afford-api/internal/config"
	"github.com/yourorg/afford-api/rapidapi"
)

func main() {
	zip := flag.String("zip", "", "postal code to search (required)")
	income := flag.String("income", "", `annual household income; empty or "default" uses the zip median`)
	maxPrice := flag.String("max-price", "", "price ceiling, one of the offered tiers (default 1,000,000)")
	down := flag.String("down", "", "down payment fraction or percent (default 0.2)")
	product := flag.String("product", "", `mortgage product (default "30-year fixed")`)
	format := flag.String("format", "table", "output format: table, csv or json")
	key := flag.String("key", "", "RapidAPI key (default RAPIDAPI_KEY)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	apiKey := cfg.RapidAPIKey
	if *key != "" {
		apiKey = *key
	}

	query, err := afford.ParseRequest(afford.SearchRequest{
		PostalCode:  afford.Param(*zip),
		Income:      afford.Param(*income),
		MaxPrice:    afford.Param(*maxPrice),
		DownPayment: afford.Param(*down),
		Product:     afford.Param(*product),
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := rapidapi.NewClient(apiKey, rapidapi.WithRateLimit(cfg.RapidAPIRPS, 1))
	// keep stdout clean for csv and json
	pipeline := afford.NewPipeline(client, client, log.New(os.Stderr, "", log.LstdFlags))
	table, err := pipeline.Run(ctx, query)
	if err != nil {
		if errors.Is(err, rapidapi.ErrMissingKey) {
			log.Fatal("no RapidAPI key: pass -key or set RAPIDAPI_KEY")
		}
		log.Fatal(err)
	}

	if err := write(os.Stdout, table, *format); err != nil {
		log.Fatal(err)
	}
}

func write(w io.Writer, t *afford.Table, format string) error {
	switch strings.ToLower(format) {
	case "csv":
		return t.WriteCSV(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case "table", "":
		return writeText(w, t)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeText(w io.Writer, t *afford.Table) error {
	fmt.Fprintf(w, "zip %s, max price %s, %d-year at %s%%, %s%% down\n",
		t.PostalCode, money(t.MaxPrice), t.Terms.Years,
		decimal.NewFromFloat(t.Terms.Rate).Shift(2).StringFixed(2),
		decimal.NewFromFloat(t.Terms.DownPayment).Shift(2).String())
	fmt.Fprintf(w, "income %s (%s), monthly ceiling %s\n\n",
		money(t.Budget.Income), t.Budget.IncomeSource, money(t.Budget.MonthlyCeiling))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ADDRESS\tPRICE\tBEDS\tBATHS\tMONTHLY\tAFFORDABLE\t")
	for _, r := range t.Rows {
		payment := "-"
		if r.MonthlyPayments != nil {
			payment = money(*r.MonthlyPayments)
		}
		price := "-"
		if r.Priced() {
			price = money(r.Price)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.StreetAddress, price,
			decimal.NewFromFloat(r.Bedrooms).String(), decimal.NewFromFloat(r.Bathrooms).String(),
			payment, r.Affordable)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := t.Summary
	_, err := fmt.Fprintf(w, "\n%d listings: %d affordable, %d unaffordable, %d unknown\n",
		s.Listings, s.Affordable, s.Unaffordable, s.Unknown)
	return err
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
