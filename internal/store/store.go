package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yourorg/afford-api/internal/canon"
	"github.com/yourorg/afford-api/internal/listing"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS provider_raw_snapshots (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            provider        TEXT NOT NULL,
            endpoint        TEXT NOT NULL,
            search_zip      TEXT NOT NULL,
            fetch_price_max DOUBLE PRECISION NOT NULL,
            run_id          UUID,
            payload         JSONB,
            payload_sha256  TEXT,
            listing_count   INT NOT NULL,
            fetched_at      TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_search ON provider_raw_snapshots(search_zip, fetch_price_max, fetched_at DESC);`,
		`CREATE TABLE IF NOT EXISTS snapshot_listings (
            snapshot_id        UUID NOT NULL REFERENCES provider_raw_snapshots(id) ON DELETE CASCADE,
            position           INT NOT NULL,
            property_key       TEXT NOT NULL,
            bathrooms          DOUBLE PRECISION,
            bedrooms           DOUBLE PRECISION,
            city               TEXT,
            country            TEXT,
            currency           TEXT,
            home_status        TEXT,
            home_type          TEXT,
            latitude           DOUBLE PRECISION,
            living_area        DOUBLE PRECISION,
            longitude          DOUBLE PRECISION,
            lot_area_unit      TEXT,
            lot_area_value     DOUBLE PRECISION,
            price              DOUBLE PRECISION,
            rent_zestimate     DOUBLE PRECISION,
            state              TEXT,
            street_address     TEXT,
            tax_assessed_value DOUBLE PRECISION,
            zestimate          DOUBLE PRECISION,
            zipcode            TEXT,
            PRIMARY KEY (snapshot_id, position)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_listings_key ON snapshot_listings(property_key);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// listingColumns follows listing.Columns.
var listingColumns = []string{
	"bathrooms", "bedrooms", "city", "country", "currency",
	"home_status", "home_type", "latitude", "living_area", "longitude",
	"lot_area_unit", "lot_area_value", "price", "rent_zestimate", "state",
	"street_address", "tax_assessed_value", "zestimate", "zipcode",
}

var insertListingSQL = buildInsertListingSQL()

func buildInsertListingSQL() string {
	cols := append([]string{"snapshot_id", "position", "property_key"}, listingColumns...)
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(`INSERT INTO snapshot_listings (%s) VALUES (%s)`,
		strings.Join(cols, ", "), strings.Join(ph, ","))
}

func listingArgs(snapshotID uuid.UUID, position int, l listing.Listing) []any {
	return []any{
		snapshotID, position, canon.ListingKey(l),
		nullFloat(l.Bathrooms), nullFloat(l.Bedrooms), l.City, l.Country, l.Currency,
		l.HomeStatus, l.HomeType, nullFloat(l.Latitude), nullFloat(l.LivingArea), nullFloat(l.Longitude),
		l.LotAreaUnit, nullFloat(l.LotAreaValue), nullFloat(l.Price), nullFloat(l.RentZestimate), l.State,
		l.StreetAddress, nullFloat(l.TaxAssessedValue), nullFloat(l.Zestimate), l.Zipcode,
	}
}

type SnapshotInput struct {
	Provider    string
	Endpoint    string
	Zip         string
	MaxPrice    float64   // price cap the provider was queried with
	RunID       uuid.UUID // uuid.Nil outside hydrator runs
	PayloadJSON []byte
	Listings    []listing.Listing
}

// WriteSnapshot stores one provider answer: the raw payload and every listing
// in provider order, in one transaction. It returns how many listings were written.
func (s *Store) WriteSnapshot(ctx context.Context, in SnapshotInput) (written int, err error) {
	if s.DB == nil {
		return 0, errors.New("nil db")
	}
	runID := uuid.NullUUID{UUID: in.RunID, Valid: in.RunID != uuid.Nil}
	var payload, digest sql.NullString
	if len(in.PayloadJSON) > 0 {
		sum := sha256.Sum256(in.PayloadJSON)
		payload = sql.NullString{String: string(in.PayloadJSON), Valid: true}
		digest = sql.NullString{String: hex.EncodeToString(sum[:]), Valid: true}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id uuid.UUID
	if err = tx.QueryRowContext(ctx, `
            INSERT INTO provider_raw_snapshots
                (provider, endpoint, search_zip, fetch_price_max, run_id, payload, payload_sha256, listing_count)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id`,
		in.Provider, in.Endpoint, in.Zip, in.MaxPrice, runID, payload, digest, len(in.Listings),
	).Scan(&id); err != nil {
		return 0, err
	}

	for i, l := range in.Listings {
		if _, err = tx.ExecContext(ctx, insertListingSQL, listingArgs(id, i, l)...); err != nil {
			return 0, err
		}
		written++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

// LatestSnapshot returns the listings of the newest snapshot for zip fetched
// with exactly maxPrice less than maxAge ago, in provider order. found is false
// when there is none; an empty snapshot is found with no listings.
func (s *Store) LatestSnapshot(ctx context.Context, zip string, maxPrice float64, maxAge time.Duration) (out []listing.Listing, found bool, err error) {
	if s.DB == nil {
		return nil, false, errors.New("nil db")
	}
	var id uuid.UUID
	err = s.DB.QueryRowContext(ctx, `
        SELECT id FROM provider_raw_snapshots
        WHERE search_zip = $1 AND fetch_price_max = $2 AND fetched_at > $3
        ORDER BY fetched_at DESC
        LIMIT 1`,
		zip, maxPrice, time.Now().Add(-maxAge),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
        SELECT %s FROM snapshot_listings
        WHERE snapshot_id = $1
        ORDER BY position`, strings.Join(listingColumns, ", ")),
		id,
	)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	out = []listing.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, false, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func scanListing(rows *sql.Rows) (listing.Listing, error) {
	var (
		l                                                         listing.Listing
		baths, beds, lat, area, lon, lot, price, rent, tax, zest  sql.NullFloat64
		city, country, currency, status, typ, unit, state, street sql.NullString
		zip                                                       sql.NullString
	)
	err := rows.Scan(&baths, &beds, &city, &country, &currency,
		&status, &typ, &lat, &area, &lon,
		&unit, &lot, &price, &rent, &state,
		&street, &tax, &zest, &zip)
	if err != nil {
		return l, err
	}
	l.Bathrooms, l.Bedrooms = baths.Float64, beds.Float64
	l.City, l.Country, l.Currency = city.String, country.String, currency.String
	l.HomeStatus, l.HomeType = status.String, typ.String
	l.Latitude, l.LivingArea, l.Longitude = lat.Float64, area.Float64, lon.Float64
	l.LotAreaUnit, l.LotAreaValue = unit.String, lot.Float64
	l.Price, l.RentZestimate = price.Float64, rent.Float64
	l.State, l.StreetAddress = state.String, street.String
	l.TaxAssessedValue, l.Zestimate, l.Zipcode = tax.Float64, zest.Float64, zip.String
	return l, nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
