package afford

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yourorg/afford-api/internal/listing"
)

func TestColumnsSchema(t *testing.T) {
	if len(Columns) != 21 {
		t.Fatalf("expected 21 columns, got %d", len(Columns))
	}
	if Columns[19] != "monthly_payments" || Columns[20] != "affordable" {
		t.Fatalf("derived columns out of place: %v", Columns[19:])
	}
}

func TestRowJSONFollowsColumns(t *testing.T) {
	rows, _ := Classify([]listing.Listing{{Price: 150000, City: "Calabasas"}, {}}, terms548, 1875)
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			t.Fatal(err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		if _, err := dec.Token(); err != nil {
			t.Fatal(err)
		}
		var keys []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				t.Fatal(err)
			}
			keys = append(keys, tok.(string))
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				t.Fatal(err)
			}
		}
		if strings.Join(keys, ",") != strings.Join(Columns, ",") {
			t.Fatalf("json keys %v do not follow %v", keys, Columns)
		}
	}
	b, _ := json.Marshal(rows[1])
	if !strings.Contains(string(b), `"monthly_payments":null,"affordable":"unknown"`) {
		t.Fatalf("unpriced row rendered as %s", b)
	}
}

func TestWriteCSV(t *testing.T) {
	rows, errs := Classify([]listing.Listing{
		{StreetAddress: "10 Elm St", City: "Calabasas", Zipcode: "91302", Price: 300000, Bathrooms: 2.5},
		{StreetAddress: "no price"},
	}, terms548, 1125)
	table := newTable(Query{MaxPrice: 500000, Terms: terms548}, "91302", Budget{}, rows, errs)

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	first := records[1]
	if first[0] != "2.5" || first[12] != "300000" || first[18] != "91302" {
		t.Fatalf("unexpected raw fields %v", first)
	}
	if first[19] != "1359.68" || first[20] != "no" {
		t.Fatalf("unexpected derived fields %v", first[19:])
	}
	if records[2][19] != "" || records[2][20] != "unknown" {
		t.Fatalf("unexpected unpriced row %v", records[2][19:])
	}
	if table.Summary != (Summary{Listings: 2, Unaffordable: 1, Unknown: 1}) {
		t.Fatalf("unexpected summary %+v", table.Summary)
	}
}
