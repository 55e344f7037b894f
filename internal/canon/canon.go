package canon

import (
	"errors"
	"regexp"
	"strings"

	"github.com/yourorg/afford-api/internal/listing"
)

var (
	rePunct = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	reZip   = regexp.MustCompile(`^(\d{5})(?:-\d{4})?$`)
)

var ErrInvalidZip = errors.New("postal code must be a 5-digit US zip")

// Zip accepts "91302", " 91302 " and ZIP+4 forms ("91302-1234") and returns the
// 5-digit zip.
func Zip(raw string) (string, error) {
	m := reZip.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", ErrInvalidZip
	}
	return m[1], nil
}

// Address is a normalized postal address.
type Address struct {
	Line1 string
	Unit  string
	City  string
	State string
	Zip   string
}

// Key is stable per dwelling: "Apt 2" and "#2" on the same street line match.
func (a Address) Key() string {
	if a.Line1 == "" || a.Zip == "" {
		return ""
	}
	line := a.Line1
	if a.Unit != "" {
		line += " #" + a.Unit
	}
	return strings.ToLower(line + "|" + a.City + "|" + a.State + "|" + a.Zip)
}

func Canonicalize(line1, city, state, zip string) Address {
	n1, unit := splitUnit(strings.ToUpper(strings.TrimSpace(line1)))
	n1 = rePunct.ReplaceAllString(n1, " ")
	n1 = collapseSpaces(abbreviateSuffix(" " + n1 + " "))

	st := strings.ToUpper(strings.TrimSpace(state))
	if abbr, ok := stateAbbrev[st]; ok {
		st = abbr
	}
	return Address{
		Line1: n1,
		Unit:  collapseSpaces(rePunct.ReplaceAllString(unit, " ")),
		City:  collapseSpaces(rePunct.ReplaceAllString(strings.ToUpper(city), " ")),
		State: st,
		Zip:   trimZip(zip),
	}
}

// ListingKey identifies the dwelling a listing is for; "" without a street or zip.
func ListingKey(l listing.Listing) string {
	return Canonicalize(l.StreetAddress, l.City, l.State, l.Zipcode).Key()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimZip(z string) string {
	z = strings.TrimSpace(z)
	if len(z) >= 5 {
		return z[:5]
	}
	return z
}

// splitUnit separates "5 OAK DR APT 2" into "5 OAK DR" and "2".
func splitUnit(s string) (string, string) {
	padded := " " + s + " "
	for _, tok := range []string{" APT ", " UNIT ", " STE ", " SUITE ", " #"} {
		if i := strings.Index(padded, tok); i >= 0 {
			return strings.TrimSpace(padded[:i]), strings.TrimSpace(padded[i+len(tok):])
		}
	}
	return strings.TrimSpace(s), ""
}

var suffixes = strings.NewReplacer(
	" STREET ", " ST ",
	" ROAD ", " RD ",
	" AVENUE ", " AVE ",
	" BOULEVARD ", " BLVD ",
	" DRIVE ", " DR ",
	" LANE ", " LN ",
	" COURT ", " CT ",
	" CIRCLE ", " CIR ",
	" TERRACE ", " TER ",
	" PLACE ", " PL ",
	" PARKWAY ", " PKWY ",
	" HIGHWAY ", " HWY ",
)

func abbreviateSuffix(s string) string { return suffixes.Replace(s) }

var stateAbbrev = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA",
	"COLORADO": "CO", "CONNECTICUT": "CT", "DELAWARE": "DE", "DISTRICT OF COLUMBIA": "DC",
	"FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID", "ILLINOIS": "IL",
	"INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA",
	"MAINE": "ME", "MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY",
	"NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR",
	"PENNSYLVANIA": "PA", "RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD",
	"TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA",
	"WASHINGTON": "WA", "WEST VIRGINIA": "WV", "WISCONSIN": "WI", "WYOMING": "WY",
}
