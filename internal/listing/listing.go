package listing

// Listing is one for-sale home as reported by a listing provider.
// Field order is the column order of the affordability table.
type Listing struct {
	Bathrooms        float64 `json:"bathrooms"`
	Bedrooms         float64 `json:"bedrooms"`
	City             string  `json:"city"`
	Country          string  `json:"country"`
	Currency         string  `json:"currency"`
	HomeStatus       string  `json:"homeStatus"`
	HomeType         string  `json:"homeType"`
	Latitude         float64 `json:"latitude"`
	LivingArea       float64 `json:"livingArea"`
	Longitude        float64 `json:"longitude"`
	LotAreaUnit      string  `json:"lotAreaUnit"`
	LotAreaValue     float64 `json:"lotAreaValue"`
	Price            float64 `json:"price"` // 0 when the provider gave none
	RentZestimate    float64 `json:"rentZestimate"`
	State            string  `json:"state"`
	StreetAddress    string  `json:"streetAddress"`
	TaxAssessedValue float64 `json:"taxAssessedValue"`
	Zestimate        float64 `json:"zestimate"`
	Zipcode          string  `json:"zipcode"`
}

// Columns lists the raw listing fields in table order.
var Columns = []string{
	"bathrooms", "bedrooms", "city", "country", "currency",
	"homeStatus", "homeType", "latitude", "livingArea", "longitude",
	"lotAreaUnit", "lotAreaValue", "price", "rentZestimate", "state",
	"streetAddress", "taxAssessedValue", "zestimate", "zipcode",
}

// Priced reports whether the listing carries a usable asking price.
func (l Listing) Priced() bool { return l.Price > 0 }
