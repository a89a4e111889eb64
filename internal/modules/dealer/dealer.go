package dealer

import "time"

// Regions served by MarketCheck.
const (
	RegionUSA = "usa"
	RegionUK  = "uk"
)

// Dealer is a dealership snapshot pulled from MarketCheck and kept in the
// dealers collection. DealerID is unique.
type Dealer struct {
	DealerID     string `bson:"dealerId" json:"dealerId"`
	Region       string `bson:"region" json:"region"`
	Name         string `bson:"name" json:"name"`
	InventoryURL string `bson:"inventoryUrl,omitempty" json:"inventoryUrl,omitempty"`
	DataSource   string `bson:"dataSource,omitempty" json:"dataSource,omitempty"`
	Status       string `bson:"status,omitempty" json:"status,omitempty"`
	ListingCount *int   `bson:"listingCount,omitempty" json:"listingCount,omitempty"`
	DealerType   string `bson:"dealerType,omitempty" json:"dealerType,omitempty"`
	Street       string `bson:"street,omitempty" json:"street,omitempty"`
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	State        string `bson:"state,omitempty" json:"state,omitempty"`
	Country      string `bson:"country,omitempty" json:"country,omitempty"`
	Zip          string `bson:"zip,omitempty" json:"zip,omitempty"`
	Latitude     string `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    string `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`

	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	MarketCheckCreatedAt *time.Time `bson:"marketCheckCreatedAt,omitempty" json:"marketCheckCreatedAt,omitempty"`
}

func validRegion(region string) bool {
	return region == RegionUSA || region == RegionUK
}
