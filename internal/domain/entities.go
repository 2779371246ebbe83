package domain

// PropertyType is the closed set of property categories a listing can carry
type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeCondo     PropertyType = "condo"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeApartment PropertyType = "apartment"
)

// Valid reports whether t is one of the known property types
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHouse, PropertyTypeCondo, PropertyTypeTownhouse, PropertyTypeApartment:
		return true
	}
	return false
}

// ListingStatus is the sale state of a listing
type ListingStatus string

const (
	StatusForSale ListingStatus = "for-sale"
	StatusPending ListingStatus = "pending"
	StatusSold    ListingStatus = "sold"
)

// Valid reports whether s is one of the known listing statuses
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusForSale, StatusPending, StatusSold:
		return true
	}
	return false
}

// ViewMode selects how the result set is presented
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// Valid reports whether m is one of the known view modes
func (m ViewMode) Valid() bool {
	return m == ViewModeGrid || m == ViewModeList
}

// Agent is the listing agent contact block
type Agent struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// Coordinates holds the listing's geographic position.
// Carried for the detail view; filtering never consults it.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing represents a single property record. Every field is write-once
// at creation except IsFavorite, which is the only mutable flag.
type Listing struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Address      string        `json:"address"`
	City         string        `json:"city"`
	State        string        `json:"state"`
	ZipCode      string        `json:"zip_code"`
	Price        int           `json:"price"`
	Bedrooms     int           `json:"bedrooms"`
	Bathrooms    int           `json:"bathrooms"`
	Sqft         int           `json:"sqft"`
	PropertyType PropertyType  `json:"property_type"`
	Status       ListingStatus `json:"status"`
	YearBuilt    int           `json:"year_built"`
	Images       []string      `json:"images,omitempty"`
	Features     []string      `json:"features,omitempty"`
	Agent        Agent         `json:"agent"`
	Coordinates  Coordinates   `json:"coordinates"`
	ListedDate   string        `json:"listed_date,omitempty"`
	IsFavorite   bool          `json:"is_favorite"`
}
