// Package catalog provides the read-only apartment listing store and the
// search procedure used by the dialogue pipeline. Listings are static data:
// the pipeline never mutates them.
package catalog

// Listing is an immutable catalog record for one apartment.
type Listing struct {
	ID          string   `json:"id"`
	District    string   `json:"district"`
	Area        int      `json:"area"`
	Floor       int      `json:"floor"`
	Price       int      `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
	Bedrooms    int      `json:"bedrooms,omitempty"`
	Bathrooms   int      `json:"bathrooms,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// Query is a sparse filter over the catalog. Unset bounds (nil pointers,
// empty district) match everything. Bounds are inclusive.
type Query struct {
	District string

	PriceMin *int
	PriceMax *int
	AreaMin  *int
	AreaMax  *int
	FloorMin *int
	FloorMax *int

	// Exclude lists listing IDs that must never appear in results,
	// regardless of how well they match.
	Exclude []string
}
