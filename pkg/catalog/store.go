package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Store is a read-only catalog of listings. It is safe for concurrent use:
// the listing slice is never modified after construction.
type Store struct {
	listings []Listing
	byID     map[string]Listing
}

// NewStore builds a store from the given listings. Catalog order is the
// order of the slice and is preserved by unranked searches.
func NewStore(listings []Listing) *Store {
	byID := make(map[string]Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}
	return &Store{listings: listings, byID: byID}
}

// LoadFile reads a JSON array of listings from path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var listings []Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewStore(listings), nil
}

// Get returns the listing with the given id.
func (s *Store) Get(id string) (Listing, bool) {
	l, ok := s.byID[id]
	return l, ok
}

// All returns every listing in catalog order.
func (s *Store) All() []Listing {
	out := make([]Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Len returns the number of listings in the catalog.
func (s *Store) Len() int {
	return len(s.listings)
}

// Search filters the catalog by all set bounds of q (inclusive), skipping
// excluded IDs. District matching is a case-insensitive bidirectional
// substring: the catalog value may contain the query or the query may
// contain the catalog value.
//
// When both price bounds are set, results are sorted ascending by absolute
// distance from the midpoint of the price range; the sort is stable, so ties
// keep catalog order. Otherwise catalog order is preserved.
func (s *Store) Search(q Query) []Listing {
	excluded := make(map[string]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = true
	}

	var out []Listing
	for _, l := range s.listings {
		if excluded[l.ID] {
			continue
		}
		if !matches(l, q) {
			continue
		}
		out = append(out, l)
	}

	if q.PriceMin != nil && q.PriceMax != nil {
		mid := float64(*q.PriceMin+*q.PriceMax) / 2
		sort.SliceStable(out, func(i, j int) bool {
			di := abs(float64(out[i].Price) - mid)
			dj := abs(float64(out[j].Price) - mid)
			return di < dj
		})
	}
	return out
}

func matches(l Listing, q Query) bool {
	if q.District != "" && !DistrictMatch(l.District, q.District) {
		return false
	}
	if q.PriceMin != nil && l.Price < *q.PriceMin {
		return false
	}
	if q.PriceMax != nil && l.Price > *q.PriceMax {
		return false
	}
	if q.AreaMin != nil && l.Area < *q.AreaMin {
		return false
	}
	if q.AreaMax != nil && l.Area > *q.AreaMax {
		return false
	}
	if q.FloorMin != nil && l.Floor < *q.FloorMin {
		return false
	}
	if q.FloorMax != nil && l.Floor > *q.FloorMax {
		return false
	}
	return true
}

// DistrictMatch reports whether a catalog district and a spoken district
// token refer to the same place. Callers transcribe district names from
// speech, so the comparison is deliberately loose: case-insensitive and
// substring in either direction.
func DistrictMatch(catalogValue, query string) bool {
	a := strings.ToLower(strings.TrimSpace(catalogValue))
	b := strings.ToLower(strings.TrimSpace(query))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
