package dialog

import "github.com/flatvoice/go-flatvoice/pkg/catalog"

// Params is the sparse search-parameter record of a dialogue. Each field is
// independently optional. Fields are only ever overwritten by explicit new
// values; nothing is cleared implicitly.
type Params struct {
	District string `json:"district,omitempty"`
	PriceMin *int   `json:"price_min,omitempty"`
	PriceMax *int   `json:"price_max,omitempty"`
	AreaMin  *int   `json:"area_min,omitempty"`
	AreaMax  *int   `json:"area_max,omitempty"`
	FloorMin *int   `json:"floor_min,omitempty"`
	FloorMax *int   `json:"floor_max,omitempty"`
}

// Apply merges patch into p. Only fields that carry a value in the patch
// overwrite; absent fields never clear existing bounds.
func (p *Params) Apply(patch Params) {
	if patch.District != "" {
		p.District = patch.District
	}
	if patch.PriceMin != nil {
		p.PriceMin = patch.PriceMin
	}
	if patch.PriceMax != nil {
		p.PriceMax = patch.PriceMax
	}
	if patch.AreaMin != nil {
		p.AreaMin = patch.AreaMin
	}
	if patch.AreaMax != nil {
		p.AreaMax = patch.AreaMax
	}
	if patch.FloorMin != nil {
		p.FloorMin = patch.FloorMin
	}
	if patch.FloorMax != nil {
		p.FloorMax = patch.FloorMax
	}
}

// Empty reports whether no parameter has been set yet.
func (p Params) Empty() bool {
	return p.District == "" &&
		p.PriceMin == nil && p.PriceMax == nil &&
		p.AreaMin == nil && p.AreaMax == nil &&
		p.FloorMin == nil && p.FloorMax == nil
}

// Query converts the parameters into a catalog query excluding the given
// listing IDs.
func (p Params) Query(exclude []string) catalog.Query {
	return catalog.Query{
		District: p.District,
		PriceMin: p.PriceMin,
		PriceMax: p.PriceMax,
		AreaMin:  p.AreaMin,
		AreaMax:  p.AreaMax,
		FloorMin: p.FloorMin,
		FloorMax: p.FloorMax,
		Exclude:  exclude,
	}
}

// Int is a convenience for building pointer bounds.
func Int(v int) *int { return &v }
