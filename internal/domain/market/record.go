package market

import "github.com/marketgap-io/marketgap/internal/domain/geo"

// BusinessRecord is one restaurant fact from the snapshot dataset.  Records
// are created once at snapshot load and never mutated afterwards.
type BusinessRecord struct {
	ID   string
	Name string
	Zip  string
	City string

	// Location is nil when the dataset carries no usable coordinates for the
	// record.  "Unknown" and "0,0" are deliberately distinct states.
	Location *geo.Point

	Cuisines []Cuisine

	// PriceTier is 1 (budget) through 4 (upscale); 0 means unknown.
	PriceTier int

	// Stars is the average rating; 0 means unrated.
	Stars float64

	ReviewCount int
	Open        bool

	Attributes map[Attribute]bool
	Noise      NoiseLevel
}

// HasAttribute reports whether the record offers the given service attribute.
func (r *BusinessRecord) HasAttribute(a Attribute) bool {
	return r.Attributes[a]
}

// HasCuisine reports whether the record is tagged with the given cuisine.
func (r *BusinessRecord) HasCuisine(c Cuisine) bool {
	for _, rc := range r.Cuisines {
		if rc == c {
			return true
		}
	}
	return false
}
