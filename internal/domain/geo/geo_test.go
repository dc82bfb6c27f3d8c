package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM(t *testing.T) {
	newark := Point{Lat: 40.7357, Lon: -74.1724}
	jerseyCity := Point{Lat: 40.7178, Lon: -74.0431}

	d := HaversineKM(newark, jerseyCity)
	// Roughly 11 km apart.
	assert.InDelta(t, 11.0, d, 1.0)

	assert.Zero(t, HaversineKM(newark, newark))
	assert.InDelta(t, HaversineKM(jerseyCity, newark), d, 1e-9, "distance is symmetric")
}

func TestHaversineKMQuarterCircle(t *testing.T) {
	// Equator to pole is a quarter of the earth's circumference.
	d := HaversineKM(Point{Lat: 0, Lon: 0}, Point{Lat: 90, Lon: 0})
	assert.InDelta(t, 6371.0*3.14159265/2, d, 0.01)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4.2}, 4.2},
		{"odd", []float64{3, 1, 2}, 2},
		{"even takes lower middle", []float64{4, 1, 3, 2}, 2},
		{"unsorted input", []float64{9, -1, 5, 5, 0}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}
