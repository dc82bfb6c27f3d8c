// Package geo provides great-circle distance math and the precomputed
// zip-code neighbor index.
package geo

import "math"

// earthRadiusKM is the mean earth radius used for haversine distances.
const earthRadiusKM = 6371.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HaversineKM returns the great-circle distance between two points in
// kilometres.
func HaversineKM(a, b Point) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLam := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLam/2)*math.Sin(dLam/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Median returns the median of vs.  Matches the dataset pipeline's centroid
// convention: the lower-middle element, not the mean of the middle pair.
func Median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64{}, vs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted[(len(sorted)-1)/2]
}
