package geo

import "sort"

// NeighborIndex precomputes, for every zip code with a known centroid, the
// set of other zips within a fixed radius.  Distances are computed once per
// unordered pair at build time (the dataset is ~100 zips, so the O(Z²) build
// is negligible); lookups afterwards are O(1).
//
// Zips absent from the coordinate table are not in the index at all:
// Neighbors reports ok=false for them so callers can distinguish "no geo
// data" from "no neighbors within the radius".
type NeighborIndex struct {
	radiusKM  float64
	coords    map[string]Point
	neighbors map[string][]string
}

// BuildNeighborIndex computes the adjacency map for the given zip centroids.
// Neighbor lists are sorted ascending so iteration order is deterministic.
func BuildNeighborIndex(coords map[string]Point, radiusKM float64) *NeighborIndex {
	ix := &NeighborIndex{
		radiusKM:  radiusKM,
		coords:    make(map[string]Point, len(coords)),
		neighbors: make(map[string][]string, len(coords)),
	}

	zips := make([]string, 0, len(coords))
	for z, p := range coords {
		ix.coords[z] = p
		ix.neighbors[z] = nil
		zips = append(zips, z)
	}
	sort.Strings(zips)

	for i, z1 := range zips {
		for _, z2 := range zips[i+1:] {
			if HaversineKM(coords[z1], coords[z2]) <= radiusKM {
				ix.neighbors[z1] = append(ix.neighbors[z1], z2)
				ix.neighbors[z2] = append(ix.neighbors[z2], z1)
			}
		}
	}
	for _, ns := range ix.neighbors {
		sort.Strings(ns)
	}
	return ix
}

// RadiusKM returns the radius the index was built with.
func (ix *NeighborIndex) RadiusKM() float64 {
	return ix.radiusKM
}

// Neighbors returns the zips within the radius of zip, excluding zip itself.
// ok is false when zip has no geo data; an empty slice with ok=true means the
// zip is genuinely isolated.
func (ix *NeighborIndex) Neighbors(zip string) (neighbors []string, ok bool) {
	ns, ok := ix.neighbors[zip]
	return ns, ok
}

// HasGeo reports whether zip has a known centroid.
func (ix *NeighborIndex) HasGeo(zip string) bool {
	_, ok := ix.coords[zip]
	return ok
}

// Centroid returns the stored centroid for zip.
func (ix *NeighborIndex) Centroid(zip string) (Point, bool) {
	p, ok := ix.coords[zip]
	return p, ok
}

// DistanceKM returns the great-circle distance between two indexed zips.
// ok is false when either zip lacks geo data.
func (ix *NeighborIndex) DistanceKM(a, b string) (float64, bool) {
	pa, okA := ix.coords[a]
	pb, okB := ix.coords[b]
	if !okA || !okB {
		return 0, false
	}
	return HaversineKM(pa, pb), true
}

// Size returns the number of zips in the index.
func (ix *NeighborIndex) Size() int {
	return len(ix.coords)
}
