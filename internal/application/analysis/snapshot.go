// Package analysis builds the immutable per-process snapshot: zip markets,
// the neighbor index, and the precomputed gap analyses every request path
// reads from.
package analysis

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
)

// ZipAnalysis is the precomputed gap analysis of one analyzable zip.
type ZipAnalysis struct {
	Market        *market.ZipMarket
	NeighborCount int
	CuisineGaps   []gap.CuisineGap
	AttributeGaps []gap.AttributeGap
	Opportunity   gap.OpportunityScore
}

// Snapshot is an immutable view over the whole dataset.  It is built once
// (and atomically swapped on rebuild); request handlers only ever read it, so
// no locking is needed.
type Snapshot struct {
	BuildID     uuid.UUID
	BuiltAt     time.Time
	RecordCount int

	// Markets holds every zip seen in the dataset, including sparse zips and
	// zips without geo data.
	Markets map[string]*market.ZipMarket

	// Analyses holds only analyzable zips: enough restaurants and a known
	// centroid.  A zip present in Markets but absent here was excluded, not
	// scored at zero.
	Analyses map[string]*ZipAnalysis

	// Index is the neighbor index over analyzable zips.
	Index *geo.NeighborIndex

	zips         []string // sorted analyzable zips
	recordsByZip map[string][]market.BusinessRecord
	attrGapFreq  map[market.Attribute]int
}

// Zips returns the analyzable zip codes in ascending order.
func (s *Snapshot) Zips() []string {
	return s.zips
}

// TotalAnalyzed returns the number of analyzable zips.
func (s *Snapshot) TotalAnalyzed() int {
	return len(s.zips)
}

// Analysis returns the precomputed analysis for zip; ok=false when the zip is
// not analyzable (absent, too sparse, or no geo data).
func (s *Snapshot) Analysis(zip string) (*ZipAnalysis, bool) {
	a, ok := s.Analyses[zip]
	return a, ok
}

// LocalRestaurants returns the zip's records sorted by review count
// descending (name ascending on ties).
func (s *Snapshot) LocalRestaurants(zip string) []market.BusinessRecord {
	rs := append([]market.BusinessRecord{}, s.recordsByZip[zip]...)
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].ReviewCount != rs[j].ReviewCount {
			return rs[i].ReviewCount > rs[j].ReviewCount
		}
		return rs[i].Name < rs[j].Name
	})
	return rs
}

// AttributeGapFrequency returns, per attribute, how many analyzable zips
// carry an actionable gap for it.  The recommendation matcher uses this as
// its distinctiveness signal when ordering attribute relaxations.
func (s *Snapshot) AttributeGapFrequency() map[market.Attribute]int {
	return s.attrGapFreq
}
