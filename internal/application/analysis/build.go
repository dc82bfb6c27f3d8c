package analysis

import (
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/marketgap-io/marketgap/pkg/errors"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
)

// Config controls snapshot construction.
type Config struct {
	// NeighborRadiusKM is the centroid distance within which two zips are
	// considered neighbors.
	NeighborRadiusKM float64

	// MinZipRestaurants is the minimum record count for a zip to be analyzed.
	// Zips below it still appear in Markets but get no gap analysis.
	MinZipRestaurants int

	Policy gap.Policy
}

// DefaultConfig returns the reference build configuration.
func DefaultConfig() Config {
	return Config{
		NeighborRadiusKM:  20.0,
		MinZipRestaurants: 3,
		Policy:            gap.Default(),
	}
}

// Builder turns a flat record set into a Snapshot.
type Builder struct {
	cfg    Config
	scorer *gap.Scorer
	log    logging.Logger
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config, log logging.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		scorer: gap.NewScorer(cfg.Policy),
		log:    log.Named("analysis"),
	}
}

// Scorer exposes the builder's scorer so request-time paths (recommendation,
// cuisine-filtered listings) score with the exact same policy the snapshot
// was built under.
func (b *Builder) Scorer() *gap.Scorer {
	return b.scorer
}

// Build aggregates records into zip markets, indexes neighbors, and
// precomputes every zip's gap analysis.  The whole pipeline is deterministic
// for a given record set; only BuildID and BuiltAt differ between runs.
func (b *Builder) Build(records []market.BusinessRecord) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSnapshotEmpty, "dataset contains no usable records")
	}

	byZip := make(map[string][]market.BusinessRecord)
	skipped := 0
	for _, r := range records {
		if !market.IsValidZip(r.Zip) {
			skipped++
			continue
		}
		byZip[r.Zip] = append(byZip[r.Zip], r)
	}
	if len(byZip) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeSnapshotEmpty, "no records carry a valid zip code")
	}
	if skipped > 0 {
		b.log.Warn("records without a valid zip skipped", logging.Int("skipped", skipped))
	}

	s := &Snapshot{
		BuildID:      uuid.New(),
		BuiltAt:      time.Now().UTC(),
		RecordCount:  len(records) - skipped,
		Markets:      make(map[string]*market.ZipMarket, len(byZip)),
		Analyses:     make(map[string]*ZipAnalysis),
		recordsByZip: byZip,
		attrGapFreq:  make(map[market.Attribute]int),
	}

	centroids := make(map[string]geo.Point)
	for zip, rs := range byZip {
		m := market.Aggregate(zip, rs)
		s.Markets[zip] = m
		if m.TotalRestaurants < b.cfg.MinZipRestaurants || m.Centroid == nil {
			continue
		}
		centroids[zip] = *m.Centroid
		s.zips = append(s.zips, zip)
	}
	sort.Strings(s.zips)

	s.Index = geo.BuildNeighborIndex(centroids, b.cfg.NeighborRadiusKM)

	for _, zip := range s.zips {
		m := s.Markets[zip]
		ns, _ := s.Index.Neighbors(zip)
		neighbors := make([]*market.ZipMarket, 0, len(ns))
		for _, nz := range ns {
			neighbors = append(neighbors, s.Markets[nz])
		}

		cg := b.scorer.CuisineGaps(m, neighbors)
		ag := b.scorer.AttributeGaps(m, neighbors)
		s.Analyses[zip] = &ZipAnalysis{
			Market:        m,
			NeighborCount: len(neighbors),
			CuisineGaps:   cg,
			AttributeGaps: ag,
			Opportunity:   b.scorer.Score(m, cg, ag),
		}
		for _, g := range ag {
			s.attrGapFreq[g.Attribute]++
		}
	}

	b.log.Info("snapshot built",
		logging.String("build_id", s.BuildID.String()),
		logging.Int("records", s.RecordCount),
		logging.Int("zips", len(s.Markets)),
		logging.Int("analyzed", len(s.zips)),
	)
	return s, nil
}
