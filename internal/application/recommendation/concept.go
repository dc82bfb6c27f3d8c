// Package recommendation matches a user's restaurant concept against the
// analyzed zip markets.  Matching is a constraint search with progressive
// relaxation: when no zip satisfies every constraint, the matcher loosens
// them in a fixed priority order until something matches, and labels each
// result with exactly which relaxations it needed.
package recommendation

import (
	"fmt"

	"github.com/marketgap-io/marketgap/internal/domain/gap"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Concept is the user's restaurant idea plus their hard constraints.
type Concept struct {
	Cuisine market.Cuisine

	// RequiredAttributes must each show an actionable gap in a matching zip:
	// the concept differentiates on them, so the market must be underserved
	// on them.
	RequiredAttributes []market.Attribute

	// MaxPriceTier caps the zip's average price tier; 0 means no ceiling.
	MaxPriceTier int

	// RiskTolerance is the set of acceptable risk tiers; empty means any.
	RiskTolerance []gap.RiskTier

	// MinMarketSize is the minimum total review volume; 0 means no floor.
	MinMarketSize int
}

// Validate rejects a malformed concept before any matching runs.
func (c Concept) Validate() error {
	if c.Cuisine == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConcept, "concept cuisine is required")
	}
	known := false
	for _, k := range market.AllCuisines {
		if k == c.Cuisine {
			known = true
			break
		}
	}
	if !known {
		return apperrors.New(apperrors.ErrCodeUnknownCuisine,
			fmt.Sprintf("unknown cuisine %q", string(c.Cuisine)))
	}
	if c.MaxPriceTier < 0 || c.MaxPriceTier > 4 {
		return apperrors.New(apperrors.ErrCodeInvalidConcept,
			fmt.Sprintf("max price tier %d out of range 1-4", c.MaxPriceTier))
	}
	if c.MinMarketSize < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConcept, "min market size cannot be negative")
	}
	return nil
}

// constraints is the mutable form of the concept's filters that relaxation
// steps transform.  The cuisine itself is never relaxed.
type constraints struct {
	required  []market.Attribute
	maxPrice  int // 0 = no ceiling
	risk      map[gap.RiskTier]bool
	minMarket int
}

func (c Concept) constraints() constraints {
	cs := constraints{
		required:  append([]market.Attribute{}, c.RequiredAttributes...),
		maxPrice:  c.MaxPriceTier,
		minMarket: c.MinMarketSize,
	}
	if len(c.RiskTolerance) > 0 {
		cs.risk = make(map[gap.RiskTier]bool, len(c.RiskTolerance))
		for _, r := range c.RiskTolerance {
			cs.risk[r] = true
		}
	}
	return cs
}

func (cs constraints) allowsRisk(r gap.RiskTier) bool {
	return cs.risk == nil || cs.risk[r]
}

// clone deep-copies the constraints so relaxation steps stay pure.
func (cs constraints) clone() constraints {
	out := constraints{
		required:  append([]market.Attribute{}, cs.required...),
		maxPrice:  cs.maxPrice,
		minMarket: cs.minMarket,
	}
	if cs.risk != nil {
		out.risk = make(map[gap.RiskTier]bool, len(cs.risk))
		for r := range cs.risk {
			out.risk[r] = true
		}
	}
	return out
}
