// Package postgres provides an alternative snapshot source backed by a
// Postgres businesses table, for deployments that keep the curated dataset
// in a database instead of a flat file.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketgap-io/marketgap/internal/domain/geo"
	"github.com/marketgap-io/marketgap/internal/domain/market"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Config locates the businesses table.
type Config struct {
	DSN string
}

// Source loads business records from Postgres.
type Source struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewSource connects a pgx pool to cfg.DSN.
func NewSource(ctx context.Context, cfg Config, log logging.Logger) (*Source, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "ping postgres")
	}
	return &Source{pool: pool, log: log.Named("postgres")}, nil
}

// Close releases the pool.
func (s *Source) Close() {
	s.pool.Close()
}

const loadQuery = `
SELECT business_id, name, city, postal_code,
       latitude, longitude,
       stars, review_count, is_open,
       categories, price_tier, attributes, noise_level
FROM businesses`

// Load reads every business row into records.  Attribute names in the
// attributes array use the engine's snake_case identifiers.
func (s *Source) Load(ctx context.Context) ([]market.BusinessRecord, error) {
	rows, err := s.pool.Query(ctx, loadQuery)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "query businesses")
	}
	defer rows.Close()

	var out []market.BusinessRecord
	for rows.Next() {
		var (
			r          market.BusinessRecord
			lat, lon   *float64
			categories string
			priceTier  *int
			attrs      []string
			noise      *string
			isOpen     bool
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.City, &r.Zip,
			&lat, &lon,
			&r.Stars, &r.ReviewCount, &isOpen,
			&categories, &priceTier, &attrs, &noise); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "scan business row")
		}
		r.Open = isOpen
		r.Cuisines = market.CuisinesFromCategories(categories)
		if lat != nil && lon != nil {
			r.Location = &geo.Point{Lat: *lat, Lon: *lon}
		}
		if priceTier != nil {
			r.PriceTier = *priceTier
		}
		r.Attributes = make(map[market.Attribute]bool, len(attrs))
		for _, name := range attrs {
			if a, err := market.ParseAttribute(name); err == nil {
				r.Attributes[a] = true
			}
		}
		if noise != nil {
			r.Noise = market.ParseNoiseLevel(*noise)
		} else {
			r.Noise = market.NoiseAverage
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoad, "iterate business rows")
	}
	return out, nil
}
