// Package config defines the engine's configuration: structs, defaults,
// validation, and the viper-backed loader.  Every scoring constant is a
// named field here so the reference policy is overridable without a rebuild.
package config

import (
	"fmt"
	"time"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/domain/gap"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Survival SurvivalConfig `mapstructure:"survival"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// ServerConfig shapes the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig shapes the zap logger.
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// SnapshotConfig selects and tunes the dataset source.
type SnapshotConfig struct {
	// Source is "file" or "postgres".
	Source string `mapstructure:"source"`

	// Path is the dataset file for the file source.
	Path string `mapstructure:"path"`

	// State filters records to one US state; empty disables the filter.
	State string `mapstructure:"state"`

	// Watch enables hot-reload when the dataset file changes.
	Watch bool `mapstructure:"watch"`

	MinZipRestaurants int `mapstructure:"min_zip_restaurants"`
}

// GeoConfig tunes the neighbor index.
type GeoConfig struct {
	NeighborRadiusKM float64 `mapstructure:"neighbor_radius_km"`
}

// ScoringConfig carries the gap policy constants.
type ScoringConfig struct {
	RiskLowMax            float64 `mapstructure:"risk_low_max"`
	RiskMediumMax         float64 `mapstructure:"risk_medium_max"`
	AttributeGapThreshold float64 `mapstructure:"attribute_gap_threshold"`
	MinNeighborDemand     int     `mapstructure:"min_neighbor_demand"`
	MinGapScore           float64 `mapstructure:"min_gap_score"`
	TopCuisineGaps        int     `mapstructure:"top_cuisine_gaps"`
	WeakCompetitorMinGap  float64 `mapstructure:"weak_competitor_min_gap"`
}

// Policy converts the config fields into the domain policy.
func (s ScoringConfig) Policy() gap.Policy {
	return gap.Policy{
		RiskLowMax:            s.RiskLowMax,
		RiskMediumMax:         s.RiskMediumMax,
		AttributeGapThreshold: s.AttributeGapThreshold,
		MinNeighborDemand:     s.MinNeighborDemand,
		MinGapScore:           s.MinGapScore,
		TopCuisineGaps:        s.TopCuisineGaps,
		WeakCompetitorMinGap:  s.WeakCompetitorMinGap,
	}
}

// SurvivalConfig locates the model server and tunes prediction caching.
type SurvivalConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Threshold float64       `mapstructure:"threshold"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig enables the shared prediction cache tier.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig locates the optional database source.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig enables the snapshot rebuild event stream.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// BuildConfig assembles the snapshot builder's configuration.
func (c *Config) BuildConfig() analysis.Config {
	return analysis.Config{
		NeighborRadiusKM:  c.Geo.NeighborRadiusKM,
		MinZipRestaurants: c.Snapshot.MinZipRestaurants,
		Policy:            c.Scoring.Policy(),
	}
}

// Validate rejects configurations the engine cannot run under.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewValidation(fmt.Sprintf("server port %d out of range", c.Server.Port))
	}
	switch c.Snapshot.Source {
	case "file":
		if c.Snapshot.Path == "" {
			return apperrors.NewValidation("snapshot.path is required for the file source")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return apperrors.NewValidation("postgres.dsn is required for the postgres source")
		}
	default:
		return apperrors.NewValidation(fmt.Sprintf("unknown snapshot source %q", c.Snapshot.Source))
	}
	if c.Geo.NeighborRadiusKM <= 0 {
		return apperrors.NewValidation("geo.neighbor_radius_km must be positive")
	}
	if c.Scoring.RiskLowMax <= 0 || c.Scoring.RiskMediumMax < c.Scoring.RiskLowMax {
		return apperrors.NewValidation("risk tier thresholds must satisfy 0 < risk_low_max <= risk_medium_max")
	}
	if c.Scoring.AttributeGapThreshold < 0 || c.Scoring.AttributeGapThreshold >= 1 {
		return apperrors.NewValidation("scoring.attribute_gap_threshold must be within [0,1)")
	}
	if c.Scoring.TopCuisineGaps <= 0 {
		return apperrors.NewValidation("scoring.top_cuisine_gaps must be positive")
	}
	if c.Survival.Threshold <= 0 || c.Survival.Threshold >= 1 {
		return apperrors.NewValidation("survival.threshold must be within (0,1)")
	}
	if c.Snapshot.MinZipRestaurants < 0 {
		return apperrors.NewValidation("snapshot.min_zip_restaurants cannot be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return apperrors.NewValidation("kafka.brokers is required when kafka is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return apperrors.NewValidation("redis.addr is required when redis is enabled")
	}
	return nil
}
