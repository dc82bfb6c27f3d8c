package config

import "time"

// ApplyDefaults fills every unset field with the reference configuration.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stdout"}
	}

	if c.Snapshot.Source == "" {
		c.Snapshot.Source = "file"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "data/nj_businesses.json"
	}
	if c.Snapshot.State == "" {
		c.Snapshot.State = "NJ"
	}
	if c.Snapshot.MinZipRestaurants == 0 {
		c.Snapshot.MinZipRestaurants = 3
	}

	if c.Geo.NeighborRadiusKM == 0 {
		c.Geo.NeighborRadiusKM = 20.0
	}

	if c.Scoring.RiskLowMax == 0 {
		c.Scoring.RiskLowMax = 0.20
	}
	if c.Scoring.RiskMediumMax == 0 {
		c.Scoring.RiskMediumMax = 0.35
	}
	if c.Scoring.AttributeGapThreshold == 0 {
		c.Scoring.AttributeGapThreshold = 0.15
	}
	if c.Scoring.MinNeighborDemand == 0 {
		c.Scoring.MinNeighborDemand = 2
	}
	if c.Scoring.MinGapScore == 0 {
		c.Scoring.MinGapScore = 1.0
	}
	if c.Scoring.TopCuisineGaps == 0 {
		c.Scoring.TopCuisineGaps = 10
	}
	if c.Scoring.WeakCompetitorMinGap == 0 {
		c.Scoring.WeakCompetitorMinGap = 5.0
	}

	if c.Survival.BaseURL == "" {
		c.Survival.BaseURL = "http://localhost:9000"
	}
	if c.Survival.Timeout == 0 {
		c.Survival.Timeout = 5 * time.Second
	}
	if c.Survival.Threshold == 0 {
		c.Survival.Threshold = 0.5
	}
	if c.Survival.CacheSize == 0 {
		c.Survival.CacheSize = 1024
	}
	if c.Survival.CacheTTL == 0 {
		c.Survival.CacheTTL = 15 * time.Minute
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "marketgap.snapshot.rebuilt"
	}
}
