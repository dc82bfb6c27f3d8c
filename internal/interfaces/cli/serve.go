package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/marketgap-io/marketgap/internal/application/analysis"
	"github.com/marketgap-io/marketgap/internal/application/opportunity"
	"github.com/marketgap-io/marketgap/internal/application/recommendation"
	"github.com/marketgap-io/marketgap/internal/application/survival"
	"github.com/marketgap-io/marketgap/internal/config"
	"github.com/marketgap-io/marketgap/internal/infrastructure/cache"
	"github.com/marketgap-io/marketgap/internal/infrastructure/messaging"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/prometheus"
	"github.com/marketgap-io/marketgap/internal/infrastructure/snapshot"
	"github.com/marketgap-io/marketgap/internal/infrastructure/storage/postgres"
	"github.com/marketgap-io/marketgap/internal/intelligence/survivalnet"
	httpapi "github.com/marketgap-io/marketgap/internal/interfaces/http"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.NewLogger(logging.Config{
				Level:       cfg.Log.Level,
				Format:      cfg.Log.Format,
				OutputPaths: cfg.Log.OutputPaths,
			})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunServer(ctx, cfg, log)
		},
	}
}

// RunServer wires the full engine and serves until ctx is done.
func RunServer(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	store, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := store.Rebuild(ctx); err != nil {
		return err
	}
	if cfg.Snapshot.Watch && cfg.Snapshot.Source == "file" {
		if err := store.Watch(ctx, cfg.Snapshot.Path); err != nil {
			return err
		}
	}

	scorer := store.Builder().Scorer()
	oppSvc := opportunity.NewService(store, scorer, log)
	matcher := recommendation.NewMatcher(store, scorer, log)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}
	predCache, err := cache.New(cfg.Survival.CacheSize, rdb, cfg.Survival.CacheTTL, log)
	if err != nil {
		return err
	}

	estimator := survivalnet.NewClient(survivalnet.Config{
		BaseURL: cfg.Survival.BaseURL,
		Timeout: cfg.Survival.Timeout,
	}, log)
	survSvc := survival.NewService(store, estimator, predCache,
		survival.Config{Threshold: cfg.Survival.Threshold}, log)

	collector := store.Collector()
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Snapshots:      store,
		Opportunities:  oppSvc,
		Matcher:        matcher,
		Survival:       survSvc,
		Rebuilder:      store,
		MetricsHandler: collector.Handler(),
		Observer:       collector,
		Predictions:    collector,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})
	server := httpapi.NewServer(httpapi.ServerConfig{
		Addr:            cfg.Server.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)
	return server.Start(ctx)
}

// buildStore assembles the snapshot store with its source, metrics, and
// optional event publisher.  cleanup releases whatever the source holds.
func buildStore(ctx context.Context, cfg *config.Config, log logging.Logger) (*serveStore, func(), error) {
	var (
		source  snapshot.Source
		cleanup = func() {}
	)
	switch cfg.Snapshot.Source {
	case "postgres":
		pg, err := postgres.NewSource(ctx, postgres.Config{DSN: cfg.Postgres.DSN}, log)
		if err != nil {
			return nil, nil, err
		}
		source = pg
		cleanup = pg.Close
	default:
		source = snapshot.FileSource{Path: cfg.Snapshot.Path, State: cfg.Snapshot.State}
	}

	var publisher snapshot.Publisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp := messaging.NewKafkaPublisher(messaging.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log)
		publisher = kp
		prev := cleanup
		cleanup = func() {
			_ = kp.Close()
			prev()
		}
	}

	collector := prometheus.NewCollector()
	builder := analysis.NewBuilder(cfg.BuildConfig(), log)
	store := snapshot.NewStore(source, builder, publisher, collector, log)
	return &serveStore{Store: store, builder: builder, collector: collector}, cleanup, nil
}

// serveStore bundles the store with the builder and collector it was wired
// with, so serving code can reach the shared scorer and metrics.
type serveStore struct {
	*snapshot.Store
	builder   *analysis.Builder
	collector *prometheus.Collector
}

func (s *serveStore) Builder() *analysis.Builder       { return s.builder }
func (s *serveStore) Collector() *prometheus.Collector { return s.collector }
