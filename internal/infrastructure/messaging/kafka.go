// Package messaging publishes snapshot lifecycle events for downstream
// consumers (dashboards, cache warmers).  Publishing is optional and
// best-effort: the engine never depends on the broker.
package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/marketgap-io/marketgap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/marketgap-io/marketgap/pkg/errors"
)

// Config locates the broker and topic.
type Config struct {
	Brokers []string
	Topic   string
}

// RebuildEvent is the payload published after a successful snapshot rebuild.
type RebuildEvent struct {
	BuildID      string    `json:"build_id"`
	BuiltAt      time.Time `json:"built_at"`
	ZipsAnalyzed int       `json:"zips_analyzed"`
	Records      int       `json:"records"`
}

// KafkaPublisher writes rebuild events to a kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    logging.Logger
}

// NewKafkaPublisher builds a publisher for cfg.
func NewKafkaPublisher(cfg Config, log logging.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log.Named("messaging"),
	}
}

// SnapshotRebuilt publishes one rebuild event keyed by build ID.
func (p *KafkaPublisher) SnapshotRebuilt(ctx context.Context, buildID string, builtAt time.Time, zipsAnalyzed, records int) error {
	payload, err := json.Marshal(RebuildEvent{
		BuildID:      buildID,
		BuiltAt:      builtAt,
		ZipsAnalyzed: zipsAnalyzed,
		Records:      records,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encode rebuild event")
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(buildID),
		Value: payload,
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "publish rebuild event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event; used when messaging is disabled.
type NopPublisher struct{}

// SnapshotRebuilt discards the event.
func (NopPublisher) SnapshotRebuilt(context.Context, string, time.Time, int, int) error {
	return nil
}
