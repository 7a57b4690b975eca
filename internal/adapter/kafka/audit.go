// Package kafka publishes lookup audit events. The publisher is feature
// flagged: when no brokers are configured the service runs without it.
// Publishing is best effort and never fails a lookup.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/eaglereach/civic-data-service/internal/config"
)

// LookupAudit is one completed lookup, published for offline analysis of
// traffic patterns and upstream health.
type LookupAudit struct {
	Input      string    `json:"input"`
	StateAbbr  string    `json:"state_abbr,omitempty"`
	District   *int      `json:"district,omitempty"`
	Officials  int       `json:"officials"`
	Outcome    string    `json:"outcome"` // "ok", "not_found", "invalid", "unavailable", "error"
	Cached     bool      `json:"cached"`
	DurationMS int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}

// AuditWriter produces audit events to a Kafka topic.
type AuditWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the configured audit topic.
func NewAuditWriter(cfg *config.Config, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &AuditWriter{writer: w, logger: logger}
}

// Publish serializes and writes one audit event. Failures are logged, not
// returned: the audit stream must never affect lookup availability.
func (w *AuditWriter) Publish(ctx context.Context, audit LookupAudit) {
	msg, err := serializeToMessage(audit)
	if err != nil {
		w.logger.Warn("serialize audit event failed", "error", err)
		return
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.logger.Warn("publish audit event failed", "error", err, "input", audit.Input)
	}
}

// serializeToMessage converts an audit event to a Kafka message keyed by
// the raw lookup input, so all lookups for one input land on one partition.
func serializeToMessage(audit LookupAudit) (kafkago.Message, error) {
	data, err := json.Marshal(audit)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(audit.Input),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(audit.Outcome)},
			{Key: "at", Value: []byte(audit.At.Format(time.RFC3339))},
		},
	}, nil
}

// Close flushes and closes the underlying producer.
func (w *AuditWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		return fmt.Errorf("close audit writer: %w", err)
	}
	return nil
}
