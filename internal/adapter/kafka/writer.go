// Package kafka publishes live-fetched fire incidents to the incident feed
// topic for downstream consumers (alerting, analytics). Publishing is
// best-effort fan-out; resolution responses never wait on it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/moorwatch/wildfire-data-service/internal/config"
	"github.com/moorwatch/wildfire-data-service/internal/domain"
)

// Writer produces incident messages to the feed topic.
// It implements domain.IncidentPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured incident topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaIncidentTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishIncidents serializes and publishes incidents in a single
// WriteMessages call, keyed by incident ID for log-compacted consumers.
func (w *Writer) PublishIncidents(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message.
func serializeToMessage(incident domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(incident)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(incident.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sensor", Value: []byte(incident.Sensor)},
			{Key: "published_at", Value: []byte(domain.Clock().Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
