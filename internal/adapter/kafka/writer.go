// Package kafka publishes assembled records to a sink topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/config"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

// Writer produces dataset records to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(settings *config.Settings, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(settings.KafkaBrokers...),
		Topic:        settings.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishDataset serializes every record of the dataset and publishes the
// batch in a single WriteMessages call.
func (w *Writer) PublishDataset(ctx context.Context, ds *domain.Dataset) error {
	if len(ds.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Records))
	for i, rec := range ds.Records {
		msg, err := serializeToMessage(ds, rec)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Info("dataset published", "topic", w.writer.Topic, "records", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one record as its column-keyed row. The key is
// state plus per-state id, which also fixes the partition per test series.
func serializeToMessage(ds *domain.Dataset, rec *domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(ds.RowMap(rec))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s-%d: %w", rec.State, rec.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%s-%d", rec.State, rec.ID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "state", Value: []byte(rec.State)},
			{Key: "extracted_at", Value: []byte(rec.ExtractedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
