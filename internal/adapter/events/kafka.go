package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/storefront/internal/adapter/config"
	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const eventVersion = "1"

// KafkaPublisher produces order events keyed by order id, so every event
// of one order lands on the same partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

var _ port.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(conf *config.Kafka, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(conf.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if conf.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),
		kgo.DefaultProduceTopic(conf.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.WithLogger(&kgoLogger{logger: logger}),
	}

	if conf.Username != "" && conf.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: conf.Username,
			Pass: conf.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaPublisher{client: client, topic: conf.Topic, logger: logger}, nil
}

type eventMessage struct {
	Type          string      `json:"type"`
	OrderID       string      `json:"order_id"`
	CustomerID    string      `json:"customer_id,omitempty"`
	Status        string      `json:"status,omitempty"`
	RefundProcess string      `json:"refund_process,omitempty"`
	FinalPrice    string      `json:"final_price,omitempty"`
	Unrestored    []eventLine `json:"unrestored,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

type eventLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// NewRecord encodes the event and injects the current trace context into
// the record headers.
func NewRecord(ctx context.Context, topic string, event *domain.OrderEvent) (*kgo.Record, error) {
	msg := eventMessage{
		Type:          string(event.Type),
		OrderID:       event.OrderID,
		CustomerID:    event.CustomerID,
		Status:        string(event.Status),
		RefundProcess: string(event.RefundProcess),
		OccurredAt:    event.OccurredAt.UTC(),
	}
	if event.Type != domain.OrderEventDeleted {
		msg.FinalPrice = event.FinalPrice.String()
	}
	for _, l := range event.Unrestored {
		msg.Unrestored = append(msg.Unrestored, eventLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(event.OrderID),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "version", Value: []byte(eventVersion)},
		},
		Timestamp: event.OccurredAt,
	}
	otel.GetTextMapPropagator().Inject(ctx, &headerCarrier{record: record})

	return record, nil
}

// Publish hands the event to the producer and returns without waiting for
// the broker acknowledgement.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OrderEvent) error {
	record, err := NewRecord(ctx, p.topic, event)
	if err != nil {
		return err
	}

	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("Failed to produce order event",
				zap.String("order", event.OrderID),
				zap.String("event", string(event.Type)),
				zap.Error(err))
			return
		}
		p.logger.Debug("Order event produced",
			zap.String("order", event.OrderID),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset))
	})

	return nil
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// headerCarrier adapts record headers to the otel TextMapCarrier.
type headerCarrier struct {
	record *kgo.Record
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.record.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range c.record.Headers {
		if h.Key == key {
			c.record.Headers[i].Value = []byte(value)
			return
		}
	}
	c.record.Headers = append(c.record.Headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, len(c.record.Headers))
	for i, h := range c.record.Headers {
		keys[i] = h.Key
	}
	return keys
}

type kgoLogger struct {
	logger *zap.Logger
}

func (l *kgoLogger) Level() kgo.LogLevel {
	switch {
	case l.logger.Core().Enabled(zap.DebugLevel):
		return kgo.LogLevelDebug
	case l.logger.Core().Enabled(zap.InfoLevel):
		return kgo.LogLevelInfo
	case l.logger.Core().Enabled(zap.WarnLevel):
		return kgo.LogLevelWarn
	}
	return kgo.LogLevelError
}

func (l *kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keyvals[i]), keyvals[i+1]))
	}
	switch level {
	case kgo.LogLevelError:
		l.logger.Error(msg, fields...)
	case kgo.LogLevelWarn:
		l.logger.Warn(msg, fields...)
	case kgo.LogLevelInfo:
		l.logger.Info(msg, fields...)
	default:
		l.logger.Debug(msg, fields...)
	}
}
