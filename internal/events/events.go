package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TypeSaleCompleted         = "sale.completed"
	TypeSaleCancelled         = "sale.cancelled"
	TypeStockUpdateFailed     = "sale.stock_update_failed"
	TypeCompensationFailed    = "sale.compensation_failed"
	TypePendingReconciliation = "sale.pending_reconciliation"
	TypeCompletionFailed      = "sale.completion_failed"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	SaleID    int64          `json:"sale_id"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, saleID int64, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		SaleID:    saleID,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

// Publisher delivers sale events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON keyed by sale id, so that all events
// of one sale land on the same partition.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.SaleID, 10)),
		Value: data,
		Time:  evt.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher returns a Kafka publisher, or a NopPublisher when brokers is
// empty.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		log.Printf("KAFKA_BROKERS not set, sale events are disabled")
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
