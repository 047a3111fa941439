package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	kgo "github.com/segmentio/kafka-go"
)

const (
	TypeSubmissionAccepted  = "submission.accepted"
	TypePayoutCreated       = "payout.created"
	TypePayoutStatusChanged = "payout.status_changed"
)

// Event is the envelope written to the events topic. Key is the user id so
// a user's events stay ordered within a partition.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// messageWriter is the part of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
	}
	return &KafkaPublisher{writer: w, timeout: 3 * time.Second}
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(cctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func encode(ev Event) (kgo.Message, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return kgo.Message{}, fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	return kgo.Message{
		Key:   []byte(ev.Key),
		Value: b,
		Time:  ev.OccurredAt,
	}, nil
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
