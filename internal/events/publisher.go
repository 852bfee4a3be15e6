package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emoji-backend/internal/models"
	kgo "github.com/segmentio/kafka-go"
)

const (
	EventCreated       = "emoji.created"
	EventOriginalSaved = "emoji.original_saved"
	EventCompleted     = "emoji.completed"
	EventFlagged       = "emoji.flagged"
)

// Event is published after a state change has been committed.
type Event struct {
	Type            string    `json:"type"`
	EmojiID         string    `json:"emoji_id"`
	State           string    `json:"state"`
	OriginalURL     string    `json:"original_url,omitempty"`
	NoBackgroundURL string    `json:"no_background_url,omitempty"`
	Error           string    `json:"error,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

func newEvent(eventType string, e *models.Emoji) Event {
	return Event{
		Type:            eventType,
		EmojiID:         e.ID.String(),
		State:           string(e.State),
		OriginalURL:     e.OriginalURL.String,
		NoBackgroundURL: e.NoBackgroundURL.String,
		Error:           e.Error.String,
		OccurredAt:      e.UpdatedAt,
	}
}

func CreatedEvent(e *models.Emoji) Event {
	if e.State == models.StateFlagged {
		return newEvent(EventFlagged, e)
	}
	return newEvent(EventCreated, e)
}

func OriginalSavedEvent(e *models.Emoji) Event { return newEvent(EventOriginalSaved, e) }

func CompletedEvent(e *models.Emoji) Event { return newEvent(EventCompleted, e) }

func FlaggedEvent(e *models.Emoji) Event { return newEvent(EventFlagged, e) }

// KafkaPublisher writes events keyed by emoji id so that all events of one
// record land on the same partition in order.
type KafkaPublisher struct {
	writer  *kgo.Writer
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
	}

	return &KafkaPublisher{
		writer:  w,
		timeout: 3 * time.Second,
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.writer.WriteMessages(cctx, kgo.Message{
		Key:   []byte(event.EmojiID),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
