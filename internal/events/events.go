package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/rubnab73/School/internal/config"
)

const (
	Source = "school-service"

	metadataEventType = "event_type"
)

// Event is the envelope published for every committed write.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   *uint          `json:"actor_id,omitempty"`
	SubjectID *uint          `json:"subject_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType string, actorID, subjectID *uint, data map[string]any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		SubjectID: subjectID,
		Data:      data,
	}
}

// EventPublisher publishes domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// WatermillPublisher publishes events as JSON messages on a single topic.
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewWatermillPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher, topic: topic, logger: logger}
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(metadataEventType, event.Type)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", p.topic)
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// Bus bundles the publisher with an in-process subscriber when one exists.
type Bus struct {
	Publisher  EventPublisher
	Subscriber message.Subscriber
	Topic      string
}

// NewBus publishes to Kafka when brokers are configured, otherwise to an in-process channel.
func NewBus(cfg config.KafkaConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.Brokers) > 0 {
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.Brokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		logger.Info("Publishing events to Kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
		return &Bus{Publisher: NewWatermillPublisher(pub, cfg.Topic, logger), Topic: cfg.Topic}, nil
	}

	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
	return &Bus{
		Publisher:  NewWatermillPublisher(ch, cfg.Topic, logger),
		Subscriber: ch,
		Topic:      cfg.Topic,
	}, nil
}

// Decode parses a message produced by WatermillPublisher.
func Decode(msg *message.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return &event, nil
}

// RunLogSubscriber logs every event on topic until ctx is cancelled.
func RunLogSubscriber(ctx context.Context, sub message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			event, err := Decode(msg)
			if err != nil {
				logger.Warn("Dropping malformed event", "error", err)
				msg.Ack()
				continue
			}
			logger.Info("Activity",
				"event_type", event.Type,
				"event_id", event.ID,
				"actor_id", event.ActorID,
				"subject_id", event.SubjectID)
			msg.Ack()
		}
	}()

	return nil
}
