package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing activity messages
type EventPublisher interface {
	PublishActivity(ctx context.Context, msg *ActivityMessage) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a Kafka publisher that keys messages by user id,
// so all activity of one learner lands on one partition in order
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers: config.KafkaBrokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
			return msg.Metadata.Get("user_id"), nil
		}),
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

// PublishActivity publishes an activity message to Kafka
func (p *KafkaEventPublisher) PublishActivity(ctx context.Context, msg *ActivityMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal activity message: %w", err)
	}

	wmMsg := message.NewMessage(msg.ID, payload)
	wmMsg.SetContext(ctx)
	wmMsg.Metadata.Set("event_type", string(msg.Type))
	wmMsg.Metadata.Set("user_id", msg.UserID)
	wmMsg.Metadata.Set("source", msg.Source)
	wmMsg.Metadata.Set("version", msg.Version)
	wmMsg.Metadata.Set("timestamp", msg.Timestamp.Format(time.RFC3339))

	if err := p.publisher.Publish(p.topicName, wmMsg); err != nil {
		p.logger.Error("Failed to publish activity message",
			"event_id", msg.ID,
			"event_type", msg.Type,
			"error", err)
		return fmt.Errorf("failed to publish activity message: %w", err)
	}

	p.logger.Debug("Published activity message",
		"event_id", msg.ID,
		"event_type", msg.Type,
		"topic", p.topicName)

	return nil
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher keeps published messages in memory
type MockEventPublisher struct {
	mu       sync.Mutex
	Messages []ActivityMessage
	Logger   *slog.Logger
	// Err, when set, is returned from every publish
	Err error
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Messages: make([]ActivityMessage, 0),
		Logger:   logger,
	}
}

func (m *MockEventPublisher) PublishActivity(ctx context.Context, msg *ActivityMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, *msg)
	if m.Logger != nil {
		m.Logger.Debug("Mock: Published activity message",
			"event_id", msg.ID,
			"event_type", msg.Type)
	}
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedMessages returns a copy of all published messages
func (m *MockEventPublisher) GetPublishedMessages() []ActivityMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ActivityMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

// ClearMessages drops every recorded message
func (m *MockEventPublisher) ClearMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = make([]ActivityMessage, 0)
}
