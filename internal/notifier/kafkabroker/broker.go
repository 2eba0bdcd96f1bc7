// Package kafkabroker implements the notifier contract on top of Kafka.
// Every subscription gets its own consumer group so each connected
// subscriber receives an independent copy of every publish, and readers
// start at the last offset so a late subscriber never replays history.
package kafkabroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/McBride-Ryan/websocket-hss/internal/config"
	"github.com/McBride-Ryan/websocket-hss/internal/notifier"
)

// Writer wraps kafka.Writer methods for testing.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Broker is a Kafka-backed fan-out channel.
type Broker struct {
	logger *slog.Logger
	cfg    *config.KafkaConfig
	writer Writer
	topic  string

	mu   sync.Mutex
	subs map[string]*subscription
}

// NewBroker dials Kafka, ensures the topic exists, and returns a broker
// publishing to it.
func NewBroker(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, topic string) (*Broker, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka notifier topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	if err := createTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &Broker{
		logger: logger,
		cfg:    cfg,
		writer: writer,
		topic:  topic,
		subs:   make(map[string]*subscription),
	}, nil
}

// Publish writes evt to the broker's topic. The subscriber exclusion rides
// in the envelope and is applied on the consuming side.
func (b *Broker) Publish(ctx context.Context, topic string, evt notifier.Event) error {
	if topic != b.topic {
		return fmt.Errorf("unknown topic %q, broker is bound to %q", topic, b.topic)
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var key []byte
	if evt.Transaction != nil {
		key = []byte(fmt.Sprintf("%d", evt.Transaction.ID))
	}

	if err := b.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		b.logger.Error("Failed to publish event", "topic", b.topic, "event", evt.Name, "error", err)
		return fmt.Errorf("failed to publish event to %s: %w", b.topic, err)
	}

	b.logger.Debug("Published event", "topic", b.topic, "event", evt.Name)
	return nil
}

// Subscribe creates a reader in a fresh consumer group and pumps decoded
// events to the returned subscription until it is closed or ctx ends.
func (b *Broker) Subscribe(ctx context.Context, topic string) (notifier.Subscription, error) {
	if topic != b.topic {
		return nil, fmt.Errorf("unknown topic %q, broker is bound to %q", topic, b.topic)
	}

	id := uuid.New().String()
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{b.cfg.Brokers},
		Topic:       b.topic,
		GroupID:     fmt.Sprintf("%s-%s", b.cfg.GroupPrefix, id),
		MinBytes:    b.cfg.MinBytes,
		MaxBytes:    b.cfg.MaxBytes,
		MaxWait:     b.cfg.MaxWait,
		StartOffset: kafka.LastOffset,
	})

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		id:     id,
		events: make(chan notifier.Event, 16),
		cancel: cancel,
		reader: reader,
	}

	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()

	go b.consume(subCtx, sub)

	b.logger.Debug("Subscriber registered", "topic", b.topic, "subscriber", id)
	return sub, nil
}

func (b *Broker) consume(ctx context.Context, sub *subscription) {
	defer func() {
		b.mu.Lock()
		delete(b.subs, sub.id)
		b.mu.Unlock()
		close(sub.events)
	}()

	for {
		msg, err := sub.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("Failed to fetch message", "topic", b.topic, "subscriber", sub.id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var evt notifier.Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			b.logger.Error("Failed to decode event, skipping",
				"topic", b.topic, "offset", msg.Offset, "error", err)
		} else if evt.ExcludeID != sub.id {
			select {
			case sub.events <- evt:
			case <-ctx.Done():
				return
			}
		}

		if err := sub.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			b.logger.Error("Failed to commit message", "topic", b.topic, "offset", msg.Offset, "error", err)
		}
	}
}

// Close stops the writer and every open subscription.
func (b *Broker) Close() error {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}

	b.logger.Info("Closing Kafka notifier", "topic", b.topic)
	if err := b.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", b.topic, err)
	}
	return nil
}

type subscription struct {
	id     string
	events chan notifier.Event
	cancel context.CancelFunc
	reader *kafka.Reader

	closeOnce sync.Once
	closeErr  error
}

func (s *subscription) ID() string { return s.id }

func (s *subscription) Events() <-chan notifier.Event { return s.events }

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.reader.Close()
	})
	return s.closeErr
}

// createTopicIfNotExists creates the topic when it is missing, retrying the
// partition read a few times to ride out broker startup.
func createTopicIfNotExists(conn *kafka.Conn, topicName string, numPartitions, replicationFactor int, log *slog.Logger) error {
	var partitions []kafka.Partition
	var err error

	for i := 0; i < 5; i++ {
		partitions, err = conn.ReadPartitions(topicName)
		if err == nil {
			break
		}
		log.Warn("Failed to read partitions, retrying...", "topic", topicName, "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if len(partitions) > 0 {
		log.Info("Kafka topic already exists", "topic", topicName)
		return nil
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}
	if topicConfig.NumPartitions == 0 {
		topicConfig.NumPartitions = 1
	}
	if topicConfig.ReplicationFactor == 0 {
		topicConfig.ReplicationFactor = 1
	}

	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	log.Info("Created Kafka topic", "topic", topicName)
	return nil
}
