package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"pethotel/internal/notify"
)

// Consumer reads messages of one topic as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a consumer group reader.
func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume calls handler for every message until ctx ends or handler fails.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// NotificationHandler decodes notification events and dispatches them.
// Undecodable messages and delivery failures are logged and skipped so
// one bad event does not stall the partition.
func NotificationHandler(dispatcher *notify.Dispatcher) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := DecodeEvent(msg.Value)
		if err != nil {
			log.Printf("decode notification at offset %d: %v", msg.Offset, err)
			return nil
		}

		if err := dispatcher.Dispatch(ctx, event); err != nil {
			log.Printf("deliver notification %s: %v", event.ID, err)
		}
		return nil
	}
}

// DecodeEvent parses a notification payload.
func DecodeEvent(data []byte) (notify.Event, error) {
	var event notify.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return notify.Event{}, fmt.Errorf("decode notification: %w", err)
	}
	if event.ID == "" {
		return notify.Event{}, fmt.Errorf("decode notification: missing id")
	}
	return event, nil
}
