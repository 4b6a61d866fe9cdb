package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// DefaultBusChannel is the redis pub/sub channel shared by API processes.
const DefaultBusChannel = "agora:realtime"

// Bus fans messages out to every process through redis pub/sub.
type Bus struct {
	client  rueidis.Client
	channel string
	logger  *zap.Logger
}

// NewBus creates a Bus on the given redis channel.
func NewBus(client rueidis.Client, channel string, logger *zap.Logger) *Bus {
	if channel == "" {
		channel = DefaultBusChannel
	}
	return &Bus{
		client:  client,
		channel: channel,
		logger:  logger.Named("realtime_bus"),
	}
}

// Publish implements Publisher.
func (b *Bus) Publish(ctx context.Context, msg *Message) error {
	payload, err := sonic.MarshalString(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	cmd := b.client.B().Publish().Channel(b.channel).Message(payload).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Forward subscribes to the bus and hands every message to dst until ctx
// is cancelled. It blocks.
func (b *Bus) Forward(ctx context.Context, dst Publisher) error {
	cmd := b.client.B().Subscribe().Channel(b.channel).Build()

	err := b.client.Receive(ctx, cmd, func(m rueidis.PubSubMessage) {
		var msg Message
		if err := sonic.UnmarshalString(m.Message, &msg); err != nil {
			b.logger.Warn("Dropping malformed bus payload", zap.Error(err))
			return
		}
		if err := dst.Publish(ctx, &msg); err != nil {
			b.logger.Warn("Failed to forward bus message",
				zap.Error(err),
				zap.String("channel", msg.Channel))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bus subscription ended: %w", err)
	}
	return nil
}
