package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"planetwars-server/internal/game"
	"planetwars-server/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisPublisher is the part of the redis client the publisher needs
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher pushes a Standing to a redis channel after every turn
type Publisher struct {
	client  redisPublisher
	channel string
	matchID uuid.UUID
	logger  *slog.Logger
}

func NewPublisher(client redisPublisher, channel string, matchID uuid.UUID, logger *slog.Logger) *Publisher {
	return &Publisher{
		client:  client,
		channel: channel,
		matchID: matchID,
		logger:  logger.With("component", "match_publisher", "channel", channel),
	}
}

func (p *Publisher) PublishTurn(ctx context.Context, snapshot game.Snapshot) error {
	payload, err := json.Marshal(NewStanding(p.matchID, snapshot))
	if err != nil {
		return fmt.Errorf("failed to encode standing: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return errors.WrapExternal(fmt.Sprintf("failed to publish turn %d", snapshot.Turn), err)
	}

	p.logger.Debug("Turn published", "turn", snapshot.Turn, "receivers", receivers)
	return nil
}
