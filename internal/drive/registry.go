package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"readshelf/internal/apperr"

	"github.com/redis/go-redis/v9"
)

// ChannelRegistry remembers registered watch channels in Redis so that the
// webhook and the stop command can find them again.
type ChannelRegistry struct {
	client *redis.Client
	prefix string
}

// NewChannelRegistry connects to redisURL and checks the connection.
func NewChannelRegistry(redisURL string) (*ChannelRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewChannelRegistryWithClient(client), nil
}

func NewChannelRegistryWithClient(client *redis.Client) *ChannelRegistry {
	return &ChannelRegistry{
		client: client,
		prefix: "drive:channel:",
	}
}

func (r *ChannelRegistry) key(channelID string) string {
	return r.prefix + channelID
}

// Save stores the channel until it expires. Channels without an expiration
// are kept for a day.
func (r *ChannelRegistry) Save(ctx context.Context, ch *Channel) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal channel: %w", err)
	}

	ttl := time.Until(ch.Expiration)
	if ch.Expiration.IsZero() || ttl <= 0 {
		ttl = 24 * time.Hour
	}

	if err := r.client.Set(ctx, r.key(ch.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save channel: %w", err)
	}
	return nil
}

func (r *ChannelRegistry) Get(ctx context.Context, channelID string) (*Channel, error) {
	data, err := r.client.Get(ctx, r.key(channelID)).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFound("channel %s not found", channelID)
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}

	var ch Channel
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal channel: %w", err)
	}
	return &ch, nil
}

func (r *ChannelRegistry) Delete(ctx context.Context, channelID string) error {
	if err := r.client.Del(ctx, r.key(channelID)).Err(); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

func (r *ChannelRegistry) Close() error {
	return r.client.Close()
}
