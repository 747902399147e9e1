package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher appends race events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher connects to addr and publishes to stream
func NewRedisPublisher(addr, password, stream string) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return NewRedisPublisherWithClient(client, stream)
}

// NewRedisPublisherWithClient publishes to stream through an existing client
func NewRedisPublisherWithClient(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Name identifies the sink in logs and metrics
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Publish adds the event to the stream; the data field holds the JSON payload
func (p *RedisPublisher) Publish(ctx context.Context, event RaceEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling race event: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":    string(data),
			"race_id": event.Race.ID,
			"winner":  event.Race.Winner,
		},
	}).Err()
}

// Ping checks the connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the client
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
