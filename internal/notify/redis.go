package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends offers to a list drained by the push worker.
type RedisSink struct {
	client redis.Cmdable
	queue  string
}

func NewRedisSink(client redis.Cmdable, queue string) *RedisSink {
	return &RedisSink{client: client, queue: queue}
}

func (s *RedisSink) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.queue, string(payload)).Err()
}
