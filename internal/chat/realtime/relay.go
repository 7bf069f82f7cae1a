package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"taskchat/internal/chat/models"
	"taskchat/internal/config"
)

const privateChannelPrefix = "private:"

// LocalDeliverer pushes to connections held by this process only.
type LocalDeliverer interface {
	DeliverLocal(userID string, event models.Event) bool
}

// RedisRelay fans pushes out to every instance over Redis pub/sub, one
// channel per user.
type RedisRelay struct {
	rdb *redis.Client
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return rdb, nil
}

func NewRedisRelay(rdb *redis.Client) *RedisRelay {
	return &RedisRelay{rdb: rdb}
}

func (r *RedisRelay) Publish(ctx context.Context, userID string, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, privateChannelPrefix+userID, payload).Err()
}

// Run subscribes to every private channel and hands each event to local until
// ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context, local LocalDeliverer) error {
	pubsub := r.rdb.PSubscribe(ctx, privateChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s*: %w", privateChannelPrefix, err)
	}
	log.Printf("relay subscribed to %s*", privateChannelPrefix)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			dispatch(local, msg.Channel, msg.Payload)
		}
	}
}

func dispatch(local LocalDeliverer, channel, payload string) {
	userID := strings.TrimPrefix(channel, privateChannelPrefix)
	if userID == "" || userID == channel {
		return
	}

	var event models.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("Dropping malformed relay payload on %s: %v", channel, err)
		return
	}
	local.DeliverLocal(userID, event)
}

func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
