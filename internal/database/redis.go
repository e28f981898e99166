package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisConnectTimeout = 10 * time.Second

// Redis client names, visible in CLIENT LIST.
const (
	ClientQueue  = "sahayak-queue"
	ClientPubSub = "sahayak-pubsub"
	ClientCLI    = "sahayakctl"
)

// RedisClients keeps worker queue traffic (BLPOP, job and run locks, upload
// dedupe) on a different pool than teacher event pub/sub.
type RedisClients struct {
	Queue  *redis.Client
	PubSub *redis.Client
}

// NewRedisClients connects both pools; neither is returned unless both answer
// PING.
func NewRedisClients(ctx context.Context, redisURL string) (*RedisClients, error) {
	queue, err := NewRedisClient(ctx, redisURL, ClientQueue)
	if err != nil {
		return nil, err
	}
	pubsub, err := NewRedisClient(ctx, redisURL, ClientPubSub)
	if err != nil {
		queue.Close()
		return nil, err
	}
	return &RedisClients{Queue: queue, PubSub: pubsub}, nil
}

// NewRedisClient opens a single named client and checks it with PING.
func NewRedisClient(ctx context.Context, redisURL, name string) (*redis.Client, error) {
	opt, err := redisOptions(redisURL, name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis (%s): %w", name, err)
	}
	return client, nil
}

func redisOptions(redisURL, name string) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = name
	return opt, nil
}

func (r *RedisClients) Close() error {
	return errors.Join(r.Queue.Close(), r.PubSub.Close())
}
