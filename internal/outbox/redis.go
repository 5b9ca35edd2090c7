// Package outbox hands produced notifications to external delivery workers
// through Redis lists.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/portfolio/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "portfolio:notifications:"

	// recentPerUser caps the per-user list kept for inbox previews.
	recentPerUser = 100
)

// RedisOutbox queues notifications for delivery. Every notification goes
// onto one shared queue and onto its recipient's recent list.
type RedisOutbox struct {
	client *redis.Client
	prefix string
}

// New connects to redisURL and verifies the connection.
func New(ctx context.Context, redisURL string) (*RedisOutbox, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewWithClient(client, DefaultPrefix), nil
}

func NewWithClient(client *redis.Client, prefix string) *RedisOutbox {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisOutbox{client: client, prefix: prefix}
}

func (o *RedisOutbox) queueKey() string { return o.prefix + "queue" }

func (o *RedisOutbox) userKey(userID string) string { return o.prefix + "user:" + userID }

// Dispatch enqueues notes in a single transaction.
func (o *RedisOutbox) Dispatch(ctx context.Context, notes []domain.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	payloads := make([][]byte, len(notes))
	for i, n := range notes {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notification %s: %w", n.ID, err)
		}
		payloads[i] = data
	}

	_, err := o.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, n := range notes {
			pipe.RPush(ctx, o.queueKey(), payloads[i])
			pipe.LPush(ctx, o.userKey(n.UserID), payloads[i])
			pipe.LTrim(ctx, o.userKey(n.UserID), 0, recentPerUser-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue notifications: %w", err)
	}
	return nil
}

// Pop removes the oldest queued notification. It returns nil when the
// queue is empty.
func (o *RedisOutbox) Pop(ctx context.Context) (*domain.Notification, error) {
	data, err := o.client.LPop(ctx, o.queueKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop notification: %w", err)
	}
	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return &n, nil
}

// Pending returns the queue length.
func (o *RedisOutbox) Pending(ctx context.Context) (int64, error) {
	n, err := o.client.LLen(ctx, o.queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}

// Recent returns up to limit of the user's latest notifications, newest first.
func (o *RedisOutbox) Recent(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > recentPerUser {
		limit = recentPerUser
	}
	raw, err := o.client.LRange(ctx, o.userKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, r := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (o *RedisOutbox) Close() error {
	return o.client.Close()
}
