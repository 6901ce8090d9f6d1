package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"phishguard/internal/models"
)

const DefaultRedisKey = "phishGuardReports"

// RedisBackend keeps the history as one JSON value under a single key.
// Update uses WATCH/MULTI so concurrent writers in other processes cannot
// interleave with a read-modify-write.
type RedisBackend struct {
	Client     *redis.Client
	Key        string
	MaxRetries int
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{Client: client, Key: key, MaxRetries: 10}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (b *RedisBackend) read(ctx context.Context, g stringGetter) ([]models.Report, error) {
	data, err := g.Get(ctx, b.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", b.Key, err)
	}
	return decode(data)
}

func (b *RedisBackend) Get(ctx context.Context) ([]models.Report, error) {
	return b.read(ctx, b.Client)
}

func (b *RedisBackend) Set(ctx context.Context, reports []models.Report) error {
	data, err := encode(reports)
	if err != nil {
		return err
	}
	if err := b.Client.Set(ctx, b.Key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.Key, err)
	}
	return nil
}

func (b *RedisBackend) Update(ctx context.Context, fn UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := b.read(ctx, tx)
		if err != nil {
			return err
		}
		next, changed := fn(current)
		if !changed {
			return nil
		}
		data, err := encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, b.Key, data, 0)
			return nil
		})
		return err
	}

	attempts := b.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		err := b.Client.Watch(ctx, txf, b.Key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis update %s: gave up after %d conflicting attempts", b.Key, attempts)
}
