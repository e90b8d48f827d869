// Package rediskv implements storage.KV on Redis.
package rediskv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gtodo/internal/storage"
)

// KV implements storage.KV. Keys are namespaced by prefix.
type KV struct {
	client *redis.Client
	prefix string
}

// New wraps client.
func New(client *redis.Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, prefix string) (*KV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis not available at %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Get implements storage.KV.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := k.client.Get(ctx, k.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return data, nil
}

// Set implements storage.KV. SET replaces the value atomically.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := k.client.Set(ctx, k.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete implements storage.KV.
func (k *KV) Delete(ctx context.Context, key string) error {
	n, err := k.client.Del(ctx, k.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close implements storage.KV.
func (k *KV) Close() error {
	return k.client.Close()
}
