package save

import (
	"context"
	"errors"
	"fmt"
	"sort"

	backend "github.com/redis/go-redis/v9"
)

// RedisBackend keeps archives in Redis under <prefix>adventure:<name>, with
// the set <prefix>adventures indexing the stored names.
type RedisBackend struct {
	client *backend.Client
	prefix string
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) {
		b.prefix = prefix
	}
}

// NewRedisBackend connects to the Redis server at addr.
func NewRedisBackend(addr string, opts ...RedisOption) *RedisBackend {
	return NewRedisBackendFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *backend.Client, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{client: client, prefix: "grow:"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBackend) key(name string) string {
	return b.prefix + "adventure:" + name
}

func (b *RedisBackend) indexKey() string {
	return b.prefix + "adventures"
}

func (b *RedisBackend) List(ctx context.Context) ([]string, error) {
	names, err := b.client.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing adventures: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (b *RedisBackend) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q from redis: %w", name, err)
	}
	return data, nil
}

func (b *RedisBackend) Write(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.key(name), data, 0)
	pipe.SAdd(ctx, b.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving %q to redis: %w", name, err)
	}
	return nil
}

func (b *RedisBackend) Locate(name string) string {
	return "redis://" + b.client.Options().Addr + "/" + b.key(name)
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
