// Package cache — короткоживущий кэш вычисляемых ответов (flagged-список).
// Корректность сервиса от кэша не зависит: ошибки кэша только логируются.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache хранит сериализованные значения с TTL.
type Cache interface {
	// Get возвращает значение и found=false при промахе.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	// Purge инвалидирует все ключи.
	Purge(ctx context.Context) error
}

// Memory — кэш в памяти процесса поверх go-cache.
type Memory struct {
	c *gocache.Cache
}

// NewMemory создаёт кэш в памяти с заданным TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, ttl*2)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.c.Set(key, val, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Purge(context.Context) error {
	m.c.Flush()
	return nil
}

// Nop — выключенный кэш (TTL = 0).
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error         { return nil }
func (Nop) Purge(context.Context) error                       { return nil }

// New выбирает реализацию: Nop при ttl <= 0, Redis при заданном redisURL, иначе Memory.
func New(redisURL string, ttl time.Duration) (Cache, error) {
	if ttl <= 0 {
		return Nop{}, nil
	}
	if redisURL != "" {
		return NewRedis(redisURL, "modplanner:flagged:", ttl)
	}
	return NewMemory(ttl), nil
}
