// Package cache holds JSON payloads keyed by string for the read paths of the
// service.
package cache

import (
	"errors"
	"time"

	"github.com/umakantv/go-utils/cache"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the cache surface used by the services.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Invalidate(keys ...string)
	Close()
}

// Backend adapts a go-utils cache. Values are stored as strings so they come
// back with the same type from redis and memory backends.
type Backend struct {
	c cache.Cache
}

func NewBackend(c cache.Cache) *Backend {
	return &Backend{c: c}
}

func (b *Backend) Get(key string) ([]byte, error) {
	raw, err := b.c.Get(key)
	if err != nil {
		return nil, ErrMiss
	}
	switch v := raw.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, ErrMiss
	}
}

func (b *Backend) Set(key string, value []byte, ttl time.Duration) error {
	return b.c.Set(key, string(value), ttl)
}

func (b *Backend) Invalidate(keys ...string) {
	for _, k := range keys {
		b.c.Delete(k)
	}
}

func (b *Backend) Close() {
	b.c.Close()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) ([]byte, error)              { return nil, ErrMiss }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Invalidate(...string)                    {}
func (Nop) Close()                                  {}
