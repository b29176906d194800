package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Cache is the key/value storage behind durable client state.
// A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, pattern string) error
	Close() error
}

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Key joins a namespace and name into a storage key
func Key(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + ":" + name
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func expired(at time.Time, now time.Time) bool {
	return !at.IsZero() && now.After(at)
}

// matchPattern performs simple pattern matching (only a trailing * wildcard)
func matchPattern(s, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(s, strings.TrimSuffix(pattern, "*"))
	}
	return s == pattern
}
