package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Config holds cache configuration.
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Store is an in-memory TTL cache keyed by request parameters. Entries are
// stored whole; a reader never observes a partially written value.
type Store struct {
	c   *gocache.Cache
	ttl time.Duration
}

// NewStore creates a Store with the given TTL and cleanup interval.
func NewStore(cfg Config) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Store{
		c:   gocache.New(ttl, cleanup),
		ttl: ttl,
	}
}

// Key builds a cache key from a source identifier and request parameters.
func Key(source string, parts ...string) string {
	return fmt.Sprintf("%s:%s", source, strings.Join(parts, ":"))
}

// Get returns the cached value for key, if present and not expired.
func (s *Store) Get(key string) (interface{}, bool) {
	return s.c.Get(key)
}

// Set stores value under key with the default TTL.
func (s *Store) Set(key string, value interface{}) {
	s.c.Set(key, value, s.ttl)
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.c.Flush()
}
