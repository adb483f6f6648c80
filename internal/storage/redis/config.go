package redis

import (
	"errors"
	"time"
)

// Config for the Redis room backend
type Config struct {
	URL string

	PoolSize     int
	MinIdleConns int

	// Prefix namespaces every key, so several deployments can share a database
	Prefix string

	// RoomTTL, when set, expires a room this long after its last save. Zero
	// keeps rooms until deleted; Clear at boot removes a dead process's rooms.
	RoomTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		Prefix:       "roomhub",
	}
}

func (c Config) validate() error {
	switch {
	case c.Prefix == "":
		return errors.New("redis: key prefix must not be empty")
	case c.RoomTTL < 0:
		return errors.New("redis: room TTL must not be negative")
	}
	return nil
}
