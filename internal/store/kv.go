// Package store provides the TTL-backed persistence layer: a small
// key-value contract plus the two document stores built on top of it
// (game state and session/roster).
package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by KV.Get for missing or expired keys.
var ErrKeyNotFound = errors.New("key not found")

// KV is the storage contract for JSON documents with per-key TTL.
// Implementations may be backed by memory (tests, development) or Postgres.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound if the key is absent
	// or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key and resets its TTL. A ttl of zero means
	// the key never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Keyspace prefixes, one per independently-TTL'd document family.
const (
	keyGameState = "game_state:"
	keySession   = "session:"
	keyPlayers   = "players:"
	keySocket    = "socket:"
)
