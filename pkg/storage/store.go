// Package storage is the client-side key/value store that stands in for
// browser local storage. Access is last-writer-wins with no cross-process
// coordination, the same contract a browser gives two tabs of one origin.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyToken         = "token"
	KeySessionID     = "session_id"
	KeyBuyNowSession = "buy_now_session"
)

var ErrNotFound = errors.New("storage: key not found")

type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove is a no-op for absent keys.
	Remove(ctx context.Context, key string) error
}
