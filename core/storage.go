package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Persisted keys. Names match what the backend's web client uses so a shared
// store (e.g. Redis fronted by a gateway) stays compatible.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValue is the persistent key-value store holding the session token, the
// cached user snapshot and a handful of per-(user,lesson) cache flags.
// Writes are last-write-wins; no transaction discipline is needed at this scale.
type KeyValue interface {
	// Get returns ErrKeyNotFound when the key has never been set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionEvent signals that credential state changed somewhere (this process
// or another one sharing the store). Consumers re-run their startup
// resolution on receipt.
type SessionEvent struct {
	Kind string    `json:"kind"` // always EventSessionChanged for now
	At   time.Time `json:"at"`
}

const EventSessionChanged = "session-changed"

func NewSessionEvent() SessionEvent {
	return SessionEvent{Kind: EventSessionChanged, At: time.Now().UTC()}
}

// Broadcaster is the cross-process analog of the browser storage event: a
// typed pub/sub channel carrying SessionEvents.
type Broadcaster interface {
	Publish(ctx context.Context, evt SessionEvent) error
	// Subscribe delivers events until ctx is cancelled; the returned channel
	// is closed on cancellation.
	Subscribe(ctx context.Context) (<-chan SessionEvent, error)
}
