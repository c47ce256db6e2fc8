package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathstutor/mathstutor-go/core"
)

func TestStore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, core.ErrKeyNotFound))

	require.NoError(t, s.Set(ctx, "token", "abc"))
	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Set(ctx, "token", "def"))
	v, _ = s.Get(ctx, "token")
	assert.Equal(t, "def", v)

	require.NoError(t, s.Set(ctx, "other", "x"))
	require.NoError(t, s.Delete(ctx, "token", "other", "never-existed"))
	assert.Zero(t, s.Len())
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub1, err := b.Subscribe(ctx)
	require.NoError(t, err)
	sub2, err := b.Subscribe(ctx)
	require.NoError(t, err)

	evt := core.NewSessionEvent()
	require.NoError(t, b.Publish(ctx, evt))

	for _, sub := range []<-chan core.SessionEvent{sub1, sub2} {
		select {
		case got := <-sub:
			assert.Equal(t, core.EventSessionChanged, got.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBroadcaster_subscriptionEndsOnCancel(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := b.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, open := <-sub:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancellation")
	}

	// publishing after cancellation must not block or panic
	require.NoError(t, b.Publish(context.Background(), core.NewSessionEvent()))
}

func TestBroadcaster_slowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := b.Subscribe(ctx)
	require.NoError(t, err)

	// nobody is draining; repeated publishes fill the buffer and then drop
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(ctx, core.NewSessionEvent()))
	}
}
