package inmem

import (
	"context"
	"sync"

	"github.com/mathstutor/mathstutor-go/core"
)

// Broadcaster fans SessionEvents out to in-process subscribers. Slow
// subscribers drop events rather than block the publisher; consumers treat
// any event as "re-check state", so losing one is harmless.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan core.SessionEvent]struct{}
}

var _ core.Broadcaster = (*Broadcaster)(nil)

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan core.SessionEvent]struct{})}
}

func (b *Broadcaster) Publish(_ context.Context, evt core.SessionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan core.SessionEvent, error) {
	ch := make(chan core.SessionEvent, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}
