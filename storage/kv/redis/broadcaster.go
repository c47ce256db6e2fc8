package redis

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/mathstutor/mathstutor-go/core"
)

const sessionChannel = "mathstutor:session"

// Broadcaster relays SessionEvents over Redis pub/sub so all processes
// sharing the store observe credential changes.
type Broadcaster struct {
	client *redis.Client
	log    core.Logger
}

var _ core.Broadcaster = (*Broadcaster)(nil)

func NewBroadcaster(client *redis.Client, log core.Logger) *Broadcaster {
	return &Broadcaster{client: client, log: log}
}

func (b *Broadcaster) Publish(ctx context.Context, evt core.SessionEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encoding session event")
	}
	return errors.Wrap(b.client.Publish(ctx, sessionChannel, body).Err(), "publishing session event")
}

func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan core.SessionEvent, error) {
	sub := b.client.Subscribe(ctx, sessionChannel)
	// force the subscription to be established before returning
	if _, err := sub.Receive(ctx); err != nil {
		return nil, errors.Wrap(err, "subscribing to session events")
	}

	out := make(chan core.SessionEvent, 1)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var evt core.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.log.Error("redis: decoding session event", err)
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
