// Package amqpcast relays session events through a RabbitMQ fanout exchange,
// for deployments where the clients already share a broker instead of Redis.
package amqpcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mathstutor/mathstutor-go/core"
)

const exchangeName = "session.changed"

type Broadcaster struct {
	conn *amqp.Connection
	log  core.Logger
}

var _ core.Broadcaster = (*Broadcaster)(nil)

func NewBroadcaster(conf *core.Config, log core.Logger) (*Broadcaster, error) {
	conn, err := amqp.Dial(conf.AMQPUrl)
	if err != nil {
		return nil, errors.Wrap(err, "dialing amqp broker")
	}
	return &Broadcaster{conn: conn, log: log}, nil
}

func (b *Broadcaster) Close() error { return b.conn.Close() }

func (b *Broadcaster) Publish(ctx context.Context, evt core.SessionEvent) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "opening amqp channel")
	}
	defer func() { _ = ch.Close() }()

	if err := b.declareExchange(ch); err != nil {
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encoding session event")
	}
	pub := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	}
	return errors.Wrap(
		ch.PublishWithContext(ctx, exchangeName, "", false, false, pub),
		"publishing session event",
	)
}

// Subscribe binds an exclusive auto-deleted queue to the fanout exchange so
// every subscriber sees every event.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan core.SessionEvent, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "opening amqp channel")
	}
	if err := b.declareExchange(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, errors.Wrap(err, "declaring subscriber queue")
	}
	if err := ch.QueueBind(q.Name, "", exchangeName, false, nil); err != nil {
		_ = ch.Close()
		return nil, errors.Wrap(err, "binding subscriber queue")
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, errors.Wrap(err, "consuming session events")
	}

	out := make(chan core.SessionEvent, 1)
	go func() {
		defer close(out)
		defer func() { _ = ch.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var evt core.SessionEvent
				if err := json.Unmarshal(d.Body, &evt); err != nil {
					b.log.Error("amqp: decoding session event", err)
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

func (b *Broadcaster) declareExchange(ch *amqp.Channel) error {
	return errors.Wrap(
		ch.ExchangeDeclare(exchangeName, "fanout", false, false, false, false, nil),
		"declaring session exchange",
	)
}
