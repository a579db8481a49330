package broker

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/ticketbox-core/pkg/events"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	kind       string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name)
	f.kind = kind
	return nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

var quiet = log.New(io.Discard, "", 0)

func TestAMQPPublisher_DeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := NewAMQPPublisher(ch, "ticketbox.events", quiet)
	require.NoError(t, err)

	assert.Equal(t, []string{"ticketbox.events"}, ch.declared)
	assert.Equal(t, amqp.ExchangeTopic, ch.kind)
}

func TestAMQPPublisher_PublishesEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewAMQPPublisher(ch, "ticketbox.events", quiet)
	require.NoError(t, err)

	at := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, p.Handle(events.NewBaseEvent(events.EventOrderPurchased, at, map[string]int64{"order_id": 7})))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "ticketbox.events", msg.exchange)
	assert.Equal(t, events.EventOrderPurchased, msg.key)
	assert.Equal(t, "application/json", msg.msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.msg.DeliveryMode)

	var env struct {
		Name       string           `json:"name"`
		OccurredAt time.Time        `json:"occurred_at"`
		Payload    map[string]int64 `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.msg.Body, &env))
	assert.Equal(t, events.EventOrderPurchased, env.Name)
	assert.True(t, env.OccurredAt.Equal(at))
	assert.Equal(t, int64(7), env.Payload["order_id"])
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewAMQPPublisher(ch, "ticketbox.events", quiet)
	require.NoError(t, err)

	err = p.Handle(events.NewBaseEvent(events.EventEventApproved, time.Now(), nil))
	assert.Error(t, err)
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := NewAMQPPublisher(ch, "x", quiet)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
