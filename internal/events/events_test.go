package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/order"
)

type fakeChannel struct {
	key  string
	msg  amqp.Publishing
	err  error
	hasD bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	_, f.hasD = ctx.Deadline()
	f.key = key
	f.msg = msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

func sampleOrder() order.Order {
	return order.Order{
		ID:            "o1",
		PaymentID:     "pi_1",
		UserID:        "u1",
		UserEmail:     "u1@example.com",
		Items:         []order.Item{{ID: "a", Name: "A", Price: decimal.RequireFromString("10.00"), Quantity: 2}},
		TotalAmount:   decimal.RequireFromString("20.00"),
		ShippingInfo:  order.ShippingInfo{Name: "Ada", Address: "1 Loop", City: "Zurich", Zip: "8000"},
		PaymentStatus: order.StatusSucceeded,
		CreatedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishOrderCreated(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisherWithChannel(ch)

	require.NoError(t, p.PublishOrderCreated(context.Background(), sampleOrder()))
	assert.Equal(t, OrderCreatedQueue, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.True(t, ch.hasD)

	var env OrderCreatedEnvelope
	require.NoError(t, json.Unmarshal(ch.msg.Body, &env))
	require.NoError(t, env.Validate(OrderCreatedName, OrderCreatedVersion))
	assert.Equal(t, "u1", env.PartitionKey)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "pi_1", env.Payload.PaymentID)
	require.Len(t, env.Payload.Items, 1)
	assert.Equal(t, "a", env.Payload.Items[0].ProductID)
}

func TestPublishOrderCreated_ChannelError(t *testing.T) {
	p := NewPublisherWithChannel(&fakeChannel{err: errors.New("channel closed")})
	assert.Error(t, p.PublishOrderCreated(context.Background(), sampleOrder()))
}

func TestHandleOrderCreated(t *testing.T) {
	body, err := json.Marshal(NewOrderCreated(sampleOrder()))
	require.NoError(t, err)

	var got OrderCreatedPayload
	err = HandleOrderCreated(context.Background(), body, func(_ context.Context, p OrderCreatedPayload) error {
		got = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "o1", got.OrderID)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20")))
}

func TestHandleOrderCreated_Rejects(t *testing.T) {
	noop := func(context.Context, OrderCreatedPayload) error { return nil }

	assert.Error(t, HandleOrderCreated(context.Background(), []byte("{"), noop))

	env := NewOrderCreated(sampleOrder())
	env.EventName = "CartCheckedOut"
	body, _ := json.Marshal(env)
	assert.Error(t, HandleOrderCreated(context.Background(), body, noop))

	env = NewOrderCreated(sampleOrder())
	env.PartitionKey = ""
	body, _ = json.Marshal(env)
	assert.Error(t, HandleOrderCreated(context.Background(), body, noop))
}
