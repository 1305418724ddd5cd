package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

type ackRecorder struct {
	acks, nacks int
	requeued    bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acks++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeued = requeue
	return nil
}

func (a *ackRecorder) Reject(uint64, bool) error { return nil }

type stockLedger struct {
	deltas map[int]int
	fail   map[int]bool
}

func (s *stockLedger) AdjustQuantity(_ context.Context, id int, delta int) error {
	if s.fail[id] {
		return errors.New("db down")
	}
	if s.deltas == nil {
		s.deltas = map[int]int{}
	}
	s.deltas[id] += delta
	return nil
}

func deliver(t *testing.T, c *InventoryConsumer, ack *ackRecorder, body []byte) {
	t.Helper()
	ch := make(chan amqp.Delivery, 1)
	ch <- amqp.Delivery{Acknowledger: ack, Body: body}
	close(ch)
	require.NoError(t, c.Run(context.Background(), ch))
}

func encode(t *testing.T, event models.OrderEvent) []byte {
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestInventoryConsumer_ReservesAndReleases(t *testing.T) {
	ledger := &stockLedger{}
	c := NewInventoryConsumer(ledger, logger.Nop())
	items := []models.OrderItemEvent{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}

	ack := &ackRecorder{}
	deliver(t, c, ack, encode(t, models.OrderEvent{Type: models.OrderCreated, OrderID: "1", Items: items}))
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, map[int]int{1: -2, 2: -1}, ledger.deltas)

	ack = &ackRecorder{}
	deliver(t, c, ack, encode(t, models.OrderEvent{
		Type: models.OrderStatusChanged, OrderID: "1", Status: models.StatusCancelled, Items: items,
	}))
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, map[int]int{1: 0, 2: 0}, ledger.deltas)
}

func TestInventoryConsumer_IgnoresOtherEvents(t *testing.T) {
	ledger := &stockLedger{}
	c := NewInventoryConsumer(ledger, logger.Nop())

	ack := &ackRecorder{}
	deliver(t, c, ack, encode(t, models.OrderEvent{
		Type: models.OrderStatusChanged, Status: models.StatusCompleted,
		Items: []models.OrderItemEvent{{ProductID: 1, Quantity: 1}},
	}))
	assert.Equal(t, 1, ack.acks)
	assert.Empty(t, ledger.deltas)
}

func TestInventoryConsumer_BadMessage(t *testing.T) {
	ack := &ackRecorder{}
	deliver(t, NewInventoryConsumer(&stockLedger{}, logger.Nop()), ack, []byte("{"))
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeued)
}

func TestInventoryConsumer_RequeuesOnFailure(t *testing.T) {
	ledger := &stockLedger{fail: map[int]bool{2: true}}
	ack := &ackRecorder{}
	deliver(t, NewInventoryConsumer(ledger, logger.Nop()), ack, encode(t, models.OrderEvent{
		Type:  models.OrderCreated,
		Items: []models.OrderItemEvent{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}},
	}))
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}
