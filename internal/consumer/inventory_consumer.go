package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// StockAdjuster is implemented by every db.ProductRepository.
type StockAdjuster interface {
	AdjustQuantity(ctx context.Context, id int, delta int) error
}

// InventoryConsumer keeps product stock in line with order events: created
// orders reserve stock and cancelled orders release it.
type InventoryConsumer struct {
	repo StockAdjuster
	log  zerolog.Logger
}

func NewInventoryConsumer(repo StockAdjuster, log zerolog.Logger) *InventoryConsumer {
	return &InventoryConsumer{
		repo: repo,
		log:  log.With().Str("component", "inventory_consumer").Logger(),
	}
}

// Run processes deliveries until the channel closes or ctx is done.
func (c *InventoryConsumer) Run(ctx context.Context, messages <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *InventoryConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.log.Error().Err(err).Msg("failed to parse event")
		msg.Nack(false, false) // Don't requeue bad messages
		return
	}

	sign := 0
	switch {
	case event.Type == models.OrderCreated:
		sign = -1
	case event.Type == models.OrderStatusChanged && event.Status == models.StatusCancelled:
		sign = 1
	}
	if sign == 0 {
		msg.Ack(false)
		return
	}

	log := c.log.With().Str("order_id", event.OrderID.String()).Str("type", string(event.Type)).Logger()

	success := true
	for _, item := range event.Items {
		if err := c.repo.AdjustQuantity(ctx, item.ProductID, sign*item.Quantity); err != nil {
			log.Error().Err(err).Int("product_id", item.ProductID).Msg("failed to update inventory")
			success = false
			continue
		}
		log.Debug().Int("product_id", item.ProductID).Int("delta", sign*item.Quantity).Msg("inventory adjusted")
	}

	if success {
		msg.Ack(false)
		log.Info().Msg("order event processed")
	} else {
		msg.Nack(false, true) // Requeue for retry
		log.Warn().Msg("order event partially failed, requeued")
	}
}
