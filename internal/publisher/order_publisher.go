package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// OrderEventsQueue carries every order mutation made through the orders API.
const OrderEventsQueue = "order.events"

// Broker is the part of messaging.RabbitMQ the publisher uses.
type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, message []byte) error
}

type OrderPublisher struct {
	mq Broker
}

func NewOrderPublisher(mq Broker) (*OrderPublisher, error) {
	if err := mq.DeclareQueue(OrderEventsQueue); err != nil {
		return nil, err
	}

	return &OrderPublisher{mq: mq}, nil
}

// Publish stamps OccurredAt when unset and sends the event.
func (p *OrderPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(ctx, OrderEventsQueue, data)
}

// NewOrderEvent builds the event for a created or updated order.
func NewOrderEvent(typ models.OrderEventType, order models.Order) models.OrderEvent {
	event := models.OrderEvent{
		Type:       typ,
		OrderID:    order.ID,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderItemEvent{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
		})
	}
	return event
}
