package services

import (
	"context"
	"log"

	"salon-backend/mq"
)

// publish sends a domain event. Delivery failures are logged and otherwise
// ignored; the database row is the source of truth.
func publish(ctx context.Context, p mq.Publisher, key string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, payload); err != nil {
		log.Printf("[MQ] publish %s failed: %v", key, err)
	}
}

func orNop(p mq.Publisher) mq.Publisher {
	if p == nil {
		return mq.Nop{}
	}
	return p
}
