package events

import (
	"context"
	"errors"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher is what domain services depend on
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler consumes one decoded event
type Handler func(ctx context.Context, e Event) error

// Bus publishes encoded events on Topic
type Bus struct {
	pub message.Publisher
}

// NewBus creates a bus on top of a watermill publisher
func NewBus(pub message.Publisher) *Bus {
	return &Bus{pub: pub}
}

// Publish encodes and publishes e. Subscribers run asynchronously.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_name", string(e.EventName()))
	return b.pub.Publish(Topic, msg)
}

// Emit publishes e and logs a failure instead of returning it.
// Event delivery never fails the operation that produced it.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("[EVENTS] failed to publish %s: %v", e.EventName(), err)
	}
}

// Subscribe registers h on the router for every domain event. Unknown
// events are acknowledged and dropped with a warning.
func Subscribe(router *message.Router, sub message.Subscriber, handlerName string, h Handler) {
	router.AddNoPublisherHandler(handlerName, Topic, sub, func(msg *message.Message) error {
		e, err := Decode(msg.Payload)
		if errors.Is(err, ErrUnknownEvent) {
			log.Printf("[EVENTS] %s: dropping message %s: %v", handlerName, msg.UUID, err)
			return nil
		}
		if err != nil {
			log.Printf("[EVENTS] %s: malformed message %s: %v", handlerName, msg.UUID, err)
			return nil
		}
		return h(msg.Context(), e)
	})
}
