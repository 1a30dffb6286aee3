// Package messaging owns the in-process pub/sub and the router that drives
// every subscriber: domain event listeners and background job workers.
package messaging

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Broker bundles the go-channel pub/sub with its router
type Broker struct {
	pubSub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

// NewBroker creates the pub/sub and a router with panic recovery installed
func NewBroker(debug bool) (*Broker, error) {
	logger := watermill.NewStdLogger(debug, false)

	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(middleware.Recoverer)

	return &Broker{pubSub: pubSub, router: router, logger: logger}, nil
}

// Publisher is where events and jobs are published
func (b *Broker) Publisher() message.Publisher { return b.pubSub }

// Subscriber is what router handlers consume from
func (b *Broker) Subscriber() message.Subscriber { return b.pubSub }

// Router is used to register handlers before Start
func (b *Broker) Router() *message.Router { return b.router }

// Start runs the router in the background and waits until it is ready.
// Handlers must be registered before calling Start.
func (b *Broker) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := b.router.Run(ctx); err != nil {
			log.Printf("[MESSAGING] router stopped: %v", err)
			errCh <- err
		}
	}()

	select {
	case <-b.router.Running():
		log.Println("[MESSAGING] router running")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the router, waiting for in-flight handlers, then the pub/sub
func (b *Broker) Close() error {
	routerErr := b.router.Close()
	if err := b.pubSub.Close(); err != nil {
		return err
	}
	return routerErr
}
