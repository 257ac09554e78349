package broker

import (
	"context"
)

// Publisher sends one message. key is used for partitioning where the
// transport supports it.
type Publisher interface {
	Publish(ctx context.Context, key string, message []byte) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (NopPublisher) Close() error                                  { return nil }
