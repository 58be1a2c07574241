package events

import "context"

// NoopProducer discards events. Used when kafka is disabled in config.
type NoopProducer struct{}

// NewNoopProducer returns a producer that drops everything.
func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (*NoopProducer) Produce(ctx context.Context, event *StreamEvent) error {
	return nil
}

func (*NoopProducer) Close() error {
	return nil
}
