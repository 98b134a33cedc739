package nop

import (
	"context"

	"github.com/memoflow/memoflow/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishMemoEvent validates input and otherwise does nothing.
func (p *Publisher) PublishMemoEvent(_ context.Context, event *eventstream.MemoEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
