package eventstream

import "context"

// Publisher publishes memo lifecycle events to an event stream backend.
type Publisher interface {
	PublishMemoEvent(ctx context.Context, event *MemoEvent) error
	Close() error
}
