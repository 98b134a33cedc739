// Package query provides the read-side façade over the memo store:
// listing, substring search, tag browsing, and counts. Reads bypass the
// lifecycle manager entirely.
package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
)

const (
	// DefaultListLimit bounds List when the caller passes no limit.
	DefaultListLimit = 100

	// DefaultSearchLimit bounds Search and ListByTag when the caller
	// passes no limit.
	DefaultSearchLimit = 50
)

// Facade exposes the read operations backed by a storage driver.
type Facade struct {
	store  storage.Driver
	logger *zap.Logger
}

// NewFacade creates a read façade over the given store.
func NewFacade(store storage.Driver, logger *zap.Logger) *Facade {
	return &Facade{
		store:  store,
		logger: logger,
	}
}

// Get returns a single memo by id.
func (f *Facade) Get(ctx context.Context, id string) (*memo.Memo, error) {
	return f.store.GetMemo(ctx, id)
}

// List returns memos ordered most-recently-updated first.
func (f *Facade) List(ctx context.Context, limit, offset int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return f.store.ListMemos(ctx, limit, offset)
}

// Search matches the query case-insensitively against title, content, and
// tag names. A memo matching on several fields appears once. An empty
// query returns no results rather than everything.
func (f *Facade) Search(ctx context.Context, query string, limit int) ([]*memo.Memo, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	f.logger.Debug("search request",
		zap.String("query", query),
		zap.Int("limit", limit),
	)

	return f.store.SearchMemos(ctx, query, limit)
}

// ListByTag returns memos carrying the exact tag name (no substring
// matching), most recently updated first.
func (f *Facade) ListByTag(ctx context.Context, name string, limit int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return f.store.MemosWithTag(ctx, name, limit)
}

// AllTags returns every tag name known to the store, orphans included.
func (f *Facade) AllTags(ctx context.Context) ([]string, error) {
	return f.store.AllTags(ctx)
}

// Count returns the total number of memos.
func (f *Facade) Count(ctx context.Context) (int, error) {
	return f.store.CountMemos(ctx)
}
