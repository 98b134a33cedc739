// Package storage
package storage

import (
	"context"

	"github.com/memoflow/memoflow/pkg/memo"
)

// Driver defines the interface for persisting and querying memos and their
// tag associations in a storage backend. The Driver is the single source
// of truth for id generation and created_at/updated_at semantics: every
// mutation refreshes updated_at, and operations touching both the memo row
// and its tag associations are atomic: a midway failure leaves the store
// in its pre-call state.
type Driver interface {
	// CreateMemo persists a new memo, generating its id and setting both
	// timestamps to now. Tag names are resolved via get-or-create inside
	// the same transaction.
	CreateMemo(ctx context.Context, in memo.CreateInput) (*memo.Memo, error)

	// GetMemo retrieves a memo by id. Returns ErrNotFound if absent.
	GetMemo(ctx context.Context, id string) (*memo.Memo, error)

	// UpdateMemo applies the non-nil fields of the update and refreshes
	// updated_at. A non-nil Tags replaces the existing tag set. An update
	// with no fields is a touch. Returns ErrNotFound if the id is unknown;
	// on failure nothing is partially applied.
	UpdateMemo(ctx context.Context, id string, in memo.UpdateInput) (*memo.Memo, error)

	// DeleteMemo removes the memo and detaches its tag associations.
	// Returns whether a row existed; deleting twice returns false the
	// second time, never an error. Tag rows themselves are kept (orphan
	// tags stay indexed).
	DeleteMemo(ctx context.Context, id string) (bool, error)

	// ListMemos returns memos ordered by updated_at descending. Pagination
	// is not stable across concurrent writes: a memo updated between calls
	// can shift pages.
	ListMemos(ctx context.Context, limit, offset int) ([]*memo.Memo, error)

	// CountMemos returns the total number of memos.
	CountMemos(ctx context.Context) (int, error)

	// SearchMemos returns memos whose title, content, or any tag name
	// contains the query as a case-insensitive substring, deduplicated and
	// ordered by updated_at descending.
	SearchMemos(ctx context.Context, query string, limit int) ([]*memo.Memo, error)

	// MemosWithTag returns memos carrying the exact tag name, ordered by
	// updated_at descending.
	MemosWithTag(ctx context.Context, name string, limit int) ([]*memo.Memo, error)

	// AllTags returns every tag name known to the store, including orphans,
	// in lexical order.
	AllTags(ctx context.Context) ([]string, error)

	// Close closes the store and releases any resources.
	Close() error
}
