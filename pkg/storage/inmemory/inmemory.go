// Package inmemory provides a map-backed storage driver used by tests and
// local development. It honors the same contract as the SQL drivers,
// including orphan tag retention and updated_at ordering.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
)

// Driver implements storage.Driver using in-process data structures.
type Driver struct {
	// mu guards memos and tags.
	mu sync.RWMutex

	// memos maps memo id to its record.
	memos map[string]*memo.Memo

	// tags is the set of every tag name ever attached; names persist as
	// orphans after their last memo detaches.
	tags map[string]struct{}
}

// NewDriver creates a new in-memory memo store.
func NewDriver() *Driver {
	return &Driver{
		memos: make(map[string]*memo.Memo),
		tags:  make(map[string]struct{}),
	}
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// CreateMemo stores a new memo with a generated id and both timestamps set
// to now.
func (d *Driver) CreateMemo(_ context.Context, in memo.CreateInput) (*memo.Memo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tags := memo.NormalizeTags(in.Tags)
	now := time.Now().UTC()
	m := &memo.Memo{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Summary:   in.Summary,
		Tags:      tags,
		Status:    memo.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range tags {
		d.tags[t] = struct{}{}
	}
	d.memos[m.ID] = m

	return cloneMemo(m), nil
}

// GetMemo retrieves a memo by id.
func (d *Driver) GetMemo(_ context.Context, id string) (*memo.Memo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.memos[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}

	return cloneMemo(m), nil
}

// UpdateMemo applies the non-nil fields and refreshes updated_at.
func (d *Driver) UpdateMemo(_ context.Context, id string, in memo.UpdateInput) (*memo.Memo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.memos[id]
	if !ok {
		return nil, storage.ErrNotFound{ID: id}
	}

	if in.Title != nil {
		m.Title = *in.Title
	}
	if in.Content != nil {
		m.Content = *in.Content
	}
	if in.Summary != nil {
		m.Summary = in.Summary
	}
	if in.Status != nil {
		m.Status = *in.Status
	}
	if in.Tags != nil {
		tags := memo.NormalizeTags(in.Tags)
		for _, t := range tags {
			d.tags[t] = struct{}{}
		}
		m.Tags = tags
	}
	m.UpdatedAt = time.Now().UTC()

	return cloneMemo(m), nil
}

// DeleteMemo removes the memo; its tag names stay indexed as orphans.
func (d *Driver) DeleteMemo(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.memos[id]; !ok {
		return false, nil
	}

	delete(d.memos, id)
	return true, nil
}

// ListMemos returns memos most-recently-updated first.
func (d *Driver) ListMemos(_ context.Context, limit, offset int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	memos := d.sortedMemosLocked()
	if offset >= len(memos) {
		return nil, nil
	}
	memos = memos[offset:]
	if len(memos) > limit {
		memos = memos[:limit]
	}

	return memos, nil
}

// CountMemos returns the total number of memos.
func (d *Driver) CountMemos(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.memos), nil
}

// SearchMemos matches the query as a case-insensitive substring against
// title, content, or any tag name.
func (d *Driver) SearchMemos(_ context.Context, query string, limit int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 50
	}
	q := strings.ToLower(query)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*memo.Memo
	for _, m := range d.sortedMemosLocked() {
		if len(out) == limit {
			break
		}
		if matches(m, q) {
			out = append(out, m)
		}
	}

	return out, nil
}

// MemosWithTag returns memos carrying the exact tag name.
func (d *Driver) MemosWithTag(_ context.Context, name string, limit int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 50
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*memo.Memo
	for _, m := range d.sortedMemosLocked() {
		if len(out) == limit {
			break
		}
		if m.HasTag(name) {
			out = append(out, m)
		}
	}

	return out, nil
}

// AllTags returns every known tag name, orphans included, in lexical order.
func (d *Driver) AllTags(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.tags))
	for name := range d.tags {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// sortedMemosLocked returns cloned memos ordered by updated_at descending
// with id as tiebreak. Callers must hold at least a read lock.
func (d *Driver) sortedMemosLocked() []*memo.Memo {
	memos := make([]*memo.Memo, 0, len(d.memos))
	for _, m := range d.memos {
		memos = append(memos, cloneMemo(m))
	}

	sort.Slice(memos, func(i, j int) bool {
		if memos[i].UpdatedAt.Equal(memos[j].UpdatedAt) {
			return memos[i].ID < memos[j].ID
		}
		return memos[i].UpdatedAt.After(memos[j].UpdatedAt)
	})

	return memos
}

func matches(m *memo.Memo, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(m.Title), loweredQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Content), loweredQuery) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(strings.ToLower(t), loweredQuery) {
			return true
		}
	}
	return false
}

// cloneMemo returns a copy so callers cannot mutate internal state.
func cloneMemo(m *memo.Memo) *memo.Memo {
	out := *m
	if m.Summary != nil {
		s := *m.Summary
		out.Summary = &s
	}
	out.Tags = append([]string(nil), m.Tags...)
	return &out
}
