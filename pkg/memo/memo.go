// Package memo defines the core memo and tag types shared by the storage
// drivers, the lifecycle manager, and the API layer.
package memo

import (
	"strings"
	"time"
)

// MaxTitleLength is the maximum number of characters allowed in a title.
const MaxTitleLength = 200

// Status is the editorial state of a memo. The core never transitions
// status automatically; it only changes on an explicit update.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Memo is a titled note with an optional AI-derived summary and a set of
// tags. Tags are stored in insertion order for display; identity is
// order-irrelevant.
type Memo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	Tags      []string  `json:"tags"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTag reports whether the memo carries the exact tag name.
func (m *Memo) HasTag(name string) bool {
	for _, t := range m.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// CreateInput carries the caller-supplied fields for a new memo.
type CreateInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"-"`
}

// UpdateInput is a partial update. Nil fields are left untouched. A
// non-nil Tags replaces the existing tag set wholesale; the union with
// enrichment-derived tags happens in the lifecycle manager, not here.
type UpdateInput struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"-"`
	Status  *Status  `json:"status"`
}

// Empty reports whether the update carries no caller-visible field at
// all. An empty update is still applied as a "touch" that refreshes
// updated_at.
func (u UpdateInput) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Tags == nil &&
		u.Summary == nil && u.Status == nil
}

// NormalizeTags trims surrounding whitespace, drops names that are empty
// after trimming, and removes duplicates while preserving first-seen
// order. Comparison is case-sensitive: "Work" and "work" stay distinct.
func NormalizeTags(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// UnionTags merges two tag lists with set semantics, preserving the order
// of first appearance (a's tags first). Both inputs are normalized.
func UnionTags(a, b []string) []string {
	merged := make([]string, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return NormalizeTags(merged)
}
