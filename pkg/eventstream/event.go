package eventstream

import (
	"time"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeMemoStored is emitted after a memo's base record is durably
	// written (the STORED point of the lifecycle).
	EventTypeMemoStored = "memoflow.memo.stored"

	// EventTypeMemoEnriched is emitted after enrichment results are merged
	// back into the memo (the MERGED point of the lifecycle).
	EventTypeMemoEnriched = "memoflow.memo.enriched"

	// EventTypeMemoDeleted is emitted after a memo is removed.
	EventTypeMemoDeleted = "memoflow.memo.deleted"
)

// MemoEvent is a transport-neutral event payload for a memo lifecycle
// transition. Consumers can poll the memo by ID for its current state; the
// event carries enough to decide whether to bother.
type MemoEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	MemoID    string    `json:"memo_id"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`

	// HasSummary and Tags describe the memo after the transition. For
	// stored events these reflect the pre-enrichment state.
	HasSummary bool     `json:"has_summary"`
	Tags       []string `json:"tags,omitempty"`

	// Enriched is true on enriched events, whose payload reflects the
	// post-merge state. Stored and deleted events leave it unset; a run
	// that skips enrichment publishes no event at all.
	Enriched bool `json:"enriched,omitempty"`
}
