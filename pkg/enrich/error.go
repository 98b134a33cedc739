package enrich

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates no enrichment provider is configured. This is a
// permanent mode, not a transient failure: memos stay fully creatable and
// updatable without summaries or derived tags.
var ErrUnavailable = errors.New("enrichment unavailable: no provider configured")

// EnrichmentError wraps a failed call to the enrichment provider.
type EnrichmentError struct {
	Op  string
	Err error
}

func (e EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment %s failed: %v", e.Op, e.Err)
}

func (e EnrichmentError) Unwrap() error {
	return e.Err
}
