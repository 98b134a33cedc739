package enrich

import "context"

// Disabled is the Enricher used when no provider is configured (e.g. no
// API key at startup). Every call reports ErrUnavailable; the lifecycle
// manager treats that as "skip enrichment" rather than a failure.
type Disabled struct{}

// NewDisabled creates the disabled-mode enricher.
func NewDisabled() Disabled {
	return Disabled{}
}

// Summarize always reports ErrUnavailable.
func (Disabled) Summarize(_ context.Context, _ string) (string, error) {
	return "", ErrUnavailable
}

// ExtractTags always reports ErrUnavailable.
func (Disabled) ExtractTags(_ context.Context, _ string) ([]string, error) {
	return nil, ErrUnavailable
}

// Process always reports ErrUnavailable.
func (Disabled) Process(_ context.Context, _ string) (*Result, error) {
	return nil, ErrUnavailable
}
