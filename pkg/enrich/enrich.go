// Package enrich wraps an external text-understanding capability behind a
// small interface: summarize a memo's content and extract tags from it.
//
// Enrichment is an optional enhancement, never a correctness dependency.
// Providers can fail per call (EnrichmentError) or be absent entirely
// (ErrUnavailable, the permanent disabled mode); callers substitute
// fallback values instead of propagating either to the write path.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MaxTags caps the number of tags returned by ExtractTags. Responses with
// more are truncated here, before reaching the lifecycle manager.
const MaxTags = 5

// Enricher produces a summary and derived tags for memo content.
type Enricher interface {
	// Summarize condenses the content into a short bullet summary.
	Summarize(ctx context.Context, content string) (string, error)

	// ExtractTags derives up to MaxTags tag names from the content.
	ExtractTags(ctx context.Context, content string) ([]string, error)

	// Process composes Summarize and ExtractTags. A failed sub-call falls
	// back (nil summary, no tags) rather than aborting; Process errors only
	// when nothing could be produced at all.
	Process(ctx context.Context, content string) (*Result, error)
}

// Result holds the outcome of a Process call. Summary is nil when
// summarization failed or was skipped.
type Result struct {
	Summary *string
	Tags    []string
}

// Completer is the minimal text-completion capability a provider must
// offer. Implementations live in the openai and ollama subpackages.
type Completer interface {
	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name for logging.
	Name() string
}

const summarizePrompt = `You are a professional summarizer.
Summarize the following user note into 2-3 bullet points, each of at most 15 words.
Text:
"""%s"""`

const extractTagsPrompt = `You are a metadata extractor.
From the note below, list up to 5 relevant tags, one per line.
Note:
"""%s"""`

// Service implements Enricher on top of a Completer.
type Service struct {
	completer Completer
	logger    *zap.Logger
}

// NewService creates an enrichment service backed by the given completer.
func NewService(completer Completer, logger *zap.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger,
	}
}

// Summarize condenses the content into bullet points.
func (s *Service) Summarize(ctx context.Context, content string) (string, error) {
	resp, err := s.completer.Complete(ctx, fmt.Sprintf(summarizePrompt, content))
	if err != nil {
		return "", EnrichmentError{Op: "summarize", Err: err}
	}

	return strings.TrimSpace(resp), nil
}

// ExtractTags derives tag names from the content, capped at MaxTags.
func (s *Service) ExtractTags(ctx context.Context, content string) ([]string, error) {
	resp, err := s.completer.Complete(ctx, fmt.Sprintf(extractTagsPrompt, content))
	if err != nil {
		return nil, EnrichmentError{Op: "extract-tags", Err: err}
	}

	return ParseTags(resp), nil
}

// Process runs both enrichment calls with per-field fallback. Partial
// enrichment is fine; an error is returned only when both calls failed,
// which tells the caller there is nothing to merge.
func (s *Service) Process(ctx context.Context, content string) (*Result, error) {
	result := &Result{}

	summary, sumErr := s.Summarize(ctx, content)
	if sumErr != nil {
		s.logger.Warn("summarize failed, falling back to no summary",
			zap.String("provider", s.completer.Name()),
			zap.Error(sumErr),
		)
	} else {
		result.Summary = &summary
	}

	tags, tagErr := s.ExtractTags(ctx, content)
	if tagErr != nil {
		s.logger.Warn("tag extraction failed, falling back to no tags",
			zap.String("provider", s.completer.Name()),
			zap.Error(tagErr),
		)
	} else {
		result.Tags = tags
	}

	if sumErr != nil && tagErr != nil {
		return nil, sumErr
	}

	return result, nil
}

// ParseTags converts a model response into tag names: one tag per line,
// with "-" and "*" bullet markers stripped. A single comma-separated line
// is split on commas. At most MaxTags names are returned.
func ParseTags(resp string) []string {
	lines := strings.Split(strings.TrimSpace(resp), "\n")
	if len(lines) == 1 && strings.Contains(lines[0], ",") {
		lines = strings.Split(lines[0], ",")
	}

	var tags []string
	for _, line := range lines {
		tag := strings.TrimSpace(line)
		tag = strings.TrimLeft(tag, "*-")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}

	return tags
}
