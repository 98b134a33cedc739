// Package lifecycle provides the memo write pipeline: durable persistence
// first, asynchronous enrichment second.
//
// Every create (and every update that changes content) goes through the
// same sequence: the store write completes and the caller gets its result,
// then an enrichment job is queued onto a background worker pool. Workers
// call the enrichment provider with a bounded timeout and merge the
// outcome (enriched summary, union of explicit and derived tags) back
// into the store as a second write. A failed or unavailable enrichment
// leaves the memo exactly as the first write produced it; nothing is
// retried.
//
// Ordering between the merge write and a concurrent user update of the
// same memo is last-write-wins on updated_at; no per-id locking is held,
// and no store lock is held while an enrichment call is in flight.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/enrich"
	"github.com/memoflow/memoflow/pkg/eventstream"
	"github.com/memoflow/memoflow/pkg/eventstream/nop"
	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
	"github.com/memoflow/memoflow/pkg/utils"
)

var (
	defaultNumWorkers    uint = 3
	defaultJobQueueSize  uint = 256
	defaultEnrichTimeout      = 30 * time.Second
)

// job is a unit of enrichment work for the worker pool.
type job struct {
	memoID       string
	content      string
	explicitTags []string
}

// Config is the configuration options for the lifecycle manager.
type Config struct {
	// Store is the storage backend for memos. Required.
	Store storage.Driver

	// Enricher produces summaries and derived tags. Defaults to the
	// disabled enricher when nil.
	Enricher enrich.Enricher

	// Events receives memo lifecycle events. Defaults to the no-op
	// publisher when nil.
	Events eventstream.Publisher

	// NumWorkers is the number of background enrichment workers.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// EnrichTimeout bounds each enrichment provider call. A timeout is
	// treated like any other enrichment failure. Defaults to 30s.
	EnrichTimeout time.Duration

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Manager orchestrates memo writes and their asynchronous enrichment.
type Manager struct {
	config *Config
	queue  chan job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewManager creates a lifecycle manager and starts its worker goroutines.
func NewManager(c *Config) (*Manager, error) {
	if c.Store == nil {
		return nil, errors.New("lifecycle manager requires a storage driver")
	}
	if c.Enricher == nil {
		c.Enricher = enrich.NewDisabled()
	}
	if c.Events == nil {
		c.Events = nop.NewPublisher()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = defaultEnrichTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	m := &Manager{
		config: c,
		queue:  make(chan job, c.QueueSize),
		logger: c.Logger,
	}

	m.wg.Add(int(c.NumWorkers))
	for i := uint(0); i < c.NumWorkers; i++ {
		go m.worker(i)
	}

	return m, nil
}

// CreateMemo validates and durably stores a new memo, then queues its
// enrichment. The returned memo reflects the stored, pre-enrichment state;
// callers observe the merge later by re-reading the memo.
func (m *Manager) CreateMemo(ctx context.Context, in memo.CreateInput) (*memo.Memo, error) {
	stored, err := m.config.Store.CreateMemo(ctx, in)
	if err != nil {
		return nil, err
	}

	m.publish(ctx, &eventstream.MemoEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeMemoStored,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		MemoID:        stored.ID,
		UpdatedAt:     stored.UpdatedAt,
		HasSummary:    stored.Summary != nil,
		Tags:          stored.Tags,
	})

	m.enqueue(job{
		memoID:       stored.ID,
		content:      stored.Content,
		explicitTags: stored.Tags,
	})

	return stored, nil
}

// UpdateMemo applies a partial update. When the update carries content the
// memo is re-enriched against the new content: the old summary will be
// replaced by the merge and the tag set becomes the union of this update's
// explicit tags and the freshly derived ones. Without content, enrichment
// is skipped entirely and a supplied tag list replaces the prior set.
func (m *Manager) UpdateMemo(ctx context.Context, id string, in memo.UpdateInput) (*memo.Memo, error) {
	stored, err := m.config.Store.UpdateMemo(ctx, id, in)
	if err != nil {
		return nil, err
	}

	m.publish(ctx, &eventstream.MemoEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeMemoStored,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		MemoID:        stored.ID,
		UpdatedAt:     stored.UpdatedAt,
		HasSummary:    stored.Summary != nil,
		Tags:          stored.Tags,
	})

	if in.Content != nil {
		m.enqueue(job{
			memoID:       stored.ID,
			content:      *in.Content,
			explicitTags: memo.NormalizeTags(in.Tags),
		})
	}

	return stored, nil
}

// DeleteMemo removes the memo. Enrichment has no delete-time behavior: an
// in-flight job for the id finds the row gone and drops its merge.
func (m *Manager) DeleteMemo(ctx context.Context, id string) (bool, error) {
	existed, err := m.config.Store.DeleteMemo(ctx, id)
	if err != nil {
		return false, err
	}

	if existed {
		m.publish(ctx, &eventstream.MemoEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeMemoDeleted,
			EventID:       uuid.NewString(),
			EmittedAt:     time.Now().UTC(),
			MemoID:        id,
		})
	}

	return existed, nil
}

// enqueue submits an enrichment job. Returns true if queued, false if the
// queue is full, in which case the job is dropped and the memo simply
// stays unenriched.
func (m *Manager) enqueue(j job) bool {
	select {
	case m.queue <- j:
		m.logger.Debug("enrichment job queued",
			zap.String("memo_id", j.memoID),
			zap.String("content_preview", utils.Truncate(j.content, 48)),
		)
		return true
	default:
		m.logger.Error("enrichment job dropped, queue full",
			zap.String("memo_id", j.memoID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (m *Manager) Close() {
	close(m.queue)
	m.wg.Wait()
}

// worker is the inner worker goroutine that continuously pulls jobs off
// the queue.
func (m *Manager) worker(id uint) {
	defer m.wg.Done()
	m.logger.Debug("enrichment worker started", zap.Uint("worker_id", id))

	for j := range m.queue {
		m.processJob(j)
	}

	m.logger.Debug("enrichment worker stopped", zap.Uint("worker_id", id))
}

// processJob runs enrichment for one memo and merges the result. All
// failure paths leave the stored memo untouched.
func (m *Manager) processJob(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.EnrichTimeout)
	result, err := m.config.Enricher.Process(ctx, j.content)
	cancel()

	if err != nil {
		if errors.Is(err, enrich.ErrUnavailable) {
			m.logger.Debug("enrichment disabled, memo keeps stored state",
				zap.String("memo_id", j.memoID),
			)
		} else {
			m.logger.Warn("enrichment failed, memo keeps stored state",
				zap.String("memo_id", j.memoID),
				zap.Error(err),
			)
		}
		return
	}

	// The union replaces the prior tag set even when it is empty; a nil
	// Tags would be read by the store as "leave tags untouched".
	tags := memo.UnionTags(j.explicitTags, result.Tags)
	if tags == nil {
		tags = []string{}
	}

	update := memo.UpdateInput{
		Summary: result.Summary,
		Tags:    tags,
	}

	// The enrichment ctx may already be expired; the merge write gets its
	// own bounded context.
	writeCtx, cancelWrite := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelWrite()

	merged, err := m.config.Store.UpdateMemo(writeCtx, j.memoID, update)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			m.logger.Debug("memo deleted before enrichment merge, dropping result",
				zap.String("memo_id", j.memoID),
			)
			return
		}
		m.logger.Error("enrichment merge write failed",
			zap.String("memo_id", j.memoID),
			zap.Error(err),
		)
		return
	}

	m.logger.Info("memo enriched",
		zap.String("memo_id", merged.ID),
		zap.Bool("has_summary", merged.Summary != nil),
		zap.Int("tag_count", len(merged.Tags)),
	)

	m.publish(writeCtx, &eventstream.MemoEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeMemoEnriched,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		MemoID:        merged.ID,
		UpdatedAt:     merged.UpdatedAt,
		HasSummary:    merged.Summary != nil,
		Tags:          merged.Tags,
		Enriched:      true,
	})
}

// publish sends a lifecycle event best-effort; a failed publish is logged
// and never fails the memo operation.
func (m *Manager) publish(ctx context.Context, event *eventstream.MemoEvent) {
	if err := m.config.Events.PublishMemoEvent(ctx, event); err != nil {
		m.logger.Warn("failed to publish memo event",
			zap.String("event_type", event.EventType),
			zap.String("memo_id", event.MemoID),
			zap.Error(err),
		)
	}
}
