// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS memos (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	summary TEXT,
	status TEXT NOT NULL DEFAULT 'draft',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_memos_updated_at ON memos(updated_at);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS memo_tags (
	memo_id TEXT NOT NULL REFERENCES memos(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (memo_id, tag_id)
);
`

// Driver implements storage.Driver on SQLite via github.com/mattn/go-sqlite3.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed memo store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Close closes the underlying database handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

// CreateMemo inserts the memo row and its tag associations in one
// transaction. Tag names are normalized first and resolved via
// get-or-create against the unique name constraint.
func (d *Driver) CreateMemo(ctx context.Context, in memo.CreateInput) (*memo.Memo, error) {
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

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memos (id, title, content, summary, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Content, m.Summary, string(m.Status), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert memo: %w", err)
	}

	if err := attachTags(ctx, tx, m.ID, tags, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	return m, nil
}

// GetMemo retrieves a memo and its tags by id.
func (d *Driver) GetMemo(ctx context.Context, id string) (*memo.Memo, error) {
	m, err := scanMemo(d.db.QueryRowContext(ctx,
		`SELECT id, title, content, summary, status, created_at, updated_at
		 FROM memos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound{ID: id}
		}
		return nil, err
	}

	m.Tags, err = d.memoTags(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// UpdateMemo applies the non-nil fields, replaces the tag set when Tags is
// non-nil, and refreshes updated_at, all in one transaction.
func (d *Driver) UpdateMemo(ctx context.Context, id string, in memo.UpdateInput) (*memo.Memo, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	m, err := scanMemo(tx.QueryRowContext(ctx,
		`SELECT id, title, content, summary, status, created_at, updated_at
		 FROM memos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound{ID: id}
		}
		return nil, err
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
	m.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE memos SET title = ?, content = ?, summary = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		m.Title, m.Content, m.Summary, string(m.Status), m.UpdatedAt, m.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update memo: %w", err)
	}

	if in.Tags != nil {
		tags := memo.NormalizeTags(in.Tags)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memo_tags WHERE memo_id = ?`, m.ID); err != nil {
			return nil, fmt.Errorf("detach tags: %w", err)
		}
		if err := attachTags(ctx, tx, m.ID, tags, m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Tags = tags
	} else {
		m.Tags, err = memoTagsTx(ctx, tx, m.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return m, nil
}

// DeleteMemo removes the memo and its associations. Tag rows are kept.
func (d *Driver) DeleteMemo(ctx context.Context, id string) (bool, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM memo_tags WHERE memo_id = ?`, id); err != nil {
		return false, fmt.Errorf("detach tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete memo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}

	return affected > 0, nil
}

// ListMemos returns memos most-recently-updated first.
func (d *Driver) ListMemos(ctx context.Context, limit, offset int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, content, summary, status, created_at, updated_at
		 FROM memos ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}

	return d.collectMemos(ctx, rows)
}

// CountMemos returns the total number of memos.
func (d *Driver) CountMemos(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count memos: %w", err)
	}
	return n, nil
}

// SearchMemos matches the query as a case-insensitive substring against
// title, content, or any associated tag name. A memo matching on several
// fields appears once.
func (d *Driver) SearchMemos(ctx context.Context, query string, limit int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := d.db.QueryContext(ctx,
		`SELECT m.id, m.title, m.content, m.summary, m.status, m.created_at, m.updated_at
		 FROM memos m
		 WHERE m.id IN (
			SELECT m2.id FROM memos m2
			LEFT JOIN memo_tags mt ON mt.memo_id = m2.id
			LEFT JOIN tags t ON t.id = mt.tag_id
			WHERE LOWER(m2.title) LIKE ? OR LOWER(m2.content) LIKE ? OR LOWER(t.name) LIKE ?
		 )
		 ORDER BY m.updated_at DESC, m.id
		 LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search memos: %w", err)
	}

	return d.collectMemos(ctx, rows)
}

// MemosWithTag returns memos with the exact tag name, most recent first.
func (d *Driver) MemosWithTag(ctx context.Context, name string, limit int) ([]*memo.Memo, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT m.id, m.title, m.content, m.summary, m.status, m.created_at, m.updated_at
		 FROM memos m
		 JOIN memo_tags mt ON mt.memo_id = m.id
		 JOIN tags t ON t.id = mt.tag_id
		 WHERE t.name = ?
		 ORDER BY m.updated_at DESC, m.id
		 LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("memos with tag: %w", err)
	}

	return d.collectMemos(ctx, rows)
}

// AllTags returns every known tag name, orphans included, in lexical order.
func (d *Driver) AllTags(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// attachTags resolves each name via get-or-create and links it to the memo.
// The INSERT .. ON CONFLICT DO NOTHING followed by a lookup makes
// concurrent writers of the same new name converge on a single tag row.
func attachTags(ctx context.Context, tx *sql.Tx, memoID string, tags []string, now time.Time) error {
	for _, name := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tags (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
			name, now); err != nil {
			return fmt.Errorf("create tag %q: %w", name, err)
		}

		var tagID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("lookup tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memo_tags (memo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			memoID, tagID); err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemo(row rowScanner) (*memo.Memo, error) {
	var m memo.Memo
	var status string
	if err := row.Scan(&m.ID, &m.Title, &m.Content, &m.Summary, &status,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Status = memo.Status(status)
	return &m, nil
}

// collectMemos drains rows and loads each memo's tags.
func (d *Driver) collectMemos(ctx context.Context, rows *sql.Rows) ([]*memo.Memo, error) {
	defer rows.Close()

	var memos []*memo.Memo
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range memos {
		tags, err := d.memoTags(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		m.Tags = tags
	}

	return memos, nil
}

func (d *Driver) memoTags(ctx context.Context, memoID string) ([]string, error) {
	return queryTags(ctx, d.db, memoID)
}

func memoTagsTx(ctx context.Context, tx *sql.Tx, memoID string) ([]string, error) {
	return queryTags(ctx, tx, memoID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryTags returns a memo's tag names in association insertion order.
func queryTags(ctx context.Context, q querier, memoID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN memo_tags mt ON mt.tag_id = t.id
		 WHERE mt.memo_id = ?
		 ORDER BY mt.rowid`, memoID)
	if err != nil {
		return nil, fmt.Errorf("memo tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
