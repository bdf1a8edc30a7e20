// Package history stores snapshots of saved buffers in SQLite.
//
// Each :w in the playground appends a snapshot. Listing goes through a
// read-through cache that is invalidated on every save.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/modal/internal/cachemanager"
	"github.com/zjrosen/modal/internal/log"
	"github.com/zjrosen/modal/internal/tracing"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// DefaultCacheTTL is how long a listing stays cached.
const DefaultCacheTTL = time.Minute

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	line_count INTEGER NOT NULL,
	added      INTEGER NOT NULL DEFAULT 0,
	removed    INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots (name, created_at);
`

const snapshotColumns = `id, name, content, line_count, added, removed, created_at`

// Snapshot is one saved version of a buffer.
type Snapshot struct {
	ID        string
	Name      string
	Content   string
	Lines     int
	Stats     Stats
	CreatedAt time.Time
}

type listQuery struct {
	limit int
}

// Store is the snapshot database.
type Store struct {
	db       *sql.DB
	cacheTTL time.Duration
	list     *cachemanager.ReadThroughCache[string, []Snapshot, listQuery]
	now      func() time.Time
	tracer   trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithCacheTTL sets how long listings are cached. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheTTL = ttl
	}
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer records a span for every store call.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// Open opens or creates the database at path, creating parent directories.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	log.Debug(log.CatDB, "Opening history database", "path", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatDB, "Failed to create schema", err, "path", path)
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	s := &Store{db: db, cacheTTL: DefaultCacheTTL, now: time.Now, tracer: tracing.Noop()}
	for _, opt := range opts {
		opt(s)
	}
	cache := cachemanager.NewInMemoryCacheManager[string, []Snapshot]("history", s.cacheTTL, cachemanager.DefaultCleanupInterval)
	s.list = cachemanager.NewReadThroughCache[string, []Snapshot, listQuery](cache, s.queryList, s.cacheTTL <= 0)

	log.Info(log.CatDB, "History database ready", "path", path)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends a snapshot of content under name, with line statistics
// against the previous snapshot of the same name.
func (s *Store) Save(ctx context.Context, name, content string) (_ Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixHistory+"save",
		trace.WithAttributes(attribute.String(tracing.AttrSnapshotName, name)))
	defer func() { tracing.End(span, err) }()

	var previous string
	prev, err := s.Latest(ctx, name)
	switch {
	case err == nil:
		previous = prev.Content
	case !errors.Is(err, ErrNotFound):
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		Lines:     strings.Count(content, "\n") + 1,
		Stats:     DiffStats(previous, content),
		CreatedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (`+snapshotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.Content, snap.Lines, snap.Stats.Added, snap.Stats.Removed, snap.CreatedAt.UnixMilli(),
	)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to save snapshot", err, "name", name)
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := s.list.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatCache, "Failed to invalidate history cache", err)
	}

	span.SetAttributes(
		attribute.String(tracing.AttrSnapshotID, snap.ID),
		attribute.Int(tracing.AttrBufferLines, snap.Lines),
		attribute.String(tracing.AttrSnapshotStats, snap.Stats.String()),
	)
	log.Debug(log.CatDB, "Snapshot saved", "id", snap.ID, "name", name, "stats", snap.Stats)
	return snap, nil
}

// Latest returns the newest snapshot saved under name.
func (s *Store) Latest(ctx context.Context, name string) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixHistory+"latest",
		trace.WithAttributes(attribute.String(tracing.AttrSnapshotName, name)))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		name,
	)
	snap, err := scanOne(row, name)
	endLookup(span, snap, err)
	return snap, err
}

// Get returns the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixHistory+"get",
		trace.WithAttributes(attribute.String(tracing.AttrSnapshotID, id)))
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	snap, err := scanOne(row, id)
	endLookup(span, snap, err)
	return snap, err
}

// endLookup ends a single-row lookup span. A miss is an answer, not a
// failure.
func endLookup(span trace.Span, snap Snapshot, err error) {
	if errors.Is(err, ErrNotFound) {
		span.SetAttributes(attribute.Int(tracing.AttrQueryRows, 0))
		err = nil
	} else if err == nil {
		span.SetAttributes(attribute.Int(tracing.AttrQueryRows, 1), attribute.String(tracing.AttrSnapshotID, snap.ID))
	}
	tracing.End(span, err)
}

// List returns up to limit snapshots, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) (_ []Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanPrefixHistory+"list",
		trace.WithAttributes(attribute.Int(tracing.AttrQueryLimit, limit)))
	defer func() { tracing.End(span, err) }()

	key := fmt.Sprintf("list:%d", limit)
	snaps, err := s.list.Get(ctx, key, listQuery{limit: limit}, s.cacheTTL)
	span.SetAttributes(attribute.Int(tracing.AttrQueryRows, len(snaps)))
	return snaps, err
}

func (s *Store) queryList(ctx context.Context, q listQuery) ([]Snapshot, error) {
	limit := q.limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		log.ErrorErr(log.CatDB, "List query failed", err, "limit", q.limit)
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return out, nil
}

func scanOne(row *sql.Row, key string) (Snapshot, error) {
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("find snapshot: %w", err)
	}
	return snap, nil
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (Snapshot, error) {
	var (
		snap    Snapshot
		created int64
	)
	err := scanner.Scan(&snap.ID, &snap.Name, &snap.Content, &snap.Lines, &snap.Stats.Added, &snap.Stats.Removed, &created)
	if err != nil {
		return Snapshot{}, err
	}
	snap.CreatedAt = time.UnixMilli(created)
	return snap, nil
}
