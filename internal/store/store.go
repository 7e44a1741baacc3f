// Package store keeps a searchable transcript of the session.
//
// Every line the router adds to a window is recorded with its stream
// and spans. Lines are buffered in memory and written in batches inside
// a single transaction; Search and Recent flush first so a query always
// sees everything recorded so far. The table is pruned to a maximum
// number of lines after each flush.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/strnglp/ProfanityFE/internal/span"
	"github.com/strnglp/ProfanityFE/pkg/jsonutil"
	"github.com/strnglp/ProfanityFE/pkg/timeutil"
)

//go:embed schema.sql
var schemaFS embed.FS

const (
	// DefaultBatchSize is the number of buffered lines that triggers a write.
	DefaultBatchSize = 64
	// DefaultMaxLines bounds the transcript table.
	DefaultMaxLines = 100000
)

// Store is the transcript persistence interface.
type Store interface {
	// Record buffers a line. It satisfies stream.Recorder.
	Record(stream string, line span.Line)
	// Flush writes buffered lines.
	Flush() error
	// Search returns lines whose text contains query, newest first.
	Search(query string, limit int) ([]*Entry, error)
	// Recent returns the newest lines of one stream, newest first.
	Recent(stream string, limit int) ([]*Entry, error)
	// Count returns the number of stored lines.
	Count() (int, error)
	Close() error
}

// Entry is one stored line.
type Entry struct {
	LineID    int64       `json:"line_id"`
	Stream    string      `json:"stream"`
	Text      string      `json:"text"`
	Spans     []span.Span `json:"spans,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Time returns the entry's timestamp.
func (e *Entry) Time() time.Time { return timeutil.FromNano(e.Timestamp) }

// Option configures a DBService.
type Option func(*DBService)

// WithBatchSize sets how many lines are buffered before a write.
func WithBatchSize(n int) Option {
	return func(s *DBService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithMaxLines sets the prune limit. Zero disables pruning.
func WithMaxLines(n int) Option {
	return func(s *DBService) { s.maxLines = n }
}

// WithClock replaces the clock used to stamp recorded lines.
func WithClock(now func() time.Time) Option {
	return func(s *DBService) { s.now = now }
}

// DBService implements Store on SQLite.
type DBService struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	pending   []*Entry
	batchSize int
	maxLines  int
	now       func() time.Time

	stmtInsert *sql.Stmt
	stmtPrune  *sql.Stmt
	stmtSearch *sql.Stmt
	stmtRecent *sql.Stmt
	stmtCount  *sql.Stmt
}

var _ Store = (*DBService)(nil)

// NewDBService opens the transcript database at path, creating the
// schema if needed. Use ":memory:" for a throwaway transcript.
func NewDBService(path string, opts ...Option) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-16000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening transcript at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:        db,
		path:      path,
		batchSize: DefaultBatchSize,
		maxLines:  DefaultMaxLines,
		now:       time.Now,
	}
	for _, o := range opts {
		o(svc)
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}
	return svc, nil
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsert, err = s.db.Prepare(`
		INSERT INTO lines (stream, text, spans, timestamp) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing Insert: %w", err)
	}

	s.stmtPrune, err = s.db.Prepare(`
		DELETE FROM lines WHERE line_id <= (SELECT MAX(line_id) FROM lines) - ?
	`)
	if err != nil {
		return fmt.Errorf("preparing Prune: %w", err)
	}

	s.stmtSearch, err = s.db.Prepare(`
		SELECT line_id, stream, text, spans, timestamp FROM lines
		WHERE text LIKE ? ESCAPE '\'
		ORDER BY line_id DESC LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("preparing Search: %w", err)
	}

	s.stmtRecent, err = s.db.Prepare(`
		SELECT line_id, stream, text, spans, timestamp FROM lines
		WHERE stream = ?
		ORDER BY line_id DESC LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("preparing Recent: %w", err)
	}

	s.stmtCount, err = s.db.Prepare(`SELECT COUNT(*) FROM lines`)
	if err != nil {
		return fmt.Errorf("preparing Count: %w", err)
	}
	return nil
}

// Record buffers a line for the next write. Empty lines are skipped.
// Reaching the batch size writes the buffer; a failed write is logged.
func (s *DBService) Record(stream string, line span.Line) {
	if line.Text == "" {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, &Entry{
		Stream:    stream,
		Text:      line.Text,
		Spans:     span.Clone(line.Spans),
		Timestamp: timeutil.ToNano(s.now()),
	})
	full := len(s.pending) >= s.batchSize
	s.mu.Unlock()

	if full {
		if err := s.Flush(); err != nil {
			log.Printf("[WARN] Transcript write failed: %v", err)
		}
	}
}

// Flush writes all buffered lines in one transaction and prunes the
// table. On failure the buffer is kept for the next attempt.
func (s *DBService) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *DBService) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(s.stmtInsert)
	defer stmt.Close()

	for _, e := range s.pending {
		var spans *string
		if len(e.Spans) > 0 {
			v := jsonutil.MustMarshal(e.Spans)
			spans = &v
		}
		if _, err := stmt.Exec(e.Stream, e.Text, spans, e.Timestamp); err != nil {
			return fmt.Errorf("inserting line: %w", err)
		}
	}

	if s.maxLines > 0 {
		if _, err := tx.Stmt(s.stmtPrune).Exec(s.maxLines); err != nil {
			return fmt.Errorf("pruning transcript: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Search returns up to limit lines containing query, case-insensitively
// for ASCII, newest first.
func (s *DBService) Search(query string, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.stmtSearch.Query("%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching transcript: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Recent returns up to limit lines of stream, newest first. The main
// window's stream is "".
func (s *DBService) Recent(stream string, limit int) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.stmtRecent.Query(stream, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent lines: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of stored lines, including buffered ones.
func (s *DBService) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.stmtCount.QueryRow().Scan(&n); err != nil {
		return 0, fmt.Errorf("counting lines: %w", err)
	}
	return n + len(s.pending), nil
}

// Close writes buffered lines and closes the database.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flushErr := s.flushLocked()
	for _, stmt := range []*sql.Stmt{s.stmtInsert, s.stmtPrune, s.stmtSearch, s.stmtRecent, s.stmtCount} {
		if stmt != nil {
			stmt.Close()
		}
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing transcript: %w", err)
	}
	return flushErr
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var out []*Entry
	for rows.Next() {
		var e Entry
		var spans sql.NullString
		if err := rows.Scan(&e.LineID, &e.Stream, &e.Text, &spans, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		if spans.Valid {
			decoded, err := jsonutil.Decode[[]span.Span](spans.String)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", e.LineID, err)
			}
			e.Spans = decoded
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
