// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/search/index.go
// Summary: SQLite FTS5 index over lines evicted from scrollback.
// Usage: Hang Record on a Scrollback's Evicted hook (or call it directly);
//        query with Search. Close flushes pending writes.
// Notes: Writes are batched on a background goroutine so eviction stays
//        cheap on the terminal's hot path.

package search

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Result is one matched history line.
type Result struct {
	Seq       int64 // monotonically increasing eviction sequence
	Timestamp time.Time
	Text      string
}

// Config controls batching and storage for an Index.
type Config struct {
	// Path is the SQLite database file. Parent directories are created.
	Path string

	// BatchSize is how many lines accumulate before a write. Default 100.
	BatchSize int

	// BatchTimeout bounds how long a partial batch waits. Default 2s.
	BatchTimeout time.Duration

	// QueueDepth is the async queue size; lines past it are dropped
	// rather than blocking the terminal. Default 1000.
	QueueDepth int
}

// DefaultConfig returns the standard batching parameters for a database
// at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		BatchSize:    100,
		BatchTimeout: 2 * time.Second,
		QueueDepth:   1000,
	}
}

type pendingLine struct {
	seq  int64
	when time.Time
	text string
}

// Index is a durable, searchable store of scrollback history backed by
// SQLite FTS5 with a trigram tokenizer, so any substring of a line can be
// matched.
type Index struct {
	config Config
	db     *sql.DB

	mu      sync.RWMutex
	nextSeq int64

	queue   chan pendingLine
	stopCh  chan struct{}
	doneCh  chan struct{}
	flushCh chan chan struct{}
}

// schemaVersion increments when the stored layout changes in a way that
// requires rebuilding the FTS table.
const schemaVersion = 1

const baseSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY,
    stamp INTEGER NOT NULL,
    text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_stamp ON history(stamp);
`

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS history_fts USING fts5(
    text,
    content='history',
    content_rowid='seq',
    tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS history_ai AFTER INSERT ON history BEGIN
    INSERT INTO history_fts(rowid, text) VALUES (new.seq, new.text);
END;

CREATE TRIGGER IF NOT EXISTS history_ad AFTER DELETE ON history BEGIN
    INSERT INTO history_fts(history_fts, rowid, text) VALUES ('delete', old.seq, old.text);
END;
`

// Open creates or reopens an index at path with default batching.
func Open(path string) (*Index, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig creates or reopens an index with explicit configuration.
func OpenWithConfig(config Config) (*Index, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.BatchTimeout <= 0 {
		config.BatchTimeout = 2 * time.Second
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = 1000
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	dsn := config.Path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to index database: %w", err)
	}
	if _, err := db.Exec(baseSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	rebuild, err := migrateSchema(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(ftsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create fts schema: %w", err)
	}
	if rebuild {
		if _, err := db.Exec("INSERT INTO history_fts(rowid, text) SELECT seq, text FROM history"); err != nil {
			db.Close()
			return nil, fmt.Errorf("rebuild fts index: %w", err)
		}
	}

	idx := &Index{
		config:  config,
		db:      db,
		queue:   make(chan pendingLine, config.QueueDepth),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		flushCh: make(chan chan struct{}),
	}
	if err := db.QueryRow("SELECT COALESCE(MAX(seq), -1) + 1 FROM history").Scan(&idx.nextSeq); err != nil {
		db.Close()
		return nil, fmt.Errorf("read sequence: %w", err)
	}

	go idx.writer()
	return idx, nil
}

// migrateSchema reconciles the stored schema version, dropping the FTS
// table when it must be rebuilt. Reports whether a rebuild is needed.
func migrateSchema(db *sql.DB) (bool, error) {
	var current int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current); err != nil {
		current = 0
	}
	if current == schemaVersion {
		return false, nil
	}
	drops := []string{
		"DROP TRIGGER IF EXISTS history_ai",
		"DROP TRIGGER IF EXISTS history_ad",
		"DROP TABLE IF EXISTS history_fts",
	}
	for _, stmt := range drops {
		if _, err := db.Exec(stmt); err != nil {
			return false, fmt.Errorf("migrate schema: %w", err)
		}
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return false, fmt.Errorf("store schema version: %w", err)
	}
	return current != 0, nil
}

// Record queues one history line for indexing. Empty lines are skipped.
// When the queue is full the line is dropped; the terminal never blocks
// on the index.
func (idx *Index) Record(text string) {
	if text == "" {
		return
	}
	idx.mu.Lock()
	seq := idx.nextSeq
	idx.nextSeq++
	idx.mu.Unlock()

	select {
	case idx.queue <- pendingLine{seq: seq, when: time.Now(), text: text}:
	default:
	}
}

// writer batches queued lines into transactions.
func (idx *Index) writer() {
	defer close(idx.doneCh)

	batch := make([]pendingLine, 0, idx.config.BatchSize)
	timer := time.NewTimer(idx.config.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) > 0 {
			idx.writeBatch(batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case line := <-idx.queue:
			batch = append(batch, line)
			if len(batch) >= idx.config.BatchSize {
				flush()
				timer.Reset(idx.config.BatchTimeout)
			}
		case <-timer.C:
			flush()
			timer.Reset(idx.config.BatchTimeout)
		case done := <-idx.flushCh:
			for drained := false; !drained; {
				select {
				case line := <-idx.queue:
					batch = append(batch, line)
				default:
					drained = true
				}
			}
			flush()
			close(done)
		case <-idx.stopCh:
			for {
				select {
				case line := <-idx.queue:
					batch = append(batch, line)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (idx *Index) writeBatch(batch []pendingLine) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO history (seq, stamp, text) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return
	}
	defer stmt.Close()
	for _, line := range batch {
		if _, err := stmt.Exec(line.seq, line.when.UnixNano(), line.text); err != nil {
			tx.Rollback()
			return
		}
	}
	tx.Commit()
}

// Search returns up to limit lines containing query as a substring, newest
// first. Queries under three characters cannot form a trigram and fall
// back to a LIKE scan.
func (idx *Index) Search(query string, limit int) ([]Result, error) {
	if query == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if len(query) < 3 {
		pattern := "%" + strings.NewReplacer("%", `\%`, "_", `\_`).Replace(query) + "%"
		rows, err = idx.db.Query(`
			SELECT seq, stamp, text FROM history
			WHERE text LIKE ? ESCAPE '\'
			ORDER BY stamp DESC LIMIT ?`, pattern, limit)
	} else {
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = idx.db.Query(`
			SELECT h.seq, h.stamp, h.text
			FROM history_fts JOIN history h ON h.seq = history_fts.rowid
			WHERE history_fts MATCH ?
			ORDER BY h.stamp DESC LIMIT ?`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var stamp int64
		if err := rows.Scan(&r.Seq, &stamp, &r.Text); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, stamp)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Line returns the stored text for one sequence number.
func (idx *Index) Line(seq int64) (string, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var text string
	err := idx.db.QueryRow("SELECT text FROM history WHERE seq = ?", seq).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Count returns the number of indexed lines.
func (idx *Index) Count() (int64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var n int64
	err := idx.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&n)
	return n, err
}

// Flush blocks until every queued line is written.
func (idx *Index) Flush() {
	done := make(chan struct{})
	select {
	case idx.flushCh <- done:
		<-done
	case <-idx.stopCh:
	}
}

// Close flushes pending writes, stops the writer, and closes the database.
func (idx *Index) Close() error {
	close(idx.stopCh)
	<-idx.doneCh
	return idx.db.Close()
}
