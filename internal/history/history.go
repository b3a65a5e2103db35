/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps the expressions a user has plotted in a small
// embedded SQLite database (WAL mode, pure-Go driver). The database is a
// convenience cache: deleting it loses nothing but the recent list.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "funcplot/internal/log"
	"funcplot/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "history.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2

	// DefaultLimit caps the number of kept entries.
	DefaultLimit = 200

	// tsLayout is fixed width so stored timestamps sort as text.
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

// ErrEmptyExpr is returned by Add for blank input.
var ErrEmptyExpr = errors.New("empty expression")

// Entry is one remembered expression.
type Entry struct {
	ID       int64
	Text     string
	Uses     int
	LastUsed time.Time
}

// Store is an open history database.
type Store struct {
	db    *sql.DB
	path  string
	limit int
}

// DefaultPath returns <user config dir>/funcplot/history.sqlite.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "funcplot", FileName), nil
}

// Open creates or opens the history database at path, enables WAL mode and
// brings the schema up to date.
func Open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("history"), "open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create history dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	// Convert to forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	// migrations first: an old entries table lacks the indexed columns
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("history ready")
	return &Store{db: db, path: path, limit: DefaultLimit}, nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string { return s.path }

// SetLimit changes how many entries Add keeps; n <= 0 restores the default.
func (s *Store) SetLimit(n int) {
	if n <= 0 {
		n = DefaultLimit
	}
	s.limit = n
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add records text as used now. A repeated expression moves to the front
// and its use count grows. The oldest entries beyond the limit are dropped.
func (s *Store) Add(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyExpr
	}
	now := time.Now().UTC().Format(tsLayout)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO entries(text, uses, created_at, last_used) VALUES(?, 1, ?, ?)
		ON CONFLICT(text) DO UPDATE SET uses = uses + 1, last_used = excluded.last_used`, text, now, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id NOT IN (
		SELECT id FROM entries ORDER BY last_used DESC, id DESC LIMIT ?)`, s.limit); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("trim entries: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add: %w", err)
	}
	applog.WithOperation(applog.WithComponent("history"), "add").Debug("expression recorded", slog.String("expr", text))
	return nil
}

// Recent returns up to n entries, most recently used first. n <= 0 means all.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, uses, last_used FROM entries
		ORDER BY last_used DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.Text, &e.Uses, &ts); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.LastUsed, _ = time.Parse(tsLayout, ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// Texts is Recent reduced to the expression strings.
func (s *Store) Texts(ctx context.Context, n int) ([]string, error) {
	es, err := s.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Text
	}
	return out, nil
}

// Remove forgets a single expression. Removing an unknown one is not an error.
func (s *Store) Remove(ctx context.Context, text string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE text = ?`, strings.TrimSpace(text)); err != nil {
		return fmt.Errorf("remove entry: %w", err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	applog.WithOperation(applog.WithComponent("history"), "clear").Info("history cleared", slog.String("path", s.path))
	return nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the current entries table on a fresh database and
// the last_used index on every database.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			text        TEXT NOT NULL UNIQUE,
			uses        INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			last_used   TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_last_used ON entries(last_used);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create entries: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
// Schema 1 stored only (id, text, created_at).
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE entries ADD COLUMN uses INTEGER NOT NULL DEFAULT 1;`,
				`ALTER TABLE entries ADD COLUMN last_used TEXT NOT NULL DEFAULT '';`,
				`UPDATE entries SET last_used = created_at WHERE last_used = '';`,
				`CREATE INDEX IF NOT EXISTS idx_entries_last_used ON entries(last_used);`,
			}
		}
		if err := migrate(ctx, db, next, stmts); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB, next int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", next, err)
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d stmt failed: %w", next, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d update version: %w", next, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d commit: %w", next, err)
	}
	return nil
}
