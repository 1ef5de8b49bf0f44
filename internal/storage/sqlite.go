// Package storage provides SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entries_position ON entries(position);

	CREATE TABLE IF NOT EXISTS snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version TEXT NOT NULL,
		source_id TEXT NOT NULL,
		loaded_at TIMESTAMP NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceEntries deletes every stored entry and inserts entries in one transaction.
// Entry order is kept as the store order.
func (s *SQLiteStorage) ReplaceEntries(ctx context.Context, sourceID string, entries []models.KnowledgeEntry) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return "", fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, position, question, answer, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	now := time.Now()
	for i, e := range entries {
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Question, e.Answer, string(metadataJSON), now); err != nil {
			return "", fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	version := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot (id, version, source_id, loaded_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version,
		 source_id = excluded.source_id, loaded_at = excluded.loaded_at`,
		version, sourceID, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record snapshot version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return version, nil
}

// GetEntry returns an entry by ID.
func (s *SQLiteStorage) GetEntry(ctx context.Context, id string) (*models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	var metadataJSON sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, question, answer, metadata FROM entries WHERE id = ?`, id,
	).Scan(&entry.ID, &entry.Question, &entry.Answer, &metadataJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := decodeMetadata(metadataJSON, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns entries in store order with offset and limit.
func (s *SQLiteStorage) ListEntries(ctx context.Context, offset, limit int) ([]*models.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, metadata FROM entries
		 ORDER BY position LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.KnowledgeEntry
	for rows.Next() {
		var entry models.KnowledgeEntry
		var metadataJSON sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &metadataJSON); err != nil {
			return nil, err
		}
		_ = decodeMetadata(metadataJSON, &entry)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// CountEntries returns the total number of entries.
func (s *SQLiteStorage) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count)
	return count, err
}

// LoadSnapshot reads every entry and the current version in one read transaction,
// so the version always describes the returned entries.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer tx.Rollback()

	var snap models.Snapshot
	err = tx.QueryRowContext(ctx, `SELECT version, loaded_at FROM snapshot WHERE id = 1`).
		Scan(&snap.Version, &snap.LoadedAt)
	if err == sql.ErrNoRows {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return models.Snapshot{}, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, question, answer, metadata FROM entries ORDER BY position`)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.KnowledgeEntry
		var metadataJSON sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &metadataJSON); err != nil {
			return models.Snapshot{}, err
		}
		_ = decodeMetadata(metadataJSON, &entry)
		snap.Entries = append(snap.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Info returns the current version, source and entry count.
// A store that was never loaded returns a zero SnapshotInfo.
func (s *SQLiteStorage) Info(ctx context.Context) (SnapshotInfo, error) {
	var info SnapshotInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT version, source_id, loaded_at FROM snapshot WHERE id = 1`,
	).Scan(&info.Version, &info.SourceID, &info.LoadedAt)
	if err != nil && err != sql.ErrNoRows {
		return SnapshotInfo{}, err
	}
	count, err := s.CountEntries(ctx)
	if err != nil {
		return SnapshotInfo{}, err
	}
	info.Count = count
	return info, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func decodeMetadata(raw sql.NullString, entry *models.KnowledgeEntry) error {
	if !raw.Valid || raw.String == "" || raw.String == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.String), &entry.Metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return nil
}
