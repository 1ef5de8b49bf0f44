// Package storage defines the persistence interface for knowledge entries.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("not found")

// SnapshotInfo describes the entry set currently stored.
type SnapshotInfo struct {
	Version  string
	SourceID string
	LoadedAt time.Time
	Count    int64
}

// Storage persists the current entry set. The set is replaced as a whole;
// every replacement gets a new version.
type Storage interface {
	// ReplaceEntries swaps the stored set for entries and returns the new version.
	ReplaceEntries(ctx context.Context, sourceID string, entries []models.KnowledgeEntry) (string, error)
	GetEntry(ctx context.Context, id string) (*models.KnowledgeEntry, error)
	ListEntries(ctx context.Context, offset, limit int) ([]*models.KnowledgeEntry, error)
	CountEntries(ctx context.Context) (int64, error)

	// LoadSnapshot returns every entry in store order with the current version.
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
	Info(ctx context.Context) (SnapshotInfo, error)

	Close() error
}
