// Package storage defines the persistence contract a note transport
// backend must satisfy, and ships two conforming implementations.
package storage

import (
	"context"

	"github.com/cuemby/notesd/internal/note"
)

// MaxPage is the default ceiling on FetchNotes/QueryByTag page size,
// used when an operator configures no explicit --max-page (spec
// §4.2, §6). The fetch engine, not the store, is responsible for
// clamping a caller's limit to the configured ceiling; the store only
// rejects a non-positive limit.
const MaxPage = 256

// Store is the minimum contract the storage backend must satisfy
// (spec §4.2). Implementations are expected to be durable before
// returning success from Insert and DeleteOlderThan.
type Store interface {
	// Insert performs an atomic insert-if-absent keyed by n.ID.
	// Returns inserted=false if a record with that ID already exists.
	Insert(ctx context.Context, n *note.Note) (inserted bool, err error)

	// QueryByTag returns notes with the given tag and a cursor
	// strictly greater than `since`, ordered by (created_at ASC, id
	// ASC), at most limit records. limit must be >= 1; callers are
	// responsible for clamping it to their configured page ceiling.
	QueryByTag(ctx context.Context, tag uint32, since note.Cursor, limit int) ([]*note.Note, error)

	// DeleteOlderThan removes all records with created_at <= cutoffMs
	// and returns the number of records removed.
	DeleteOlderThan(ctx context.Context, cutoffMs int64) (int, error)

	// CountByTag returns the number of stored notes for tag.
	CountByTag(ctx context.Context, tag uint32) (int64, error)

	// CountTotal returns the total number of stored notes.
	CountTotal(ctx context.Context) (int64, error)

	// LastAssignedMs returns the highest created_at_ms ever durably
	// assigned, or 0 if no note was ever inserted. The value is kept
	// when notes are later deleted. Used to restore the
	// ingestion clock's monotonic high-water mark across restarts.
	LastAssignedMs(ctx context.Context) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}
