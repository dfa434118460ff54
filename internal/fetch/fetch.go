// Package fetch implements the paged tag-query engine (C5).
package fetch

import (
	"context"
	"fmt"

	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
)

// DefaultLimit is used when a FetchNotes request does not specify one.
const DefaultLimit = 64

// Engine implements spec §4.5.
type Engine struct {
	store   storage.Store
	maxPage int
}

// New creates a fetch engine over the given store. maxPage<=0 uses
// storage.MaxPage; operators configure it via --max-page (spec §4.2,
// §6) so it is a parameter here rather than a compile-time constant.
func New(store storage.Store, maxPage int) *Engine {
	if maxPage <= 0 {
		maxPage = storage.MaxPage
	}
	return &Engine{store: store, maxPage: maxPage}
}

// Fetch returns notes for tag with created_at (or the composite
// cursor) strictly after `cursor`, clamped to `limit` entries, plus
// the cursor to pass to the next call. If no notes are returned, the
// next cursor equals the input cursor (spec §4.5).
func (e *Engine) Fetch(ctx context.Context, tag uint32, cursor note.Cursor, limit int) ([]*note.Note, note.Cursor, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > e.maxPage {
		limit = e.maxPage
	}

	notes, err := e.store.QueryByTag(ctx, tag, cursor, limit)
	if err != nil {
		return nil, cursor, fmt.Errorf("fetch: %w", err)
	}

	next := cursor
	if len(notes) > 0 {
		last := notes[len(notes)-1]
		next = note.Cursor{CreatedAtMs: last.CreatedAtMs, ID: last.ID}
	}
	return notes, next, nil
}
