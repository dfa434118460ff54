// Package ingest implements the note ingestion engine (C4): request
// validation, monotonic timestamp assignment, durable persistence,
// and publication to live subscribers.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/rs/zerolog"
)

// Publisher is the subset of the subscription hub the ingestion
// engine needs: fire-and-forget delivery to live subscribers. It must
// never block the caller on a slow subscriber (spec §4.6 step 3).
type Publisher interface {
	Publish(n *note.Note)
}

// Clock returns the current wall-clock time in milliseconds since the
// Unix epoch. Exists so tests can inject a controllable clock.
type Clock func() int64

func WallClock() int64 { return time.Now().UnixMilli() }

// Engine implements spec §4.4.
type Engine struct {
	store     storage.Store
	publisher Publisher
	clock     Clock
	log       zerolog.Logger

	mu             sync.Mutex // protects lastAssignedMs; O(1) work only, never across I/O (spec §5)
	lastAssignedMs int64
}

// New creates an ingestion engine. initialLastAssignedMs should come
// from the store's persisted high-water mark so restarts never
// regress the monotonic clock (spec §9 "Global state").
func New(store storage.Store, publisher Publisher, clock Clock, initialLastAssignedMs int64, log zerolog.Logger) *Engine {
	if clock == nil {
		clock = WallClock
	}
	return &Engine{
		store:          store,
		publisher:      publisher,
		clock:          clock,
		log:            log,
		lastAssignedMs: initialLastAssignedMs,
	}
}

// nextTimestamp assigns and records the timestamp for one ingest,
// enforcing invariant I2: created_at is nondecreasing in insertion
// order, clamped to max(wall, last_assigned) + 1 when the wall clock
// regresses or ties the previous assignment.
func (e *Engine) nextTimestamp() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	assigned := now
	if assigned <= e.lastAssignedMs {
		assigned = e.lastAssignedMs + 1
	}
	e.lastAssignedMs = assigned
	return assigned
}

// LastAssignedMs returns the most recently assigned timestamp under
// the same lock used by nextTimestamp, for the subscription hub's
// registration handshake (spec §4.6 step 2).
func (e *Engine) LastAssignedMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastAssignedMs
}

// Ingest implements spec §4.4 steps 1-7.
func (e *Engine) Ingest(ctx context.Context, header, details []byte, declaredTag uint32) (note.ID, error) {
	if len(header) == 0 {
		return note.ID{}, fmt.Errorf("%w: header must be non-empty", note.ErrInvalidArgument)
	}
	if len(header) > note.MaxHeaderBytes {
		return note.ID{}, fmt.Errorf("%w: header exceeds %d bytes", note.ErrInvalidArgument, note.MaxHeaderBytes)
	}
	if len(details) > note.MaxDetailsBytes {
		return note.ID{}, fmt.Errorf("%w: details exceeds %d bytes", note.ErrInvalidArgument, note.MaxDetailsBytes)
	}

	tag, ok := note.ExtractTag(header)
	if !ok || tag != declaredTag {
		return note.ID{}, fmt.Errorf("%w: declared tag does not match header (I3)", note.ErrInvalidArgument)
	}

	id := note.DeriveID(header, details)
	createdAtMs := e.nextTimestamp()

	n := &note.Note{
		ID:          id,
		Tag:         tag,
		Header:      header,
		Details:     details,
		CreatedAtMs: createdAtMs,
	}

	inserted, err := e.store.Insert(ctx, n)
	if err != nil {
		return note.ID{}, fmt.Errorf("%w: %v", note.ErrUnavailable, err)
	}
	if !inserted {
		// Idempotent re-submission (I1): the id already exists. We
		// still return success with the existing id; we do not
		// publish again since the original ingest already did.
		e.log.Debug().Str("id", fmt.Sprintf("%x", id)).Msg("duplicate ingest, returning existing id")
		return id, nil
	}

	// Publish failures must never fail the ingestion (spec §4.4 step 6).
	if e.publisher != nil {
		e.publisher.Publish(n)
	}

	return id, nil
}
