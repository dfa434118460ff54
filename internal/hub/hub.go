// Package hub implements the subscription fan-out (C6): a per-tag
// subscriber registry with bounded buffering, ordered delivery,
// backfill, overflow accounting, and cancellation.
//
// Grounded on the teacher's pkg/events.Broker, generalized from a
// single global broadcast channel to a per-tag registry of bounded
// subscriber queues.
package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cuemby/notesd/internal/note"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultQueueDepth is the default bounded FIFO depth per subscriber.
const DefaultQueueDepth = 128

// DefaultMaxSubscriptions is the default cap on concurrent
// subscriptions across all tags (spec §5).
const DefaultMaxSubscriptions = 10000

// Fetcher is the subset of the fetch engine the hub needs to replay a
// backfill window before live delivery begins.
type Fetcher interface {
	Fetch(ctx context.Context, tag uint32, cursor note.Cursor, limit int) ([]*note.Note, note.Cursor, error)
}

// OverflowCounter receives a callback every time a subscriber's queue
// overflows, for C8 stats wiring. May be nil.
type OverflowCounter interface {
	IncSubscriberOverflow()
}

// Hub is the subscriber registry (spec §4.6). The zero value is not
// usable; use New.
type Hub struct {
	mu    sync.RWMutex
	byTag map[uint32]map[uuid.UUID]*subscriber

	queueDepth       int
	maxSubscriptions int
	overflow         OverflowCounter
	log              zerolog.Logger
}

// New creates an empty Hub. queueDepth<=0 uses DefaultQueueDepth;
// maxSubscriptions<=0 uses DefaultMaxSubscriptions.
func New(queueDepth, maxSubscriptions int, overflow OverflowCounter, log zerolog.Logger) *Hub {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	if maxSubscriptions <= 0 {
		maxSubscriptions = DefaultMaxSubscriptions
	}
	return &Hub{
		byTag:            make(map[uint32]map[uuid.UUID]*subscriber),
		queueDepth:       queueDepth,
		maxSubscriptions: maxSubscriptions,
		overflow:         overflow,
		log:              log,
	}
}

type subscriber struct {
	id            uuid.UUID
	tag           uint32
	mu            sync.Mutex
	queue         []*note.Note // bounded ring buffer, drop-oldest on overflow
	notifyCh      chan struct{}
	closed        bool
	overflowCount atomic.Int64

	// delivered is the cursor of the last note handed to this
	// subscriber, across both backfill and live delivery. A note
	// whose (created_at, id) is not strictly greater is a duplicate
	// and is dropped rather than enqueued (see Subscribe's backfill
	// loop: a note landing exactly at the live-start boundary can
	// otherwise be seen by both the backfill read and a concurrent
	// Publish).
	delivered note.Cursor
}

// Subscription is a live handle returned by Subscribe. Notes() yields
// notes in strictly increasing (created_at, id) order; Cancel() tears
// the subscription down and must be called exactly once.
type Subscription struct {
	hub *Hub
	sub *subscriber
}

// Subscribe registers a new subscriber for tag and, if since is
// non-nil, replays stored notes from since up to (but not including)
// the moment registration took effect, then delivers live notes
// after that point. The handshake closes the race window described
// in spec §4.6 step 2: the hub's write lock is held while the live
// start timestamp (lastAssignedMs) is captured, so no ingest between
// backfill and live-registration can be missed or duplicated.
func (h *Hub) Subscribe(ctx context.Context, tag uint32, since *note.Cursor, fetcher Fetcher, lastAssignedMs func() int64) (*Subscription, error) {
	sub := &subscriber{
		id:       uuid.New(),
		tag:      tag,
		notifyCh: make(chan struct{}, 1),
	}

	h.mu.Lock()
	if h.totalLocked() >= h.maxSubscriptions {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: max subscriptions (%d) reached", note.ErrResourceExhausted, h.maxSubscriptions)
	}
	liveStart := int64(0)
	if lastAssignedMs != nil {
		liveStart = lastAssignedMs()
	}
	if h.byTag[tag] == nil {
		h.byTag[tag] = make(map[uuid.UUID]*subscriber)
	}
	h.byTag[tag][sub.id] = sub
	h.mu.Unlock()

	if since != nil && fetcher != nil {
		cursor := *since
		for {
			notes, next, err := fetcher.Fetch(ctx, tag, cursor, DefaultQueueDepth)
			if err != nil {
				h.unregister(tag, sub.id)
				return nil, fmt.Errorf("hub: backfill: %w", err)
			}
			for _, n := range notes {
				if n.CreatedAtMs > liveStart {
					// Past the live-start boundary: this and any
					// later notes are delivered by Publish instead.
					// A note landing exactly at the boundary may be
					// seen by both this loop and a concurrent Publish;
					// enqueue de-dupes by cursor so it is delivered
					// to this subscriber at most once either way.
					break
				}
				h.enqueue(sub, n)
			}
			if len(notes) == 0 || next == cursor || notes[len(notes)-1].CreatedAtMs > liveStart {
				break
			}
			cursor = next
		}
	}

	return &Subscription{hub: h, sub: sub}, nil
}

// Publish delivers n to every subscriber registered for n.Tag. Never
// blocks: a full queue drops its oldest entry (spec §4.6 step 4).
func (h *Hub) Publish(n *note.Note) {
	h.mu.RLock()
	subs := h.byTag[n.Tag]
	// copy the slice of pointers under the read lock so we don't hold
	// it while touching per-subscriber locks
	targets := make([]*subscriber, 0, len(subs))
	for _, s := range subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		h.enqueue(s, n)
	}
}

func (h *Hub) enqueue(s *subscriber, n *note.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	cursor := note.Cursor{CreatedAtMs: n.CreatedAtMs, ID: n.ID}
	if !s.delivered.Less(cursor) {
		return // already delivered to this subscriber (backfill/live race)
	}
	s.delivered = cursor
	if len(s.queue) >= h.queueDepth {
		// drop-oldest: the subscriber always sees the freshest tail.
		s.queue = s.queue[1:]
		s.overflowCount.Add(1)
		if h.overflow != nil {
			h.overflow.IncSubscriberOverflow()
		}
	}
	s.queue = append(s.queue, n)
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Recv blocks until a note is available, ctx is cancelled, or the
// subscription is cancelled, returning (nil, false) in the latter two
// cases.
func (s *Subscription) Recv(ctx context.Context) (*note.Note, bool) {
	for {
		s.sub.mu.Lock()
		if len(s.sub.queue) > 0 {
			n := s.sub.queue[0]
			s.sub.queue = s.sub.queue[1:]
			s.sub.mu.Unlock()
			return n, true
		}
		closed := s.sub.closed
		s.sub.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-ctx.Done():
			return nil, false
		case <-s.sub.notifyCh:
			continue
		}
	}
}

// OverflowCount returns how many notes this subscriber has dropped.
func (s *Subscription) OverflowCount() int64 {
	return s.sub.overflowCount.Load()
}

// Cancel removes the subscriber from the registry and wakes any
// blocked Recv call. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.hub.unregister(s.sub.tag, s.sub.id)

	s.sub.mu.Lock()
	if !s.sub.closed {
		s.sub.closed = true
		select {
		case s.sub.notifyCh <- struct{}{}:
		default:
		}
	}
	s.sub.mu.Unlock()
}

func (h *Hub) unregister(tag uint32, id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.byTag[tag]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(h.byTag, tag)
		}
	}
}

// ActiveSubscriptions returns the total number of live subscribers
// across all tags, for C8 stats.
func (h *Hub) ActiveSubscriptions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalLocked()
}

// totalLocked returns the subscriber count across all tags. Caller
// must hold h.mu (read or write).
func (h *Hub) totalLocked() int {
	total := 0
	for _, set := range h.byTag {
		total += len(set)
	}
	return total
}
