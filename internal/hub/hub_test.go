package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/notesd/internal/fetch"
	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func mkNote(tag uint32, createdAtMs int64, seed byte) *note.Note {
	n := &note.Note{Tag: tag, Header: []byte{seed}, Details: []byte("d"), CreatedAtMs: createdAtMs}
	n.ID = note.DeriveID(n.Header, n.Details)
	n.ID[31] = seed
	return n
}

func TestPublishDeliversInOrderToLiveSubscriber(t *testing.T) {
	h := New(DefaultQueueDepth, 0, nil, zerolog.Nop())
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, 5, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	defer sub.Cancel()

	a := mkNote(5, 100, 1)
	b := mkNote(5, 200, 2)
	h.Publish(a)
	h.Publish(b)

	got1, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, a.ID, got1.ID)

	got2, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, b.ID, got2.ID)
}

func TestTagIsolationInHub(t *testing.T) {
	h := New(DefaultQueueDepth, 0, nil, zerolog.Nop())
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, 1, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	defer sub.Cancel()

	h.Publish(mkNote(2, 100, 1))

	recvCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, ok := sub.Recv(recvCtx)
	require.False(t, ok, "subscriber for tag 1 must not see tag 2 notes")
}

func TestBackfillThenLive(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	fe := fetch.New(store, 0)

	a := mkNote(5, 100, 1)
	b := mkNote(5, 200, 2)
	_, err := store.Insert(ctx, a)
	require.NoError(t, err)
	_, err = store.Insert(ctx, b)
	require.NoError(t, err)

	h := New(DefaultQueueDepth, 0, nil, zerolog.Nop())
	since := note.Cursor{}
	sub, err := h.Subscribe(ctx, 5, &since, fe, func() int64 { return 200 })
	require.NoError(t, err)
	defer sub.Cancel()

	got1, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, a.ID, got1.ID)
	got2, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, b.ID, got2.ID)

	c := mkNote(5, 300, 3)
	h.Publish(c)
	got3, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, c.ID, got3.ID, "note ingested after subscribe must arrive as the next element")
}

func TestOverflowDropsOldest(t *testing.T) {
	h := New(2, 0, nil, zerolog.Nop())
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, 9, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	defer sub.Cancel()

	var notes []*note.Note
	for i := 0; i < 10; i++ {
		n := mkNote(9, int64(i+1), byte(i))
		notes = append(notes, n)
		h.Publish(n)
	}

	// queue depth 2: only the two newest survive
	got1, ok := sub.Recv(ctx)
	require.True(t, ok)
	got2, ok := sub.Recv(ctx)
	require.True(t, ok)
	require.Equal(t, notes[8].ID, got1.ID)
	require.Equal(t, notes[9].ID, got2.ID)
	require.Equal(t, int64(8), sub.OverflowCount())
}

func TestCancelStopsDelivery(t *testing.T) {
	h := New(DefaultQueueDepth, 0, nil, zerolog.Nop())
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, 1, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	require.Equal(t, 1, h.ActiveSubscriptions())

	sub.Cancel()
	require.Equal(t, 0, h.ActiveSubscriptions())

	_, ok := sub.Recv(ctx)
	require.False(t, ok)
}

func TestSubscribeRejectsOverMaxSubscriptions(t *testing.T) {
	h := New(DefaultQueueDepth, 2, nil, zerolog.Nop())
	ctx := context.Background()

	sub1, err := h.Subscribe(ctx, 1, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	defer sub1.Cancel()

	sub2, err := h.Subscribe(ctx, 2, nil, nil, func() int64 { return 0 })
	require.NoError(t, err)
	defer sub2.Cancel()

	_, err = h.Subscribe(ctx, 3, nil, nil, func() int64 { return 0 })
	require.Error(t, err)
	require.True(t, errors.Is(err, note.ErrResourceExhausted))

	sub1.Cancel()
	sub3, err := h.Subscribe(ctx, 3, nil, nil, func() int64 { return 0 })
	require.NoError(t, err, "cancelling a subscription should free its slot")
	defer sub3.Cancel()
}
