package fetch

import (
	"context"
	"testing"

	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/stretchr/testify/require"
)

func mkNote(tag uint32, createdAtMs int64, seed byte) *note.Note {
	n := &note.Note{Tag: tag, Header: []byte{seed}, Details: []byte("d"), CreatedAtMs: createdAtMs}
	n.ID = note.DeriveID(n.Header, n.Details)
	n.ID[31] = seed
	return n
}

func TestFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	e := New(store, 0)

	n := mkNote(7, 100, 1)
	_, err := store.Insert(ctx, n)
	require.NoError(t, err)

	notes, next, err := e.Fetch(ctx, 7, note.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, n.ID, notes[0].ID)
	require.Equal(t, note.Cursor{CreatedAtMs: 100, ID: n.ID}, next)

	notes, next2, err := e.Fetch(ctx, 7, next, 10)
	require.NoError(t, err)
	require.Empty(t, notes)
	require.Equal(t, next, next2)
}

func TestFetchTagIsolation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	e := New(store, 0)

	a := mkNote(1, 100, 1)
	b := mkNote(2, 100, 2)
	_, _ = store.Insert(ctx, a)
	_, _ = store.Insert(ctx, b)

	notes, _, err := e.Fetch(ctx, 1, note.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, a.ID, notes[0].ID)
}

func TestFetchDefaultsAndClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	e := New(store, 0)

	for i := 0; i < storage.MaxPage+50; i++ {
		n := mkNote(1, int64(i+1), byte(i%256))
		n.ID[30] = byte(i / 256) // keep ids unique past 256 notes
		_, err := store.Insert(ctx, n)
		require.NoError(t, err)
	}

	notes, _, err := e.Fetch(ctx, 1, note.Cursor{}, 0)
	require.NoError(t, err)
	require.Len(t, notes, DefaultLimit, "limit<=0 should default to DefaultLimit")

	notes, _, err = e.Fetch(ctx, 1, note.Cursor{}, storage.MaxPage+100)
	require.NoError(t, err)
	require.Len(t, notes, storage.MaxPage, "over-large limit should clamp to MaxPage")
}

func TestFetchHonorsConfiguredMaxPage(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	e := New(store, 10)

	for i := 0; i < storage.MaxPage; i++ {
		n := mkNote(1, int64(i+1), byte(i%256))
		n.ID[30] = byte(i / 256)
		_, err := store.Insert(ctx, n)
		require.NoError(t, err)
	}

	notes, _, err := e.Fetch(ctx, 1, note.Cursor{}, 0)
	require.NoError(t, err)
	require.Len(t, notes, 10, "a configured max-page below storage.MaxPage must still be honored")

	notes, _, err = e.Fetch(ctx, 1, note.Cursor{}, 1000)
	require.NoError(t, err)
	require.Len(t, notes, 10, "an over-large requested limit clamps to the configured max-page, not storage.MaxPage")
}
