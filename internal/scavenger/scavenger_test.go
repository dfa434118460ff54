package scavenger

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeObserver struct {
	deleted int
	calls   int
}

func (f *fakeObserver) ObserveSweep(deleted int, _ time.Time) {
	f.deleted += deleted
	f.calls++
}

func TestSweepDeletesExpiredNotes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()

	old := &note.Note{Tag: 1, Header: []byte{1}, Details: nil, CreatedAtMs: time.Now().Add(-2 * time.Hour).UnixMilli()}
	old.ID = note.DeriveID(old.Header, old.Details)
	fresh := &note.Note{Tag: 1, Header: []byte{2}, Details: nil, CreatedAtMs: time.Now().UnixMilli()}
	fresh.ID = note.DeriveID(fresh.Header, fresh.Details)

	_, err := store.Insert(ctx, old)
	require.NoError(t, err)
	_, err = store.Insert(ctx, fresh)
	require.NoError(t, err)

	obs := &fakeObserver{}
	s := New(store, time.Hour, 10*time.Millisecond, obs, zerolog.Nop())
	s.sweep(ctx)

	require.Equal(t, 1, obs.deleted)
	total, err := store.CountTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestStartStopIsClean(t *testing.T) {
	store := storage.NewMemStore()
	s := New(store, time.Hour, 5*time.Millisecond, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	s.Stop() // must return without hanging
}
