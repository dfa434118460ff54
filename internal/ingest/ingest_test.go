package ingest

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []*note.Note
}

func (f *fakePublisher) Publish(n *note.Note) {
	f.published = append(f.published, n)
}

func header(tag uint32, rest string) []byte {
	buf := make([]byte, 4+len(rest))
	binary.BigEndian.PutUint32(buf[:4], tag)
	copy(buf[4:], rest)
	return buf
}

func newEngine(clock Clock) (*Engine, *fakePublisher, storage.Store) {
	store := storage.NewMemStore()
	pub := &fakePublisher{}
	return New(store, pub, clock, 0, zerolog.Nop()), pub, store
}

func TestIngestAssignsIDAndPersists(t *testing.T) {
	e, pub, store := newEngine(func() int64 { return 1000 })
	ctx := context.Background()

	h := header(7, "hello")
	d := []byte("world")
	id, err := e.Ingest(ctx, h, d, 7)
	require.NoError(t, err)
	require.Equal(t, note.DeriveID(h, d), id)
	require.Len(t, pub.published, 1)

	total, err := store.CountTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestIngestRejectsTagMismatch(t *testing.T) {
	e, _, _ := newEngine(func() int64 { return 1000 })
	_, err := e.Ingest(context.Background(), header(7, "hello"), nil, 8)
	require.ErrorIs(t, err, note.ErrInvalidArgument)
}

func TestIngestRejectsEmptyHeader(t *testing.T) {
	e, _, _ := newEngine(func() int64 { return 1000 })
	_, err := e.Ingest(context.Background(), nil, nil, 0)
	require.ErrorIs(t, err, note.ErrInvalidArgument)
}

func TestIngestRejectsOversizedPayloads(t *testing.T) {
	e, _, _ := newEngine(func() int64 { return 1000 })
	big := make([]byte, note.MaxHeaderBytes+1)
	binary.BigEndian.PutUint32(big[:4], 1)
	_, err := e.Ingest(context.Background(), big, nil, 1)
	require.ErrorIs(t, err, note.ErrInvalidArgument)
}

func TestIngestIsIdempotent(t *testing.T) {
	e, pub, store := newEngine(func() int64 { return 1000 })
	ctx := context.Background()
	h := header(1, "same")
	d := []byte("payload")

	id1, err := e.Ingest(ctx, h, d, 1)
	require.NoError(t, err)
	id2, err := e.Ingest(ctx, h, d, 1)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	total, err := store.CountTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, pub.published, 1, "duplicate ingest must not re-publish")
}

func TestIngestClampsRegressingClock(t *testing.T) {
	wall := int64(1000)
	e, _, _ := newEngine(func() int64 { return wall })
	ctx := context.Background()

	_, err := e.Ingest(ctx, header(1, "a"), nil, 1)
	require.NoError(t, err)
	first := e.LastAssignedMs()

	wall = 500 // clock regresses
	_, err = e.Ingest(ctx, header(1, "b"), nil, 1)
	require.NoError(t, err)
	second := e.LastAssignedMs()

	require.Greater(t, second, first)
}
