package storage

import (
	"context"
	"testing"

	"github.com/cuemby/notesd/internal/note"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]Store{
		"mem":  NewMemStore(),
		"bolt": bolt,
	}
}

func mkNote(tag uint32, createdAtMs int64, seed byte) *note.Note {
	n := &note.Note{
		Tag:         tag,
		Header:      []byte{seed},
		Details:     []byte("details"),
		CreatedAtMs: createdAtMs,
	}
	n.ID = note.DeriveID(n.Header, n.Details)
	n.ID[31] = seed // disambiguate notes that would otherwise collide
	return n
}

func TestInsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			n := mkNote(1, 100, 1)

			inserted, err := store.Insert(ctx, n)
			require.NoError(t, err)
			require.True(t, inserted)

			inserted, err = store.Insert(ctx, n)
			require.NoError(t, err)
			require.False(t, inserted)

			total, err := store.CountTotal(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(1), total)
		})
	}
}

func TestQueryByTagOrderingAndCursor(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := mkNote(1, 100, 1)
			b := mkNote(1, 100, 2) // same timestamp, tie-broken by id
			c := mkNote(1, 200, 3)
			other := mkNote(2, 150, 4)

			for _, n := range []*note.Note{a, b, c, other} {
				_, err := store.Insert(ctx, n)
				require.NoError(t, err)
			}

			page, err := store.QueryByTag(ctx, 1, note.Cursor{}, 10)
			require.NoError(t, err)
			require.Len(t, page, 3)
			for i := 0; i < len(page)-1; i++ {
				cur := note.Cursor{CreatedAtMs: page[i].CreatedAtMs, ID: page[i].ID}
				next := note.Cursor{CreatedAtMs: page[i+1].CreatedAtMs, ID: page[i+1].ID}
				require.True(t, cur.Less(next))
			}

			// paginate one at a time and verify no duplicates/gaps
			var cursor note.Cursor
			var seen []*note.Note
			for {
				p, err := store.QueryByTag(ctx, 1, cursor, 1)
				require.NoError(t, err)
				if len(p) == 0 {
					break
				}
				seen = append(seen, p...)
				cursor = note.Cursor{CreatedAtMs: p[len(p)-1].CreatedAtMs, ID: p[len(p)-1].ID}
			}
			require.Len(t, seen, 3)
		})
	}
}

func TestQueryByTagRejectsOutOfRangeLimit(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.QueryByTag(ctx, 1, note.Cursor{}, 0)
			require.Error(t, err)
			_, err = store.QueryByTag(ctx, 1, note.Cursor{}, MaxPage+1)
			require.Error(t, err)
		})
	}
}

func TestDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			old := mkNote(1, 100, 1)
			fresh := mkNote(1, 9_000_000, 2)
			_, err := store.Insert(ctx, old)
			require.NoError(t, err)
			_, err = store.Insert(ctx, fresh)
			require.NoError(t, err)

			deleted, err := store.DeleteOlderThan(ctx, 100)
			require.NoError(t, err)
			require.Equal(t, 1, deleted)

			page, err := store.QueryByTag(ctx, 1, note.Cursor{}, 10)
			require.NoError(t, err)
			require.Len(t, page, 1)
			require.Equal(t, fresh.ID, page[0].ID)
		})
	}
}

func TestLastAssignedMsTracksHighWaterMark(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Insert(ctx, mkNote(1, 100, 1))
			require.NoError(t, err)
			_, err = store.Insert(ctx, mkNote(1, 50, 2))
			require.NoError(t, err)

			ms, err := store.LastAssignedMs(ctx)
			require.NoError(t, err)
			require.Equal(t, int64(100), ms)
		})
	}
}
