package rpc

import (
	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/rpc/wire"
)

func cursorFromWire(c *wire.Cursor) note.Cursor {
	if c == nil {
		return note.Cursor{}
	}
	var out note.Cursor
	out.CreatedAtMs = c.CreatedAtMs
	copy(out.ID[:], c.ID)
	return out
}

func cursorToWire(c note.Cursor) *wire.Cursor {
	return &wire.Cursor{
		CreatedAtMs: c.CreatedAtMs,
		ID:          append([]byte(nil), c.ID[:]...),
	}
}

func noteToWire(n *note.Note) *wire.Note {
	return &wire.Note{
		ID:          append([]byte(nil), n.ID[:]...),
		Tag:         n.Tag,
		Header:      n.Header,
		Details:     n.Details,
		CreatedAtMs: n.CreatedAtMs,
	}
}
