package note

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(tag uint32, rest string) []byte {
	buf := make([]byte, 4+len(rest))
	binary.BigEndian.PutUint32(buf[:4], tag)
	copy(buf[4:], rest)
	return buf
}

func TestDeriveIDIsDeterministic(t *testing.T) {
	h := header(7, "hello")
	d := []byte("details")

	id1 := DeriveID(h, d)
	id2 := DeriveID(h, d)

	assert.Equal(t, id1, id2)
}

func TestDeriveIDChangesOnAnyBitFlip(t *testing.T) {
	h := header(7, "hello")
	d := []byte("details")

	base := DeriveID(h, d)

	flipped := append([]byte(nil), d...)
	flipped[0] ^= 0x01
	other := DeriveID(h, flipped)

	assert.NotEqual(t, base, other)
}

func TestExtractTagReadsLeadingFourBytes(t *testing.T) {
	h := header(42, "payload")

	tag, ok := ExtractTag(h)
	require.True(t, ok)
	assert.Equal(t, uint32(42), tag)
}

func TestExtractTagRejectsShortHeader(t *testing.T) {
	_, ok := ExtractTag([]byte{0x01, 0x02})
	assert.False(t, ok)
}

func TestCursorOrdering(t *testing.T) {
	a := Cursor{CreatedAtMs: 10, ID: ID{0x01}}
	b := Cursor{CreatedAtMs: 10, ID: ID{0x02}}
	c := Cursor{CreatedAtMs: 11, ID: ID{0x00}}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
}

func TestZeroCursorIsFromTheBeginning(t *testing.T) {
	var c Cursor
	assert.True(t, c.IsZero())
}
