// Package wire holds the message schema of the note transport RPC
// surface (spec §6), field order stable. These are plain Go structs
// rather than protoc-generated types — see internal/rpc/codec.go for why.
package wire

// Cursor names a position in a per-tag ordered note stream.
// {0,0} means "from the beginning".
type Cursor struct {
	CreatedAtMs int64  `json:"created_at_ms"`
	ID          []byte `json:"id"`
}

// Note is the wire representation of a transported note. On SendNote,
// ID and CreatedAtMs in the request are ignored; the server assigns
// them.
type Note struct {
	ID          []byte `json:"id"`
	Tag         uint32 `json:"tag"`
	Header      []byte `json:"header"`
	Details     []byte `json:"details"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// SendNoteRequest carries a single note to ingest.
type SendNoteRequest struct {
	Note *Note `json:"note"`
}

// SendNoteResponse carries the server-assigned identifier.
type SendNoteResponse struct {
	ID []byte `json:"id"`
}

// FetchNotesRequest requests a page of notes for tag, cursored and
// limited per spec §4.5.
type FetchNotesRequest struct {
	Tag    uint32  `json:"tag"`
	Cursor *Cursor `json:"cursor"`
	Limit  uint32  `json:"limit"`
}

// FetchNotesResponse carries one page plus the cursor to resume from.
type FetchNotesResponse struct {
	Notes      []*Note `json:"notes"`
	NextCursor *Cursor `json:"next_cursor"`
}

// StreamNotesRequest opens a live subscription for tag, optionally
// backfilling from Since and ending after IdleTimeoutMs of silence.
type StreamNotesRequest struct {
	Tag           uint32  `json:"tag"`
	Since         *Cursor `json:"since,omitempty"`
	IdleTimeoutMs int64   `json:"idle_timeout_ms,omitempty"`
}

// StatsRequest takes no parameters.
type StatsRequest struct{}

// StatsResponse is the point-in-time snapshot from the stats
// collector (C8).
type StatsResponse struct {
	TotalNotes          int64 `json:"total_notes"`
	UniqueTags          int64 `json:"unique_tags"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	OverflowCount       int64 `json:"overflow_count"`
	IngestRequests      int64 `json:"ingest_requests"`
	FetchRequests       int64 `json:"fetch_requests"`
	LastSweepMs         int64 `json:"last_sweep_ms"`
	LastSweepCount      int64 `json:"last_sweep_count"`
}
