package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/cuemby/notesd/internal/fetch"
	"github.com/cuemby/notesd/internal/hub"
	"github.com/cuemby/notesd/internal/ingest"
	"github.com/cuemby/notesd/internal/note"
	"github.com/cuemby/notesd/internal/rpc/wire"
	"github.com/cuemby/notesd/internal/stats"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server implements NotesTransportServer by wiring together the
// ingestion engine, the fetch engine, the subscription hub and the
// stats collector. Grounded in the teacher's pkg/api/server.go, which
// plays the same "thin adapter over domain engines" role for warren's
// cluster RPCs.
type Server struct {
	UnimplementedNotesTransportServer

	ingest *ingest.Engine
	fetch  *fetch.Engine
	hub    *hub.Hub
	stats  *stats.Collector
	log    zerolog.Logger
}

// NewServer builds a Server from already-constructed engines.
func NewServer(ingestEngine *ingest.Engine, fetchEngine *fetch.Engine, h *hub.Hub, collector *stats.Collector, log zerolog.Logger) *Server {
	return &Server{
		ingest: ingestEngine,
		fetch:  fetchEngine,
		hub:    h,
		stats:  collector,
		log:    log,
	}
}

func (s *Server) SendNote(ctx context.Context, req *wire.SendNoteRequest) (*wire.SendNoteResponse, error) {
	if req.Note == nil {
		return nil, status.Error(codes.InvalidArgument, "note is required")
	}
	id, err := s.ingest.Ingest(ctx, req.Note.Header, req.Note.Details, req.Note.Tag)
	if err != nil {
		return nil, mapError(err)
	}
	s.stats.ObserveIngest(req.Note.Tag)
	return &wire.SendNoteResponse{ID: append([]byte(nil), id[:]...)}, nil
}

func (s *Server) FetchNotes(ctx context.Context, req *wire.FetchNotesRequest) (*wire.FetchNotesResponse, error) {
	cursor := cursorFromWire(req.Cursor)
	notes, next, err := s.fetch.Fetch(ctx, req.Tag, cursor, int(req.Limit))
	if err != nil {
		return nil, mapError(err)
	}
	s.stats.ObserveFetch()

	out := make([]*wire.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteToWire(n))
	}
	return &wire.FetchNotesResponse{
		Notes:      out,
		NextCursor: cursorToWire(next),
	}, nil
}

func (s *Server) StreamNotes(req *wire.StreamNotesRequest, stream NotesTransport_StreamNotesServer) error {
	ctx := stream.Context()

	// spec §5: idle timeout defaults to none (stream stays open until
	// cancelled) unless the caller opts into one.
	var idleTimeout time.Duration
	if req.IdleTimeoutMs > 0 {
		idleTimeout = time.Duration(req.IdleTimeoutMs) * time.Millisecond
	}

	var since *note.Cursor
	if req.Since != nil {
		c := cursorFromWire(req.Since)
		since = &c
	}

	sub, err := s.hub.Subscribe(ctx, req.Tag, since, s.fetch, s.ingest.LastAssignedMs)
	if err != nil {
		return mapError(err)
	}
	defer func() {
		sub.Cancel()
		s.stats.SetActiveSubscriptions(s.hub.ActiveSubscriptions())
	}()
	s.stats.SetActiveSubscriptions(s.hub.ActiveSubscriptions())

	for {
		var n *note.Note
		var ok bool
		if idleTimeout > 0 {
			recvCtx, cancel := context.WithTimeout(ctx, idleTimeout)
			n, ok = sub.Recv(recvCtx)
			cancel()
		} else {
			n, ok = sub.Recv(ctx)
		}
		if !ok {
			if ctx.Err() != nil {
				return mapError(ctx.Err())
			}
			// Idle timeout with no cancellation: a clean end of stream,
			// not an error (spec §4.6 "idle timeout closes the stream").
			return nil
		}
		if err := stream.Send(noteToWire(n)); err != nil {
			return err
		}
	}
}

func (s *Server) Stats(ctx context.Context, _ *wire.StatsRequest) (*wire.StatsResponse, error) {
	snap := s.stats.Snapshot()
	return &wire.StatsResponse{
		TotalNotes:          snap.TotalNotes,
		UniqueTags:          snap.UniqueTags,
		ActiveSubscriptions: snap.ActiveSubscriptions,
		OverflowCount:       snap.OverflowCount,
		IngestRequests:      snap.IngestRequests,
		FetchRequests:       snap.FetchRequests,
		LastSweepMs:         snap.LastSweepMs,
		LastSweepCount:      snap.LastSweepCount,
	}, nil
}

// mapError translates the domain error taxonomy (internal/note) and
// context errors into gRPC status errors. This is the only layer that
// knows about codes.Code; the engines stay protocol-agnostic.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, note.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, note.ErrResourceExhausted):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, note.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, note.ErrInternal):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
