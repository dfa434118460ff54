package rpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cuemby/notesd/internal/rpc/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is a thin wrapper over NotesTransportClient for CLI use,
// grounded in the teacher's pkg/client/client.go Dial-then-typed-call
// shape (minus the mTLS certificate-provisioning dance this transport
// has no use for).
type Client struct {
	conn *grpc.ClientConn
	rpc  NotesTransportClient
}

// Dial connects to addr. tlsConf may be nil for a plaintext
// connection (suitable for loopback/dev use).
func Dial(addr string, tlsConf *tls.Config) (*Client, error) {
	var creds credentials.TransportCredentials
	if tlsConf != nil {
		creds = credentials.NewTLS(tlsConf)
	} else {
		creds = insecure.NewCredentials()
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &Client{conn: conn, rpc: NewNotesTransportClient(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) SendNote(ctx context.Context, tag uint32, header, details []byte) ([]byte, error) {
	resp, err := c.rpc.SendNote(ctx, &wire.SendNoteRequest{
		Note: &wire.Note{Tag: tag, Header: header, Details: details},
	})
	if err != nil {
		return nil, err
	}
	return resp.ID, nil
}

func (c *Client) FetchNotes(ctx context.Context, tag uint32, since *wire.Cursor, limit uint32) (*wire.FetchNotesResponse, error) {
	return c.rpc.FetchNotes(ctx, &wire.FetchNotesRequest{Tag: tag, Cursor: since, Limit: limit})
}

func (c *Client) Stats(ctx context.Context) (*wire.StatsResponse, error) {
	return c.rpc.Stats(ctx, &wire.StatsRequest{})
}

// StreamNotes opens a live subscription and invokes onNote for every
// note received until the stream ends (idle timeout) or ctx is done.
func (c *Client) StreamNotes(ctx context.Context, tag uint32, since *wire.Cursor, idleTimeout time.Duration, onNote func(*wire.Note)) error {
	stream, err := c.rpc.StreamNotes(ctx, &wire.StreamNotesRequest{
		Tag:           tag,
		Since:         since,
		IdleTimeoutMs: idleTimeout.Milliseconds(),
	})
	if err != nil {
		return err
	}
	for {
		n, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		onNote(n)
	}
}
