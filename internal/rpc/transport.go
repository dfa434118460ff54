package rpc

// This file plays the role a protoc-gen-go-grpc output would play:
// service descriptor, client and server interfaces, and the stream
// wrapper types for StreamNotes. It is hand-written rather than
// generated because this repository is built without ever invoking
// protoc (see codec.go for the corresponding wire-encoding decision).

import (
	"context"

	"github.com/cuemby/notesd/internal/rpc/wire"
	"google.golang.org/grpc"
)

const serviceName = "notesd.NotesTransport"

// NotesTransportServer is the server-side contract for the four RPCs
// in spec §6.
type NotesTransportServer interface {
	SendNote(context.Context, *wire.SendNoteRequest) (*wire.SendNoteResponse, error)
	FetchNotes(context.Context, *wire.FetchNotesRequest) (*wire.FetchNotesResponse, error)
	StreamNotes(*wire.StreamNotesRequest, NotesTransport_StreamNotesServer) error
	Stats(context.Context, *wire.StatsRequest) (*wire.StatsResponse, error)
}

// UnimplementedNotesTransportServer may be embedded to satisfy
// NotesTransportServer for forward-compatible method additions.
type UnimplementedNotesTransportServer struct{}

func (UnimplementedNotesTransportServer) SendNote(context.Context, *wire.SendNoteRequest) (*wire.SendNoteResponse, error) {
	return nil, grpcUnimplemented("SendNote")
}
func (UnimplementedNotesTransportServer) FetchNotes(context.Context, *wire.FetchNotesRequest) (*wire.FetchNotesResponse, error) {
	return nil, grpcUnimplemented("FetchNotes")
}
func (UnimplementedNotesTransportServer) StreamNotes(*wire.StreamNotesRequest, NotesTransport_StreamNotesServer) error {
	return grpcUnimplemented("StreamNotes")
}
func (UnimplementedNotesTransportServer) Stats(context.Context, *wire.StatsRequest) (*wire.StatsResponse, error) {
	return nil, grpcUnimplemented("Stats")
}

// NotesTransport_StreamNotesServer is the server-side handle for the
// StreamNotes server-streaming RPC.
type NotesTransport_StreamNotesServer interface {
	Send(*wire.Note) error
	grpc.ServerStream
}

type notesTransportStreamNotesServer struct {
	grpc.ServerStream
}

func (x *notesTransportStreamNotesServer) Send(n *wire.Note) error {
	return x.ServerStream.SendMsg(n)
}

// RegisterNotesTransportServer registers srv with s.
func RegisterNotesTransportServer(s grpc.ServiceRegistrar, srv NotesTransportServer) {
	s.RegisterService(&notesTransportServiceDesc, srv)
}

func _NotesTransport_SendNote_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.SendNoteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotesTransportServer).SendNote(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/SendNote"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NotesTransportServer).SendNote(ctx, req.(*wire.SendNoteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NotesTransport_FetchNotes_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.FetchNotesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotesTransportServer).FetchNotes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/FetchNotes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NotesTransportServer).FetchNotes(ctx, req.(*wire.FetchNotesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NotesTransport_Stats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.StatsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NotesTransportServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Stats"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NotesTransportServer).Stats(ctx, req.(*wire.StatsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _NotesTransport_StreamNotes_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(wire.StreamNotesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(NotesTransportServer).StreamNotes(m, &notesTransportStreamNotesServer{stream})
}

var notesTransportServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*NotesTransportServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendNote", Handler: _NotesTransport_SendNote_Handler},
		{MethodName: "FetchNotes", Handler: _NotesTransport_FetchNotes_Handler},
		{MethodName: "Stats", Handler: _NotesTransport_Stats_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamNotes",
			Handler:       _NotesTransport_StreamNotes_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "notesd/transport.proto",
}

// NotesTransportClient is the client-side contract for the four RPCs.
type NotesTransportClient interface {
	SendNote(ctx context.Context, in *wire.SendNoteRequest, opts ...grpc.CallOption) (*wire.SendNoteResponse, error)
	FetchNotes(ctx context.Context, in *wire.FetchNotesRequest, opts ...grpc.CallOption) (*wire.FetchNotesResponse, error)
	StreamNotes(ctx context.Context, in *wire.StreamNotesRequest, opts ...grpc.CallOption) (NotesTransport_StreamNotesClient, error)
	Stats(ctx context.Context, in *wire.StatsRequest, opts ...grpc.CallOption) (*wire.StatsResponse, error)
}

type notesTransportClient struct {
	cc grpc.ClientConnInterface
}

// NewNotesTransportClient wraps cc in the NotesTransportClient contract.
func NewNotesTransportClient(cc grpc.ClientConnInterface) NotesTransportClient {
	return &notesTransportClient{cc}
}

func (c *notesTransportClient) SendNote(ctx context.Context, in *wire.SendNoteRequest, opts ...grpc.CallOption) (*wire.SendNoteResponse, error) {
	out := new(wire.SendNoteResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/SendNote", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *notesTransportClient) FetchNotes(ctx context.Context, in *wire.FetchNotesRequest, opts ...grpc.CallOption) (*wire.FetchNotesResponse, error) {
	out := new(wire.FetchNotesResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/FetchNotes", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *notesTransportClient) Stats(ctx context.Context, in *wire.StatsRequest, opts ...grpc.CallOption) (*wire.StatsResponse, error) {
	out := new(wire.StatsResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Stats", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *notesTransportClient) StreamNotes(ctx context.Context, in *wire.StreamNotesRequest, opts ...grpc.CallOption) (NotesTransport_StreamNotesClient, error) {
	stream, err := c.cc.NewStream(ctx, &notesTransportServiceDesc.Streams[0], "/"+serviceName+"/StreamNotes", opts...)
	if err != nil {
		return nil, err
	}
	x := &notesTransportStreamNotesClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// NotesTransport_StreamNotesClient is the client-side handle for the
// StreamNotes server-streaming RPC.
type NotesTransport_StreamNotesClient interface {
	Recv() (*wire.Note, error)
	grpc.ClientStream
}

type notesTransportStreamNotesClient struct {
	grpc.ClientStream
}

func (x *notesTransportStreamNotesClient) Recv() (*wire.Note, error) {
	m := new(wire.Note)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
