package rpc

import (
	"crypto/tls"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// GRPCServer wraps a *grpc.Server bound to a listen address, in the
// teacher's pkg/api/server.go Start/Stop shape.
type GRPCServer struct {
	grpc     *grpc.Server
	listener net.Listener
}

// NewGRPCServer builds a *grpc.Server with srv registered and the
// capacity/logging interceptors chained in. tlsConf may be nil, in
// which case the server accepts plaintext connections.
func NewGRPCServer(srv NotesTransportServer, tlsConf *tls.Config, unary ...grpc.UnaryServerInterceptor) *grpc.Server {
	var opts []grpc.ServerOption
	if tlsConf != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConf)))
	} else {
		opts = append(opts, grpc.Creds(insecure.NewCredentials()))
	}
	if len(unary) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(unary...))
	}

	s := grpc.NewServer(opts...)
	RegisterNotesTransportServer(s, srv)
	return s
}

// Listen binds addr for g. It does not accept connections; call Serve
// on the result to start serving.
func Listen(g *grpc.Server, addr string) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	return &GRPCServer{grpc: g, listener: lis}, nil
}

// Serve blocks, accepting connections until Stop is called.
func (s *GRPCServer) Serve() error {
	return s.grpc.Serve(s.listener)
}

// Addr returns the bound address.
func (s *GRPCServer) Addr() string {
	return s.listener.Addr().String()
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *GRPCServer) Stop() {
	s.grpc.GracefulStop()
}
