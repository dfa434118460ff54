package rpc

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CapacityInterceptor enforces the max in-flight ingestion bound from
// spec §5. Grounded in the teacher's pkg/api/interceptor.go method-name
// dispatch shape (there: read-only vs write; here: capacity-gated vs
// not).
func CapacityInterceptor(maxInFlightIngestions int64, inFlight *atomic.Int64) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !isSendNote(info.FullMethod) {
			return handler(ctx, req)
		}
		if inFlight.Add(1) > maxInFlightIngestions {
			inFlight.Add(-1)
			return nil, status.Error(codes.ResourceExhausted, "too many in-flight ingestions")
		}
		defer inFlight.Add(-1)
		return handler(ctx, req)
	}
}

func isSendNote(fullMethod string) bool {
	parts := strings.Split(fullMethod, "/")
	return len(parts) > 0 && parts[len(parts)-1] == "SendNote"
}

// LoggingInterceptor logs each unary RPC and converts a handler panic
// into an Internal status rather than crashing the process (spec §7
// "Internal invariants... the process continues").
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("method", info.FullMethod).Msg("rpc handler panicked")
				err = status.Errorf(codes.Internal, "internal error")
			}
		}()

		resp, err = handler(ctx, req)
		if err != nil {
			log.Debug().Err(err).Str("method", info.FullMethod).Msg("rpc failed")
		}
		return resp, err
	}
}
