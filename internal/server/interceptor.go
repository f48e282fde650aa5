package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/joshp123/dfuhost/internal/observability"
)

// LoggingInterceptor logs each unary call with its status code and duration.
func LoggingInterceptor(logger *observability.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			logger.Warnw("rpc failed", append(fields, "error", err)...)
		} else {
			logger.Debugw("rpc", fields...)
		}
		return resp, err
	}
}
