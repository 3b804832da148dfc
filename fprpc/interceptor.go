package fprpc

import (
	"context"
	"log/slog"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"xdao.co/resumehash/internal/metrics"
	"xdao.co/resumehash/internal/reqid"
)

// RequestIDHeader is the metadata key carrying a caller-chosen request ID.
const RequestIDHeader = "x-request-id"

// UnaryInterceptor attaches a request ID to the context, records the call in
// the Prometheus collectors and logs its outcome. A nil logger disables
// logging.
func UnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = reqid.New()
		}
		ctx = reqid.With(ctx, id)

		method := path.Base(info.FullMethod)
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		metrics.RPCRequests.WithLabelValues(method, code.String()).Inc()
		metrics.RPCLatency.WithLabelValues(method).Observe(elapsed.Seconds())

		if logger != nil {
			args := []any{"request_id", id, "method", method, "code", code.String(), "duration", elapsed}
			if err != nil {
				logger.Log(ctx, levelFor(code), "rpc failed", append(args, "err", status.Convert(err).Message())...)
			} else {
				logger.Log(ctx, slog.LevelInfo, "rpc", args...)
			}
		}
		return resp, err
	}
}

// levelFor keeps client mistakes out of the error level.
func levelFor(code codes.Code) slog.Level {
	switch code {
	case codes.Internal, codes.DataLoss, codes.Unknown:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
