package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// callInfo lets interceptors nested inside LoggingInterceptor report the
// authenticated user back to it.
type callInfo struct {
	userID string
}

const callInfoKey contextKey = "call_info"

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, user ID, duration, and any error codes/messages.
// Client mistakes (bad arguments, missing records, auth failures) log at warn;
// internal failures log at error. Install it outside the auth interceptor so
// rejected calls are logged too.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			// Auth interceptors further in fill in the user
			info := &callInfo{userID: GetUserID(ctx)}
			resp, err := next(context.WithValue(ctx, callInfoKey, info), req)

			attrs := []any{
				"procedure", procedure,
				"user_id", info.userID, // empty if unauthenticated
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if err == nil {
				logger.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String(), "error", err)
			switch code {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
				logger.ErrorContext(ctx, "RPC error", attrs...)
			default:
				logger.WarnContext(ctx, "RPC error", attrs...)
			}
			return resp, err
		}
	}
}
