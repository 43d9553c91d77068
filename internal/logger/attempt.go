package logger

import (
	"context"
	"strconv"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type attemptKey struct{}

type requestIDKey struct{}

type attemptInfo struct {
	attemptID string
	productID int64
}

// WithAttempt returns a context whose logs and sentry events are tagged with the mint attempt.
// The sentry hub is cloned so tags do not leak into other requests.
func WithAttempt(ctx context.Context, attemptID string, productID int64) context.Context {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("attempt_id", attemptID)
		scope.SetTag("product_id", strconv.FormatInt(productID, 10))
	})

	ctx = sentry.SetHubOnContext(ctx, hub)
	return context.WithValue(ctx, attemptKey{}, attemptInfo{attemptID: attemptID, productID: productID})
}

// WithRequestID returns a context whose logs carry the API request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func attemptFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if info, ok := ctx.Value(attemptKey{}).(attemptInfo); ok {
		fields = append(fields,
			zap.String("attempt_id", info.attemptID),
			zap.Int64("product_id", info.productID))
	}
	return fields
}
