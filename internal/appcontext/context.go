package appcontext

import "context"

type ContextKey string

var (
	RequestIDKey = ContextKey("X-Request-Id")
	SourceKey    = ContextKey("X-Source")
)

// SetRequestID attaches the incoming customer request id being resolved
func SetRequestID(ctx context.Context, requestID int64) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) int64 {
	value, ok := ctx.Value(RequestIDKey).(int64)
	if !ok {
		return 0
	}
	return value
}

// SetSource attaches the intake source (kafka topic, backlog sweep)
func SetSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

func GetSource(ctx context.Context) string {
	value, ok := ctx.Value(SourceKey).(string)
	if !ok {
		return ""
	}
	return value
}
