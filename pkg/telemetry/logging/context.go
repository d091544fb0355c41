package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey    contextKey = "request_id"
	enterpriseIDKey contextKey = "enterprise_id"
)

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id carried by the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithEnterpriseID returns a context carrying the enterprise id.
func WithEnterpriseID(ctx context.Context, enterpriseID string) context.Context {
	return context.WithValue(ctx, enterpriseIDKey, enterpriseID)
}

// EnterpriseID returns the enterprise id carried by the context, or "".
func EnterpriseID(ctx context.Context) string {
	id, _ := ctx.Value(enterpriseIDKey).(string)
	return id
}

// contextHandler decorates every record logged through a *Context method
// with the request-scoped fields carried by the context.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if id := RequestID(ctx); id != "" {
		record.AddAttrs(slog.String("request_id", id))
	}
	if id := EnterpriseID(ctx); id != "" {
		record.AddAttrs(slog.String("enterprise_id", id))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
