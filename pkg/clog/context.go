package clog

import (
	"context"
	"maps"
	"sync"
)

type ctxSlog struct {
	mu         sync.RWMutex
	attributes map[string]any
}

type ctxSlogKey struct{}

// ContextWithSlog returns a context carrying a mutable attribute set that
// AttributesHandler appends to every record logged with that context.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxSlogKey{}, &ctxSlog{
		attributes: make(map[string]any),
	})
}

func fromContext(ctx context.Context) (*ctxSlog, bool) {
	l, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog)
	return l, ok
}

func AddAttribute(ctx context.Context, key string, value any) {
	l, ok := fromContext(ctx)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attributes[key] = value
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	l, ok := fromContext(ctx)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	maps.Copy(l.attributes, attributes)
}

func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	l, ok := fromContext(ctx)
	if !ok {
		return zero
	}
	l.mu.RLock()
	iVal, ok := l.attributes[key]
	l.mu.RUnlock()
	if !ok {
		return zero
	}
	v, ok := iVal.(T)
	if !ok {
		return zero
	}
	return v
}

func GetAttributes(ctx context.Context) map[string]any {
	l, ok := fromContext(ctx)
	if !ok {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.attributes)
}

const (
	ErrorAttributeKey     = "error.message"
	StackAttributeKey     = "error.stack"
	RequestIDAttributeKey = "request_id"
	DocumentAttributeKey  = "document"
)

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

func RequestID(ctx context.Context) string {
	return GetAttribute[string](ctx, RequestIDAttributeKey)
}

// AddDocument records which stored document the request touched.
func AddDocument(ctx context.Context, name string) {
	AddAttribute(ctx, DocumentAttributeKey, name)
}
