package clog

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesHandler_AppendsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAttributesHandler(NewTextHandler(&buf, WithColor(false), WithLevel(slog.LevelDebug))))

	ctx := ContextWithSlog(context.Background())
	AddAttributes(ctx, map[string]any{"method": "GET", "path": "/profiles", "status": 200})
	AddDocument(ctx, "user_profiles.json")
	logger.InfoContext(ctx, "OK")

	out := buf.String()
	assert.Contains(t, out, "INFO GET /profiles 200 OK\n")
	assert.Contains(t, out, "    document=user_profiles.json\n")
}

func TestTextHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewTextHandler(&buf, WithColor(false), WithLevel(slog.LevelWarn)))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestAddAttribute_WithoutSlogContext(t *testing.T) {
	ctx := context.Background()
	AddAttribute(ctx, "k", "v")
	assert.Nil(t, GetAttributes(ctx))
	assert.Empty(t, RequestID(ctx))
}

func TestSlogChiMiddleware_RequestID(t *testing.T) {
	var seen string
	h := SlogChiMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/bob", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/users/bob", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "fixed", seen)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("nonsense"))
}
