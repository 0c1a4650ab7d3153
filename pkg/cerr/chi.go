package cerr

import (
	"context"
	"net/http"

	"github.com/kazz187/agentregistry/pkg/panicerr"
)

type responseReceiverKey struct{}

type responseReceiver struct {
	status  int
	data    any
	message string
	err     error
}

func contextWithResponseReceiver(ctx context.Context, rr *responseReceiver) context.Context {
	return context.WithValue(ctx, responseReceiverKey{}, rr)
}

func responseReceiverFromContext(ctx context.Context) *responseReceiver {
	if rr, ok := ctx.Value(responseReceiverKey{}).(*responseReceiver); ok {
		return rr
	}
	return nil
}

// SetJSONResponse records a 200 success envelope for the current request.
func SetJSONResponse(ctx context.Context, data any, message string) {
	SetJSONResponseWithStatus(ctx, http.StatusOK, data, message)
}

func SetJSONResponseWithStatus(ctx context.Context, status int, data any, message string) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.status = status
		rr.data = data
		rr.message = message
		rr.err = nil
	}
}

func SetJSONError(ctx context.Context, err error) {
	if rr := responseReceiverFromContext(ctx); rr != nil {
		rr.err = err
	}
}

func SetNewJSONError(ctx context.Context, code Code, msg string, err error) {
	SetJSONError(ctx, NewError(code, msg, err))
}

// NewEnvelopeChiMiddleware renders whatever the handler recorded with
// SetJSONResponse or SetJSONError as the response envelope.
func NewEnvelopeChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rr := &responseReceiver{}
			ctx := contextWithResponseReceiver(r.Context(), rr)
			next.ServeHTTP(rw, r.WithContext(ctx))
			ExtractToHTTPResponse(ctx, rw, rr)
		})
	}
}

// NewRecoverChiMiddleware turns a panicking handler into an Internal error.
// It must run inside NewEnvelopeChiMiddleware.
func NewRecoverChiMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			err := panicerr.Safe(func() error {
				next.ServeHTTP(rw, r)
				return nil
			})()
			if err != nil {
				SetJSONError(r.Context(), NewError(Internal, "server error", err))
			}
		})
	}
}
