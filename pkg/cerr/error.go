package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/kazz187/agentregistry/pkg/clog"
)

type Error struct {
	Code   Code
	Msg    string // message returned to the caller along with the code
	Err    error  // underlying error, logged only
	Stack  string // stack trace
	Reason string // envelope error.code; defaults to Code.Reason()
	UserID string // user the failure refers to, if any
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if clog.ConnectCodeToLevel(code.ConnectCode()) == clog.LevelError {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

func (e *Error) WithUserID(userID string) *Error {
	e.UserID = userID
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) reason() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Code.Reason()
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// OrUnavailable passes caller-facing errors through unchanged and turns
// everything else into a SERVICE_UNAVAILABLE error carrying msg.
func OrUnavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		switch cerr.Code {
		case Internal, Unknown, Unavailable, DataLoss:
		default:
			return err
		}
	}
	return NewError(Internal, msg, err).WithReason(ReasonServiceUnavailable)
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string         `json:"status"`
	Data    any            `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   *EnvelopeError `json:"error,omitempty"`
}

type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

func ExtractToHTTPResponse(ctx context.Context, rw http.ResponseWriter, response *responseReceiver) {
	if response.err == nil {
		status := response.status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(ctx, rw, status, &Envelope{
			Status:  statusSuccess,
			Data:    response.data,
			Message: response.message,
		})
		return
	}
	if errors.Is(response.err, context.Canceled) {
		writeJSONError(ctx, rw, NewError(Canceled, "connection closed", response.err))
		return
	}

	clog.AddError(ctx, response.err)
	var cErr *Error
	if errors.As(response.err, &cErr) {
		if cErr.Stack != "" {
			clog.AddStack(ctx, cErr.Stack)
		}
		writeJSONError(ctx, rw, cErr)
		return
	}
	writeJSONError(ctx, rw, NewError(Unknown, "unknown error", response.err))
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, envelope *Envelope) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(envelope); err != nil {
		writeJSONError(ctx, rw, NewError(Internal, "server error", err))
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if _, err := rw.Write(buf.Bytes()); err != nil {
		clog.AddError(ctx, NewError(Internal, "server error", err))
	}
}

func writeJSONError(ctx context.Context, rw http.ResponseWriter, origErr *Error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	envelope := &Envelope{
		Status: statusError,
		Error: &EnvelopeError{
			Code:    origErr.reason(),
			Message: origErr.Msg,
			UserID:  origErr.UserID,
		},
	}
	if err := enc.Encode(envelope); err != nil {
		buf = bytes.NewBufferString(`{"status":"error","error":{"code":"SERVICE_UNAVAILABLE","message":"server error"}}`)
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(origErr.Code.HTTPCode())
	if _, err := rw.Write(buf.Bytes()); err != nil {
		origErr.Err = errors.Join(origErr.Err, err)
		clog.AddError(ctx, origErr)
	}
}
