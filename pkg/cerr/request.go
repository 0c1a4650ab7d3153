package cerr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const MsgInvalidJSON = "Invalid JSON in request body"

// DecodeJSONBody decodes the request body into v. An empty body decodes as
// an empty object. Anything unparsable is an InvalidArgument error.
func DecodeJSONBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return NewError(InvalidArgument, MsgInvalidJSON, fmt.Errorf("failed to read body: %w", err)).
			WithReason(ReasonInvalidRequest)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewError(InvalidArgument, MsgInvalidJSON, err).WithReason(ReasonInvalidRequest)
	}
	return nil
}
