// Package result defines the uniform outcome returned by outbound dispatches
// and inbound actions.
package result

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Result is the outcome of a dispatch or an inbound action.
type Result struct {
	// Success reports whether the operation completed.
	Success bool

	// Message is a human-readable outcome description.
	Message string

	// Response is an opaque response value (e.g. the destination's reply).
	Response any

	// Status is the HTTP status equivalent of the outcome. Not serialized.
	Status int

	// Fields are extra top-level members such as post_id or user_id.
	Fields map[string]any
}

// OK returns a successful result.
func OK(status int, message string) Result {
	return Result{Success: true, Message: message, Status: status}
}

// Fail returns a failed result.
func Fail(status int, message string) Result {
	return Result{Success: false, Message: message, Status: status}
}

// With returns a copy of r carrying an extra top-level field.
func (r Result) With(key string, value any) Result {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields[key] = value
	r.Fields = fields
	return r
}

// HTTPStatus returns Status, falling back to 200 or 500 when unset.
func (r Result) HTTPStatus() int {
	if r.Status != 0 {
		return r.Status
	}
	if r.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// MarshalJSON flattens Fields next to success, message and response.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["success"] = r.Success
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.Response != nil {
		out["response"] = r.Response
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. Unknown members land in Fields.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{}
	for k, v := range raw {
		switch k {
		case "success":
			b, _ := v.(bool)
			r.Success = b
		case "message":
			s, _ := v.(string)
			r.Message = s
		case "response":
			r.Response = v
		default:
			if r.Fields == nil {
				r.Fields = make(map[string]any)
			}
			r.Fields[k] = v
		}
	}
	return nil
}

// String renders a short diagnostic form.
func (r Result) String() string {
	return strconv.FormatBool(r.Success) + ": " + r.Message
}
