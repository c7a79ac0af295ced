// Package output defines the machine-readable envelope shared by
// `--json` CLI output and the dashboard API.
package output

import (
	"encoding/json"
	"io"

	"github.com/rileyhilliard/pch/internal/errors"
)

// Envelope wraps every machine-readable response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is the structured failure inside an Envelope.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Cause      string `json:"cause,omitempty"`
}

// CodeUnknown marks errors that carry no classification.
const CodeUnknown = "UNKNOWN"

// Success builds a successful envelope.
func Success(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failure builds a failed envelope from err. Data may carry a partial
// result, such as an analysis that was produced but not saved.
func Failure(err error, data any) Envelope {
	return Envelope{Success: false, Data: data, Error: FromError(err)}
}

// FromError converts err into its envelope form, keeping the code of a
// structured error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*errors.Error); ok {
		out := &Error{
			Code:       e.Code,
			Message:    e.Message,
			Suggestion: e.Suggestion,
		}
		if e.Cause != nil {
			out.Cause = errors.Summary(e.Cause)
		}
		return out
	}

	return &Error{
		Code:    CodeUnknown,
		Message: err.Error(),
	}
}

// WriteSuccess writes a successful envelope.
func WriteSuccess(w io.Writer, data any) error {
	return Write(w, Success(data))
}

// WriteError writes a failed envelope for err.
func WriteError(w io.Writer, err error) error {
	return Write(w, Failure(err, nil))
}

// Write encodes env with two-space indentation.
func Write(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
