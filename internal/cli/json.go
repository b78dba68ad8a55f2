package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/trayd/trayd/internal/errors"
)

// MachineMode returns true if machine-readable output is enabled.
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine
// parsing. All --json output uses it.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ErrCodeUnknown is reported for errors without a code.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts an error to a JSONError. Structured errors keep
// their code, which is the same code the bridge reports.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if stderrors.As(err, &e) {
		return &JSONError{
			Code:       e.Code,
			Message:    e.Message,
			Suggestion: e.Suggestion,
		}
	}
	return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
}

// WriteJSONReport writes data with success set from err, for commands that
// have a result to show even when they fail.
func WriteJSONReport(w io.Writer, data interface{}, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: err == nil, Data: data, Error: ErrorToJSON(err)})
}

// reportedError marks an error the command already wrote out. Execute
// only turns it into an exit status.
type reportedError struct{ err error }

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return stderrors.As(err, &r)
}
