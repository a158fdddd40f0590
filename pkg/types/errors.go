package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRequestFailed matches every *RequestFailed with errors.Is.
var ErrRequestFailed = errors.New("request failed")

// RequestFailed is the single failure kind surfaced by the REST transport.
// Network failures, validation failures and missing resources are not
// distinguished; callers that care inspect StatusCode or Problem.
type RequestFailed struct {
	Method     string
	URL        string
	StatusCode int    // Zero when no response was received.
	Body       []byte // Raw response body, if any.
	Err        error  // Underlying transport error, if any.
}

func (e *RequestFailed) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	if p, ok := e.Problem(); ok && p.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, p.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error.
func (e *RequestFailed) Unwrap() error { return e.Err }

// Is reports whether target is ErrRequestFailed.
func (e *RequestFailed) Is(target error) bool { return target == ErrRequestFailed }

// Problem decodes the response body as a problem document. It reports false
// when the body is empty or not a JSON object.
func (e *RequestFailed) Problem() (Problem, bool) {
	var p Problem
	if len(e.Body) == 0 || json.Unmarshal(e.Body, &p) != nil {
		return Problem{}, false
	}
	return p, true
}

// Problem is the JSON error body returned by the API.
type Problem struct {
	Title      string `json:"title,omitempty"`
	Status     int    `json:"status,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`    // e.g. "error.idexists"
	EntityName string `json:"entityName,omitempty"` // e.g. "car"
	ErrorKey   string `json:"errorKey,omitempty"`   // e.g. "idexists"
}
