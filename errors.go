package organizer

import (
	"errors"
	"fmt"
)

// Fatal turn errors. Matched with errors.Is.
var (
	// ErrInvalidDecision signals an ill-formed CoordinatorDecision.
	ErrInvalidDecision = errors.New("invalid coordinator decision")
	// ErrUnknownAgent signals a lookup for an unregistered agent name.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrDuplicateAgent signals a registration conflict.
	ErrDuplicateAgent = errors.New("agent already registered")
	// ErrNoRoute signals that the default coordinator matched no routing rule.
	ErrNoRoute = errors.New("no routing rule matched")
	// ErrInvalidCoordinator signals that the configured coordinator agent
	// does not implement Decide.
	ErrInvalidCoordinator = errors.New("coordinator does not implement decide")
)

// ToolError categories.
const (
	ErrTypeHTTP      = "HTTP_ERROR"
	ErrTypeTimeout   = "TIMEOUT"
	ErrTypeNoResults = "NO_RESULTS"
	ErrTypeException = "EXCEPTION"
	ErrTypeOther     = "OTHER"
)

// ToolError is the standardized, provider-independent tool failure.
//
// Code is an HTTP status string ("400", "503", ...) or "EXCEPTION".
// StackTraceID is a stable 12-hex identifier of the captured trace text so
// logs stay short while the full trace remains correlatable.
type ToolError struct {
	Code          string         `json:"code"`
	Type          string         `json:"type"`
	Message       string         `json:"message"`
	Provider      string         `json:"provider"`
	RequestParams map[string]any `json:"request_params"`
	RawResponse   string         `json:"raw_response,omitempty"`
	StackTraceID  string         `json:"stack_trace_id"`
	StackTrace    string         `json:"stack_trace,omitempty"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s [%s/%s]: %s", e.Provider, e.Type, e.Code, e.Message)
}

// HTTPError is returned by tools for non-2xx responses. The runner maps it
// to a ToolError with Type HTTP_ERROR, Code set to the status, and the body
// preserved as RawResponse.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// NoResultsError is returned by tools when a query yields nothing to work
// with (e.g. geocoding an unknown place). The runner maps it to Type
// NO_RESULTS; the recovery heuristics also match on the message text.
type NoResultsError struct {
	Provider string
	Query    string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("%s: no results for %q", e.Provider, e.Query)
}

// RetryExceededError is the controlled error raised when the retry engine
// uses all attempts. It carries the last ToolError for diagnostics and for
// the recovery agent.
type RetryExceededError struct {
	Tool     string
	Attempts int
	Last     *ToolError
}

func (e *RetryExceededError) Error() string {
	return fmt.Sprintf("retry exceeded for tool %q after %d attempts: %s",
		e.Tool, e.Attempts, e.Last.Message)
}

func (e *RetryExceededError) Unwrap() error { return e.Last }
