package organizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
)

// TraceEvent is one step of the legacy team trace: a single tool invocation
// with its parameters and outcome. Outcome is "success" or "error"; Error is
// set only on error.
type TraceEvent struct {
	Actor         string         `json:"actor"`
	Action        string         `json:"action"`
	Target        string         `json:"target"`
	Params        map[string]any `json:"params"`
	Outcome       string         `json:"outcome"`
	Error         *ToolError     `json:"error"`
	Timestamp     string         `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// CallToolWithTrace invokes a tool and always produces exactly one
// TraceEvent with action "tool_call".
//
// On success it returns (result, trace) with outcome "success". On any
// failure (a returned error or a panic inside the tool) it wraps the failure
// into a ToolError, returns (nil, trace) with outcome "error", and never
// propagates. actor defaults to "tool_runner"; a missing correlation id is
// generated.
func CallToolWithTrace(ctx context.Context, tool Tool, params map[string]any, actor, correlationID string) (result map[string]any, trace TraceEvent) {
	if actor == "" {
		actor = "tool_runner"
	}
	cid := correlationID
	if cid == "" {
		cid = NewCorrelationID()
	}

	trace = TraceEvent{
		Actor:         actor,
		Action:        "tool_call",
		Target:        tool.Name(),
		Params:        copyParams(params),
		Timestamp:     NowISO(),
		CorrelationID: cid,
	}

	defer func() {
		if r := recover(); r != nil {
			text := fmt.Sprintf("panic in tool %s: %v\n%s", tool.Name(), r, debug.Stack())
			terr := &ToolError{
				Code:          "EXCEPTION",
				Type:          ErrTypeException,
				Message:       fmt.Sprintf("panic: %v", r),
				Provider:      tool.Name(),
				RequestParams: copyParams(params),
				StackTraceID:  stackTraceID(text),
				StackTrace:    text,
			}
			result = nil
			trace.Outcome = OutcomeError
			trace.Error = terr
		}
	}()

	out, err := tool.Call(ctx, params)
	if err != nil {
		trace.Outcome = OutcomeError
		trace.Error = wrapToolError(tool.Name(), params, err)
		return nil, trace
	}

	trace.Outcome = OutcomeSuccess
	return out, trace
}

// wrapToolError standardizes a tool failure into a ToolError, classifying
// HTTP-shaped and timeout errors into their own categories.
func wrapToolError(provider string, params map[string]any, err error) *ToolError {
	text := fmt.Sprintf("tool %s: %v", provider, err)

	code := "EXCEPTION"
	typ := ErrTypeException
	raw := ""

	var httpErr *HTTPError
	var noResults *NoResultsError
	switch {
	case errors.As(err, &httpErr):
		code = strconv.Itoa(httpErr.Status)
		typ = ErrTypeHTTP
		raw = httpErr.Body
	case errors.As(err, &noResults):
		typ = ErrTypeNoResults
	case errors.Is(err, context.DeadlineExceeded):
		typ = ErrTypeTimeout
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fmt.Sprintf("%T", err)
	}

	return &ToolError{
		Code:          code,
		Type:          typ,
		Message:       msg,
		Provider:      provider,
		RequestParams: copyParams(params),
		RawResponse:   raw,
		StackTraceID:  stackTraceID(text),
		StackTrace:    text,
	}
}

// stackTraceID returns a short, stable identifier for a trace text:
// the first 12 hex characters of its SHA-256 digest.
func stackTraceID(trace string) string {
	sum := sha256.Sum256([]byte(trace))
	return hex.EncodeToString(sum[:])[:12]
}

func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
