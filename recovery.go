package organizer

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// FixAction names what the recovery agent wants done about a failed task.
type FixAction string

const (
	// FixRetrySame retries the same tool with unchanged inputs.
	FixRetrySame FixAction = "retry_same"
	// FixRetryWithParams retries the same tool with ParamsPatch merged in.
	FixRetryWithParams FixAction = "retry_with_params"
	// FixFallbackTool switches to FallbackToolName with the given inputs.
	FixFallbackTool FixAction = "fallback_tool"
	// FixFail gives up on the task.
	FixFail FixAction = "fail"
)

// FixPlan is the recovery agent's verdict on a failed task.
type FixPlan struct {
	Action           FixAction      `json:"action"`
	Reason           string         `json:"reason"`
	ParamsPatch      map[string]any `json:"params_patch,omitempty"`
	FallbackToolName string         `json:"fallback_tool_name,omitempty"`
}

// Task describes the failed work unit handed to recovery: the logical task
// name, the tool that was called and the inputs it was called with.
type Task struct {
	Name   string         `json:"name"`
	Target string         `json:"target"`
	Inputs map[string]any `json:"inputs"`
}

// FixSuggester is an optional second opinion, typically LLM-backed,
// consulted when the built-in heuristics would fail or fall back.
type FixSuggester interface {
	Suggest(ctx context.Context, task Task, terr *ToolError) (FixPlan, error)
}

// RecoveryAgent turns standardized tool failures into fix plans.
//
// Stage one is deterministic heuristics keyed on the error type, code and
// message. Stage two, only when the heuristics end in "fail" or
// "fallback_tool" and a suggester is configured, asks the suggester for a
// better plan and adopts it unless it also says fail. Suggester errors are
// swallowed; the heuristic plan stands.
type RecoveryAgent struct {
	suggester FixSuggester
	logger    *slog.Logger
}

// RecoveryOption configures a RecoveryAgent.
type RecoveryOption func(*RecoveryAgent)

// WithFixSuggester installs the escalation suggester.
func WithFixSuggester(s FixSuggester) RecoveryOption {
	return func(r *RecoveryAgent) { r.suggester = s }
}

// WithRecoveryLogger sets the agent's logger.
func WithRecoveryLogger(l *slog.Logger) RecoveryOption {
	return func(r *RecoveryAgent) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecoveryAgent builds a RecoveryAgent. Without options it is purely
// heuristic.
func NewRecoveryAgent(opts ...RecoveryOption) *RecoveryAgent {
	r := &RecoveryAgent{logger: nopLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan produces a FixPlan for a failed task.
func (r *RecoveryAgent) Plan(ctx context.Context, task Task, terr *ToolError) FixPlan {
	plan := r.heuristicPlan(task, terr)

	if r.suggester != nil && (plan.Action == FixFail || plan.Action == FixFallbackTool) {
		suggested, err := r.suggester.Suggest(ctx, task, terr)
		switch {
		case err != nil:
			r.logger.Warn("fix suggester failed, keeping heuristic plan",
				slog.String("task", task.Name), slog.String("error", err.Error()))
		case suggested.Action != FixFail && suggested.Action != "":
			r.logger.Info("adopting suggested fix plan",
				slog.String("task", task.Name), slog.String("action", string(suggested.Action)))
			return suggested
		}
	}
	return plan
}

func (r *RecoveryAgent) heuristicPlan(task Task, terr *ToolError) FixPlan {
	if terr == nil {
		return FixPlan{Action: FixFail, Reason: "no error to recover from"}
	}
	msg := strings.ToLower(terr.Message)

	if terr.Type == ErrTypeNoResults || containsAny(msg, "no results", "no result", "not found") {
		return r.planNoResults(task)
	}

	if terr.Code == "400" || containsAny(msg, "invalid date", "date format", "fromisoformat") {
		if plan, ok := planBadDate(task); ok {
			return plan
		}
	}

	if terr.Type == ErrTypeTimeout || containsAny(msg, "temporar", "timeout", "try again", "rate limit", "too many requests") {
		return FixPlan{Action: FixRetrySame, Reason: "transient failure, retry as-is"}
	}

	return FixPlan{Action: FixFail, Reason: "no heuristic applies: " + terr.Message}
}

// planNoResults widens the query: force Polish place names, raise the result
// count, or as a last resort hand the query to the fallback geocoder.
func (r *RecoveryAgent) planNoResults(task Task) FixPlan {
	patch := map[string]any{}
	if lang, ok := task.Inputs["language"].(string); ok && lang != "pl" {
		patch["language"] = "pl"
	}
	if raw, present := task.Inputs["count"]; present {
		count := countValue(raw)
		if count < 5 {
			count = 5
		}
		patch["count"] = count
	}
	if len(patch) > 0 {
		return FixPlan{
			Action:      FixRetryWithParams,
			Reason:      "empty result set, widen the query (language/count)",
			ParamsPatch: patch,
		}
	}
	return FixPlan{
		Action:           FixFallbackTool,
		Reason:           "empty result set, try the fallback geocoder",
		FallbackToolName: "fallback_geocoder",
		ParamsPatch:      copyParams(task.Inputs),
	}
}

var (
	dateSlashDot = regexp.MustCompile(`^(\d{4})[/.](\d{1,2})[/.](\d{1,2})$`)
	dateDayFirst = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// NormalizeDate rewrites common date spellings to ISO YYYY-MM-DD.
// Already-normalized input comes back unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if m := dateSlashDot.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + pad2(m[2]) + "-" + pad2(m[3])
	}
	if m := dateDayFirst.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// planBadDate only normalizes the format; it never guesses a date. When
// the value is already ISO or unrecognized there is nothing to patch.
func planBadDate(task Task) (FixPlan, bool) {
	raw, ok := task.Inputs["date"].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return FixPlan{}, false
	}
	fixed := NormalizeDate(raw)
	if fixed == strings.TrimSpace(raw) {
		return FixPlan{}, false
	}
	return FixPlan{
		Action:      FixRetryWithParams,
		Reason:      "malformed date, normalized to ISO format",
		ParamsPatch: map[string]any{"date": fixed},
	}, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// countValue coerces a count input to an int. Nil, zero, empty and
// unparsable values fall back to 1 so the widening still applies.
func countValue(v any) int {
	switch n := v.(type) {
	case int:
		if n != 0 {
			return n
		}
	case int64:
		if n != 0 {
			return int(n)
		}
	case float64:
		if n != 0 {
			return int(n)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && i != 0 {
			return i
		}
	}
	return 1
}
