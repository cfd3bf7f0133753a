package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trailnote/organizer"
	"github.com/trailnote/organizer/provider/openaicompat"
)

const recoverySystemPrompt = `Jesteś narzędziem diagnostycznym do naprawy parametrów wywołań API (tool-i).
Masz zaproponować bezpieczną poprawkę parametrów albo fallback.
Odpowiadaj wyłącznie JSON-em.`

const recoverySchema = `Zwróć WYŁĄCZNIE JSON w jednym z formatów:
1) {"action":"retry_tool","tool":"<tool_name>","params":{...},"reason":"..."}
2) {"action":"fallback_tool","tool":"<tool_name>","params":{...},"reason":"..."}
3) {"action":"fail","tool":null,"params":{},"reason":"..."}

Zasady:
- params to TYLKO patch (zmienione klucze), nie całość
- reason krótki i rzeczowy
- jeśli sugerujesz retry, domyślnie użyj last_task.target jako tool
`

// maxTraceTail bounds how much stack trace goes into the prompt; the tail
// carries the failure site.
const maxTraceTail = 8000

// LLMFixSuggester asks a chat model for a fix plan when the deterministic
// recovery heuristics give up. It validates the reply and maps it onto a
// FixPlan; a retry that names a different tool is downgraded to a fallback
// so the model cannot silently reroute a retry.
type LLMFixSuggester struct {
	complete openaicompat.CompletionFn
}

var _ organizer.FixSuggester = (*LLMFixSuggester)(nil)

// NewLLMFixSuggester builds the suggester. complete is typically
// Client.CompleteJSON from the openaicompat package.
func NewLLMFixSuggester(complete openaicompat.CompletionFn) *LLMFixSuggester {
	return &LLMFixSuggester{complete: complete}
}

func (s *LLMFixSuggester) Suggest(ctx context.Context, task organizer.Task, terr *organizer.ToolError) (organizer.FixPlan, error) {
	trace := strings.TrimSpace(terr.StackTrace)
	if len(trace) > maxTraceTail {
		trace = trace[len(trace)-maxTraceTail:]
	}

	payload, err := json.Marshal(map[string]any{
		"last_task":   map[string]any{"name": task.Name, "target": task.Target},
		"last_inputs": task.Inputs,
		"tool_error": map[string]any{
			"code":           terr.Code,
			"type":           terr.Type,
			"message":        terr.Message,
			"provider":       terr.Provider,
			"request_params": terr.RequestParams,
			"raw_response":   terr.RawResponse,
			"stack_trace_id": terr.StackTraceID,
		},
		"stack_trace_tail": trace,
	})
	if err != nil {
		return organizer.FixPlan{}, err
	}

	content, err := s.complete(ctx, []openaicompat.ChatMessage{
		{Role: "system", Content: recoverySystemPrompt},
		{Role: "user", Content: recoverySchema + "\nKontekst:\n" + string(payload)},
	})
	if err != nil {
		return organizer.FixPlan{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &raw); err != nil {
		return organizer.FixPlan{}, fmt.Errorf("parse fix plan: %w", err)
	}
	return toFixPlan(raw, task)
}

// toFixPlan validates the model's JSON and maps it onto a FixPlan.
func toFixPlan(raw map[string]any, task organizer.Task) (organizer.FixPlan, error) {
	action := strings.TrimSpace(stringOf(raw["action"]))
	tool := strings.TrimSpace(stringOf(raw["tool"]))
	params, _ := raw["params"].(map[string]any)
	reason := strings.TrimSpace(stringOf(raw["reason"]))
	if reason == "" {
		reason = "LLM suggested a fix."
	}

	switch action {
	case "retry_tool":
		if tool == "" {
			return organizer.FixPlan{}, fmt.Errorf("retry_tool without a tool name")
		}
		// A retry on a different tool is really a fallback; no guessing.
		if tool != task.Target {
			return organizer.FixPlan{
				Action:           organizer.FixFallbackTool,
				Reason:           reason,
				FallbackToolName: tool,
				ParamsPatch:      params,
			}, nil
		}
		return organizer.FixPlan{
			Action:      organizer.FixRetryWithParams,
			Reason:      reason,
			ParamsPatch: params,
		}, nil
	case "fallback_tool":
		if tool == "" {
			return organizer.FixPlan{}, fmt.Errorf("fallback_tool without a tool name")
		}
		return organizer.FixPlan{
			Action:           organizer.FixFallbackTool,
			Reason:           reason,
			FallbackToolName: tool,
			ParamsPatch:      params,
		}, nil
	case "fail":
		return organizer.FixPlan{Action: organizer.FixFail, Reason: reason}, nil
	}
	return organizer.FixPlan{}, fmt.Errorf("unknown fix action %q", action)
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
