package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trailnote/organizer"
	"github.com/trailnote/organizer/provider/openaicompat"
)

const llmCoordinatorSystemPrompt = `Jesteś koordynatorem zespołu agentów do planowania podróży.
Dostajesz cel użytkownika, kontekst zespołu i listę agentów z opisami.
Wybierz jednego agenta i zadanie dla niego. Odpowiadaj wyłącznie JSON-em:
{"next_agent": "<nazwa>", "task": "<zadanie>", "expected_output": "<oczekiwany wynik>", "stop": false, "needed_tools": []}
Ustaw "stop": true tylko gdy użytkownik chce zakończyć rozmowę.`

// LLMCoordinator routes through a chat model. The wire contract is the same
// JSON shape the heuristic coordinator produces; when the model misbehaves
// (transport error, invalid JSON, unknown agent) it falls back to the
// heuristic so routing never stalls.
type LLMCoordinator struct {
	name      string
	complete  openaicompat.CompletionFn
	heuristic *Coordinator
	logger    *slog.Logger
}

var _ organizer.Coordinator = (*LLMCoordinator)(nil)

// LLMCoordinatorOption configures an LLMCoordinator.
type LLMCoordinatorOption func(*LLMCoordinator)

// WithLLMCoordinatorLogger sets the coordinator's logger.
func WithLLMCoordinatorLogger(l *slog.Logger) LLMCoordinatorOption {
	return func(c *LLMCoordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewLLMCoordinator builds the LLM-backed coordinator. complete is
// typically Client.CompleteJSON from the openaicompat package.
func NewLLMCoordinator(complete openaicompat.CompletionFn, opts ...LLMCoordinatorOption) *LLMCoordinator {
	c := &LLMCoordinator{
		name:      "coordinator",
		complete:  complete,
		heuristic: NewCoordinator(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LLMCoordinator) Name() string { return c.name }

func (c *LLMCoordinator) Description() string {
	return "LLM-backed router over the registered agents"
}

func (c *LLMCoordinator) Handle(ctx context.Context, msg organizer.Message) (organizer.AgentResult, error) {
	return organizer.ReplyResult(
		organizer.NewMessage(c.name, "Coordinator does not respond directly."),
	), nil
}

func (c *LLMCoordinator) Decide(ctx context.Context, userGoal string, teamCtx organizer.TeamMemoryContext, agents []organizer.AgentCapability) (organizer.CoordinatorDecision, error) {
	decision, err := c.decideLLM(ctx, userGoal, teamCtx, agents)
	if err == nil {
		return decision, nil
	}
	c.logger.Warn("llm coordinator failed, falling back to heuristic",
		slog.String("error", err.Error()))
	return c.heuristic.Decide(ctx, userGoal, teamCtx, agents)
}

func (c *LLMCoordinator) decideLLM(ctx context.Context, userGoal string, teamCtx organizer.TeamMemoryContext, agents []organizer.AgentCapability) (organizer.CoordinatorDecision, error) {
	payload, err := json.Marshal(map[string]any{
		"user_goal":       userGoal,
		"rolling_summary": teamCtx.RollingSummary,
		"facts":           teamCtx.Facts,
		"scratchpad":      teamCtx.Scratchpad,
		"agents":          agents,
	})
	if err != nil {
		return organizer.CoordinatorDecision{}, err
	}

	content, err := c.complete(ctx, []openaicompat.ChatMessage{
		{Role: "system", Content: llmCoordinatorSystemPrompt},
		{Role: "user", Content: string(payload)},
	})
	if err != nil {
		return organizer.CoordinatorDecision{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(ExtractJSON(content)), &raw); err != nil {
		return organizer.CoordinatorDecision{}, fmt.Errorf("parse decision: %w", err)
	}
	decision := organizer.DecisionFromMap(raw)
	if err := decision.Validate(); err != nil {
		return organizer.CoordinatorDecision{}, err
	}
	if !decision.Stop && decision.NextAgent != c.name && !capabilityKnown(agents, decision.NextAgent) {
		return organizer.CoordinatorDecision{}, fmt.Errorf("%w: %q", organizer.ErrUnknownAgent, decision.NextAgent)
	}
	return decision, nil
}

func capabilityKnown(agents []organizer.AgentCapability, name string) bool {
	for _, a := range agents {
		if a.Name == name {
			return true
		}
	}
	return false
}

// ExtractJSON pulls the JSON object out of a model reply, stripping
// markdown code fences and surrounding prose.
func ExtractJSON(input string) string {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}

	return trimmed
}
