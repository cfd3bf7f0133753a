package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// StopReply is the canned reply returned when the coordinator decides the
// conversation is over.
const StopReply = "Rozmowa zakończona."

// RoutingRule maps a case-insensitive keyword to an agent name. The
// fallback coordinator applies rules in order and routes on the first
// keyword found in the user text.
type RoutingRule struct {
	Keyword   string
	AgentName string
}

// Orchestrator drives the turn loop: route a user message through the
// coordinator to exactly one agent and collect the reply. It exclusively
// owns the user history, the legacy trace, the unified event log and the
// team memory. Turns are serialized; Handle holds a mutex for the whole
// turn, so an Orchestrator is safe to share across goroutines.
type Orchestrator struct {
	mu sync.Mutex

	registry        *Registry
	memory          *TeamMemory
	coordinatorName string
	rules           []RoutingRule

	userHistory      []Message
	teamConversation []TraceEvent
	teamEvents       []Event

	logger *slog.Logger
	tracer Tracer

	memoryOpts []MemoryOption
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRules sets the legacy routing rules used by the fallback coordinator.
func WithRules(rules ...RoutingRule) OrchestratorOption {
	return func(o *Orchestrator) { o.rules = rules }
}

// WithCoordinatorName sets the registry name of the coordinator agent.
// Default is "coordinator".
func WithCoordinatorName(name string) OrchestratorOption {
	return func(o *Orchestrator) {
		if name != "" {
			o.coordinatorName = name
		}
	}
}

// WithMemorySummarizeEvery tunes the team memory condensation chunk size.
func WithMemorySummarizeEvery(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.memoryOpts = append(o.memoryOpts, WithSummarizeEvery(n))
	}
}

// WithMemoryKeepRecent tunes how many raw events the team context carries.
func WithMemoryKeepRecent(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.memoryOpts = append(o.memoryOpts, WithKeepRecent(n))
	}
}

// WithMemoryKeepScratchpad tunes the team memory scratchpad window.
func WithMemoryKeepScratchpad(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.memoryOpts = append(o.memoryOpts, WithKeepScratchpad(n))
	}
}

// WithLogger sets the orchestrator's logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets an optional tracer; each turn becomes one span.
func WithTracer(t Tracer) OrchestratorOption {
	return func(o *Orchestrator) { o.tracer = t }
}

// NewOrchestrator builds an orchestrator over the given registry.
func NewOrchestrator(registry *Registry, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		registry:        registry,
		coordinatorName: "coordinator",
		logger:          nopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.memory = NewTeamMemory(o.memoryOpts...)
	return o
}

// HandleUserText wraps raw text as a user Message and executes one turn.
func (o *Orchestrator) HandleUserText(ctx context.Context, text string) (Message, error) {
	return o.Handle(ctx, NewMessage("user", text))
}

// Handle executes exactly one turn and returns the agent's reply.
//
// Event ordering within the turn is part of the contract: decision, route,
// agent-emitted events in emission order, respond. On failure the turn
// aborts where it stands; events already appended stay in the log and no
// respond event is emitted.
func (o *Orchestrator) Handle(ctx context.Context, msg Message) (Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cid := msg.CorrelationID
	if cid == "" {
		cid = NewCorrelationID()
		msg = msg.WithCorrelationID(cid)
	}

	if o.tracer != nil {
		var span Span
		ctx, span = o.tracer.Start(ctx, "orchestrator.turn",
			StringAttr("correlation_id", cid))
		defer span.End()
	}

	o.userHistory = append(o.userHistory, msg)

	coordinator, fromRegistry, err := o.resolveCoordinator()
	if err != nil {
		return Message{}, err
	}

	decision, err := coordinator.Decide(ctx, msg.Content, o.memory.Context(), o.registry.ListCapabilities())
	if err != nil {
		return Message{}, fmt.Errorf("coordinator decide: %w", err)
	}
	if err := decision.Validate(); err != nil {
		return Message{}, err
	}

	o.appendEvent(NewEvent(EventDecision, coordinator.Name(), decision.NextAgent, map[string]any{
		"task":            decision.Task,
		"expected_output": decision.ExpectedOutput,
		"stop":            decision.Stop,
	}).WithCorrelationID(cid))
	if fromRegistry {
		o.teamConversation = append(o.teamConversation, TraceEvent{
			Actor:         coordinator.Name(),
			Action:        "decision",
			Target:        decision.NextAgent,
			Params:        map[string]any{"task": decision.Task, "stop": decision.Stop},
			Outcome:       OutcomeSuccess,
			Timestamp:     NowISO(),
			CorrelationID: cid,
		})
	}

	o.logger.Info("turn decision",
		slog.String("correlation_id", cid),
		slog.String("next_agent", decision.NextAgent),
		slog.Bool("stop", decision.Stop))

	if decision.Stop {
		reply := NewMessage(coordinator.Name(), StopReply).WithCorrelationID(cid)
		o.userHistory = append(o.userHistory, reply)
		o.appendEvent(NewEvent(EventRespond, coordinator.Name(), "user", map[string]any{
			"content": reply.Content,
		}).WithCorrelationID(cid))
		return reply, nil
	}

	agent, err := o.registry.Get(decision.NextAgent)
	if err != nil {
		return Message{}, err
	}

	o.teamConversation = append(o.teamConversation, TraceEvent{
		Actor:         "orchestrator",
		Action:        "route",
		Target:        agent.Name(),
		Params:        map[string]any{"text": msg.Content, "task": decision.Task},
		Outcome:       OutcomeSuccess,
		Timestamp:     NowISO(),
		CorrelationID: cid,
	})
	o.appendEvent(NewEvent(EventRoute, "orchestrator", agent.Name(), map[string]any{
		"text": msg.Content,
		"task": decision.Task,
	}).WithCorrelationID(cid))

	result, err := agent.Handle(ctx, msg)
	if err != nil {
		return Message{}, fmt.Errorf("agent %s: %w", agent.Name(), err)
	}
	if result.Message.CorrelationID == "" {
		result.Message = result.Message.WithCorrelationID(cid)
	}

	for _, ev := range result.Events {
		if ev.CorrelationID == "" {
			ev = ev.WithCorrelationID(cid)
		}
		o.appendEvent(ev)
	}

	o.userHistory = append(o.userHistory, result.Message)

	o.teamConversation = append(o.teamConversation, TraceEvent{
		Actor:         agent.Name(),
		Action:        "respond",
		Target:        "user",
		Params:        map[string]any{"content": result.Message.Content},
		Outcome:       OutcomeSuccess,
		Timestamp:     NowISO(),
		CorrelationID: cid,
	})
	o.appendEvent(NewEvent(EventRespond, agent.Name(), "user", map[string]any{
		"content": result.Message.Content,
	}).WithCorrelationID(cid))

	return result.Message, nil
}

// appendEvent records an event in both the unified log and the team memory.
func (o *Orchestrator) appendEvent(ev Event) {
	o.teamEvents = append(o.teamEvents, ev)
	o.memory.AddEvent(ev)
}

// resolveCoordinator returns the registered coordinator when present, else
// the rule-based fallback. The bool reports whether it came from the
// registry.
func (o *Orchestrator) resolveCoordinator() (Coordinator, bool, error) {
	if o.registry.Has(o.coordinatorName) {
		agent, _ := o.registry.Get(o.coordinatorName)
		coord, ok := agent.(Coordinator)
		if !ok {
			return nil, false, fmt.Errorf("%w: %q", ErrInvalidCoordinator, o.coordinatorName)
		}
		return coord, true, nil
	}
	return &ruleCoordinator{rules: o.rules}, false, nil
}

// History returns the user-facing conversation so far.
func (o *Orchestrator) History() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.userHistory...)
}

// TeamConversation returns the legacy trace entries.
func (o *Orchestrator) TeamConversation() []TraceEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]TraceEvent(nil), o.teamConversation...)
}

// TeamEvents returns the unified event log.
func (o *Orchestrator) TeamEvents() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Event(nil), o.teamEvents...)
}

// TeamContext returns the current team memory snapshot.
func (o *Orchestrator) TeamContext() TeamMemoryContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.memory.Context()
}

// AddTeamFacts asserts persistent facts into the team memory.
func (o *Orchestrator) AddTeamFacts(facts ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.memory.AddFacts(facts...)
}

// Reset clears history, traces, events and memory.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.userHistory = nil
	o.teamConversation = nil
	o.teamEvents = nil
	o.memory.Clear()
}

// ruleCoordinator is the fallback used when no coordinator agent is
// registered: first rule whose keyword appears in the text wins.
type ruleCoordinator struct {
	rules []RoutingRule
}

var _ Coordinator = (*ruleCoordinator)(nil)

func (c *ruleCoordinator) Name() string        { return "default_coordinator" }
func (c *ruleCoordinator) Description() string { return "keyword routing fallback" }

func (c *ruleCoordinator) Handle(ctx context.Context, msg Message) (AgentResult, error) {
	return AgentResult{}, fmt.Errorf("%w: default coordinator cannot handle messages", ErrNoRoute)
}

func (c *ruleCoordinator) Decide(ctx context.Context, userGoal string, teamCtx TeamMemoryContext, agents []AgentCapability) (CoordinatorDecision, error) {
	lowered := strings.ToLower(userGoal)
	for _, rule := range c.rules {
		if rule.Keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rule.Keyword)) {
			return CoordinatorDecision{
				NextAgent:      rule.AgentName,
				Task:           userGoal,
				ExpectedOutput: "a reply for the user",
			}, nil
		}
	}
	return CoordinatorDecision{}, fmt.Errorf("%w: %q", ErrNoRoute, userGoal)
}
