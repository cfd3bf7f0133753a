package organizer

import (
	"context"
	"errors"
)

// stubTool is a test Tool that returns pre-configured results in order and
// records the params of each call.
type stubTool struct {
	name    string
	calls   int
	params  []map[string]any
	results []stubToolResult
}

type stubToolResult struct {
	out   map[string]any
	err   error
	panic any
}

func (s *stubTool) Name() string {
	if s.name == "" {
		return "stub_tool"
	}
	return s.name
}

func (s *stubTool) Call(_ context.Context, params map[string]any) (map[string]any, error) {
	i := s.calls
	s.calls++
	s.params = append(s.params, params)
	if i >= len(s.results) {
		return nil, errors.New("stub exhausted")
	}
	r := s.results[i]
	if r.panic != nil {
		panic(r.panic)
	}
	return r.out, r.err
}

var _ Tool = (*stubTool)(nil)

// stubAgent replies with a fixed message and optional events.
type stubAgent struct {
	name   string
	desc   string
	reply  string
	events []Event
	err    error
	calls  int
	lastIn Message
}

func (s *stubAgent) Name() string        { return s.name }
func (s *stubAgent) Description() string { return s.desc }

func (s *stubAgent) Handle(_ context.Context, msg Message) (AgentResult, error) {
	s.calls++
	s.lastIn = msg
	if s.err != nil {
		return AgentResult{}, s.err
	}
	return AgentResult{
		Message: NewMessage(s.name, s.reply),
		Events:  s.events,
	}, nil
}

var _ Agent = (*stubAgent)(nil)

// stubCoordinator returns a fixed decision.
type stubCoordinator struct {
	stubAgent
	decision CoordinatorDecision
	decErr   error
}

func (s *stubCoordinator) Decide(_ context.Context, _ string, _ TeamMemoryContext, _ []AgentCapability) (CoordinatorDecision, error) {
	return s.decision, s.decErr
}

var _ Coordinator = (*stubCoordinator)(nil)

// stubSuggester returns a fixed fix plan.
type stubSuggester struct {
	plan  FixPlan
	err   error
	calls int
}

func (s *stubSuggester) Suggest(_ context.Context, _ Task, _ *ToolError) (FixPlan, error) {
	s.calls++
	return s.plan, s.err
}

var _ FixSuggester = (*stubSuggester)(nil)
