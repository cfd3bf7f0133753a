package organizer

import "context"

// Agent is a named worker. Handle receives the routed task as a Message and
// returns an AgentResult whose Message is the agent's reply; Events carries
// any tool_call/observation/critique events the agent emitted while working.
type Agent interface {
	Name() string
	Description() string
	Handle(ctx context.Context, msg Message) (AgentResult, error)
}

// AgentResult is the full outcome of one Handle call. Payload is optional
// structured data alongside the textual reply.
type AgentResult struct {
	Message Message
	Payload map[string]any
	Events  []Event
}

// AgentCapability is the coordinator-facing description of a registered
// agent.
type AgentCapability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Coordinator is an agent that can also route: given the user goal, the
// team's condensed memory and the capability list, it decides which agent
// acts next or whether the conversation should stop.
type Coordinator interface {
	Agent
	Decide(ctx context.Context, userGoal string, teamCtx TeamMemoryContext, agents []AgentCapability) (CoordinatorDecision, error)
}

// ReplyResult lifts a plain reply message into an AgentResult.
func ReplyResult(msg Message) AgentResult {
	return AgentResult{Message: msg}
}
