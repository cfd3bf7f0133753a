// Package organizer is a multi-agent orchestration runtime: a coordinator
// routes each user turn to exactly one worker agent, agents call external
// tools through a runner that standardizes failures, a retry policy and a
// recovery agent repair transient or structured errors, and a team memory
// condenses the event stream into a bounded context fed back to the
// coordinator on the next turn.
//
// The user-visible output of a turn is a single reply Message; the internal
// output is a fully structured, replayable event log.
//
// Core pieces:
//
//   - Orchestrator: serializes turns, owns the event logs and TeamMemory.
//   - Coordinator: returns a CoordinatorDecision (JSON-shaped contract).
//   - CallToolWithTrace / CallToolWithRetry: tool invocation pipeline.
//   - RecoveryAgent: proposes a FixPlan from a ToolError.
//   - TeamMemory: rolling summary, facts, scratchpad, recent events.
//   - ReplayHistoryFromEvents: rebuilds agent replies from the event log.
//
// Concrete agents live in the agents subpackage, tool implementations under
// tools/, preference stores under store/, and OTEL-backed observability in
// observer.
package organizer
