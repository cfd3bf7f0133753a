package organizer

import "fmt"

// CoordinatorDecision is the routing directive for one turn: which agent
// goes next, what it should do, and what output the coordinator expects
// back. NeededTools is advisory and not enforced against the target agent.
type CoordinatorDecision struct {
	NextAgent      string   `json:"next_agent"`
	Task           string   `json:"task"`
	ExpectedOutput string   `json:"expected_output"`
	Stop           bool     `json:"stop"`
	NeededTools    []string `json:"needed_tools,omitempty"`
}

// Validate checks the decision's required fields. A stop decision is always
// valid; otherwise next_agent, task and expected_output must be non-empty.
func (d CoordinatorDecision) Validate() error {
	if d.Stop {
		return nil
	}
	if d.NextAgent == "" {
		return fmt.Errorf("%w: empty next_agent", ErrInvalidDecision)
	}
	if d.Task == "" {
		return fmt.Errorf("%w: empty task", ErrInvalidDecision)
	}
	if d.ExpectedOutput == "" {
		return fmt.Errorf("%w: empty expected_output", ErrInvalidDecision)
	}
	return nil
}

// DecisionFromMap deserializes a loosely typed mapping, as produced by JSON
// decoding, into a CoordinatorDecision.
func DecisionFromMap(m map[string]any) CoordinatorDecision {
	d := CoordinatorDecision{
		NextAgent:      stringField(m, "next_agent"),
		Task:           stringField(m, "task"),
		ExpectedOutput: stringField(m, "expected_output"),
	}
	if stop, ok := m["stop"].(bool); ok {
		d.Stop = stop
	}
	if raw, ok := m["needed_tools"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				d.NeededTools = append(d.NeededTools, s)
			}
		}
	}
	return d
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
