package organizer

import "fmt"

// Registry holds the team's agents in registration order. Not safe for
// concurrent mutation; the orchestrator registers everything up front.
type Registry struct {
	names  []string
	agents map[string]Agent
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent under its own name. Registering the same name
// twice fails with ErrDuplicateAgent.
func (r *Registry) Register(agent Agent) error {
	name := agent.Name()
	if name == "" {
		return fmt.Errorf("%w: empty agent name", ErrDuplicateAgent)
	}
	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, name)
	}
	r.names = append(r.names, name)
	r.agents[name] = agent
	return nil
}

// Get looks an agent up by name.
func (r *Registry) Get(name string) (Agent, error) {
	agent, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}
	return agent, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.agents[name]
	return ok
}

// ListNames returns the agent names in registration order.
func (r *Registry) ListNames() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ListCapabilities returns name/description pairs in registration order,
// the shape the coordinator sees.
func (r *Registry) ListCapabilities() []AgentCapability {
	out := make([]AgentCapability, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, AgentCapability{
			Name:        name,
			Description: r.agents[name].Description(),
		})
	}
	return out
}
