package organizer

import "context"

// Tool is a named side-effecting callable, typically an external API.
// Call takes named parameters and returns a structured payload or an error.
// Tools are free to perform I/O; the runner converts any failure (including
// panics) into a ToolError.
type Tool interface {
	Name() string
	Call(ctx context.Context, params map[string]any) (map[string]any, error)
}

// toolFunc adapts a plain function to the Tool interface.
type toolFunc struct {
	name string
	fn   func(ctx context.Context, params map[string]any) (map[string]any, error)
}

func (t toolFunc) Name() string { return t.name }

func (t toolFunc) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	return t.fn(ctx, params)
}

// NewTool wraps fn as a named Tool.
func NewTool(name string, fn func(ctx context.Context, params map[string]any) (map[string]any, error)) Tool {
	return toolFunc{name: name, fn: fn}
}

// ToolResult is the legacy structured tool outcome kept for wrappers that
// predate the TraceEvent pipeline.
type ToolResult struct {
	OK            bool           `json:"ok"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	Timestamp     string         `json:"timestamp"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}
