// Package housing holds the placeholder for a real accommodation provider.
// There is deliberately no integration yet; the tool fails loudly instead
// of pretending to work. Use the fake housing tool for development.
package housing

import (
	"context"
	"errors"

	"github.com/trailnote/organizer"
)

// Stub always fails with a descriptive error.
type Stub struct{}

var _ organizer.Tool = (*Stub)(nil)

// New returns the stub tool.
func New() *Stub { return &Stub{} }

func (s *Stub) Name() string { return "real_housing_stub" }

func (s *Stub) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	return nil, errors.New("real housing integration is provider-specific; use the fake housing tool or implement an adapter for your chosen provider")
}
