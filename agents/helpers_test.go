package agents

import (
	"context"
	"errors"

	"github.com/trailnote/organizer"
)

// fakeTool returns queued results in order and records call params.
type fakeTool struct {
	name    string
	calls   int
	params  []map[string]any
	results []fakeResult
}

type fakeResult struct {
	out map[string]any
	err error
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Call(_ context.Context, params map[string]any) (map[string]any, error) {
	i := f.calls
	f.calls++
	f.params = append(f.params, params)
	if i >= len(f.results) {
		return nil, errors.New("fake exhausted")
	}
	return f.results[i].out, f.results[i].err
}

var _ organizer.Tool = (*fakeTool)(nil)
