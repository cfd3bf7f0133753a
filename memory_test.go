package organizer

import (
	"strings"
	"testing"
)

func TestTeamMemory_CondensesEveryN(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(4))

	for i := 0; i < 3; i++ {
		m.AddEvent(NewEvent(EventRoute, "orchestrator", "weather", nil))
	}
	if m.CondensedEvents() != 0 {
		t.Fatalf("condensed = %d before threshold, want 0", m.CondensedEvents())
	}

	m.AddEvent(NewEvent(EventRespond, "weather", "user", map[string]any{"content": "ok"}))
	if m.CondensedEvents() != 4 {
		t.Fatalf("condensed = %d, want 4", m.CondensedEvents())
	}

	ctx := m.Context()
	if !strings.HasPrefix(ctx.RollingSummary, "[summary] +4 events ") {
		t.Fatalf("rolling summary = %q", ctx.RollingSummary)
	}
	if !strings.Contains(ctx.RollingSummary, "counts=respond:1, route:3") {
		t.Errorf("summary counts wrong: %q", ctx.RollingSummary)
	}
}

func TestTeamMemory_SummaryBlockFormat(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(2))
	m.AddEvent(NewEvent(EventRoute, "orchestrator", "weather", nil))
	m.AddEvent(NewEvent(EventToolCall, "weather", "open_meteo_weather", map[string]any{"outcome": "success"}))

	// Header, counts and highlights are separate lines of one block.
	want := "[summary] +2 events \n" +
		"counts=route:1, tool_call:1\n" +
		"highlights:\n" +
		"- tool_call: open_meteo_weather data={outcome:success}"
	if got := m.Context().RollingSummary; got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}

	plain := NewTeamMemory(WithSummarizeEvery(2))
	plain.AddEvent(NewEvent(EventRoute, "a", "b", nil))
	plain.AddEvent(NewEvent(EventRoute, "a", "b", nil))
	if got, want := plain.Context().RollingSummary, "[summary] +2 events \ncounts=route:2"; got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestTeamMemory_SummaryHighlights(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(3))

	m.AddEvent(NewEvent(EventDecision, "coordinator", "weather", map[string]any{"task": "forecast", "stop": false}))
	m.AddEvent(NewEvent(EventToolCall, "weather", "open_meteo_weather", map[string]any{"outcome": "success"}))
	m.AddEvent(NewEvent(EventRespond, "weather", "user", map[string]any{"content": "ok"}))

	summary := m.Context().RollingSummary
	if !strings.Contains(summary, "highlights:") {
		t.Fatalf("no highlights in %q", summary)
	}
	if !strings.Contains(summary, "- decision: coordinator->weather") {
		t.Errorf("decision highlight missing: %q", summary)
	}
	if !strings.Contains(summary, "- tool_call: open_meteo_weather") {
		t.Errorf("tool_call highlight missing: %q", summary)
	}
	if strings.Contains(summary, "- respond") {
		t.Errorf("respond should not be highlighted: %q", summary)
	}
}

func TestTeamMemory_ZeroDisablesCondensation(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(0))
	for i := 0; i < 50; i++ {
		m.AddEvent(NewEvent(EventRoute, "a", "b", nil))
	}
	if m.CondensedEvents() != 0 {
		t.Fatalf("condensed = %d with condensation off", m.CondensedEvents())
	}
	if m.Context().RollingSummary != "" {
		t.Fatalf("summary = %q, want empty", m.Context().RollingSummary)
	}
}

func TestTeamMemory_FactsDeduplicated(t *testing.T) {
	m := NewTeamMemory()
	m.AddFacts("  user prefers indoor events  ", "", "budget is 300 PLN")
	m.AddFacts("user prefers indoor events", "budget is 300 PLN", "city is Kraków")

	facts := m.Context().Facts
	want := []string{"user prefers indoor events", "budget is 300 PLN", "city is Kraków"}
	if len(facts) != len(want) {
		t.Fatalf("facts = %v, want %v", facts, want)
	}
	for i := range want {
		if facts[i] != want[i] {
			t.Errorf("facts[%d] = %q, want %q", i, facts[i], want[i])
		}
	}
}

func TestTeamMemory_ScratchpadBounded(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(0), WithKeepScratchpad(4))
	limit := 30 // max(4*3, 30)

	for i := 0; i < 100; i++ {
		m.AddEvent(NewEvent(EventObservation, "weather", "tool", map[string]any{"i": i}))
		if len(m.scratchpad) > limit {
			t.Fatalf("scratchpad grew to %d, limit %d", len(m.scratchpad), limit)
		}
	}

	ctx := m.Context()
	if len(ctx.Scratchpad) != 4 {
		t.Fatalf("context scratchpad = %d entries, want 4", len(ctx.Scratchpad))
	}
}

func TestTeamMemory_ScratchpadLineFormat(t *testing.T) {
	m := NewTeamMemory()
	m.AddEvent(NewEvent(EventToolCall, "weather", "open_meteo_weather", map[string]any{
		"outcome": "success",
		"kind":    "forecast",
		"extra":   "dropped",
	}))
	m.AddEvent(NewEvent(EventRoute, "orchestrator", "weather", map[string]any{"text": "hidden"}))

	lines := m.Context().Scratchpad
	if lines[0] != "tool_call :: weather -> open_meteo_weather data={extra:dropped, kind:forecast}" {
		t.Errorf("tool_call line = %q", lines[0])
	}
	// route is not a detailed type; no data hint.
	if lines[1] != "route :: orchestrator -> weather" {
		t.Errorf("route line = %q", lines[1])
	}
}

func TestTeamMemory_ContextSnapshotIsCopy(t *testing.T) {
	m := NewTeamMemory()
	m.AddFacts("fact one")
	m.AddEvent(NewEvent(EventRoute, "a", "b", nil))

	ctx := m.Context()
	ctx.Facts[0] = "mutated"
	ctx.RecentEvents[0].Actor = "mutated"

	fresh := m.Context()
	if fresh.Facts[0] != "fact one" || fresh.RecentEvents[0].Actor != "a" {
		t.Fatal("snapshot mutation leaked into memory")
	}
}

func TestTeamMemory_KeepRecentWindow(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(0), WithKeepRecent(5))
	for i := 0; i < 20; i++ {
		m.AddEvent(NewEvent(EventRoute, "a", "b", nil))
	}
	if got := len(m.Context().RecentEvents); got != 5 {
		t.Fatalf("recent events = %d, want 5", got)
	}
	if got := len(m.Events()); got != 20 {
		t.Fatalf("full log = %d, want 20", got)
	}
}

func TestTeamMemory_Clear(t *testing.T) {
	m := NewTeamMemory(WithSummarizeEvery(2))
	m.AddFacts("fact")
	for i := 0; i < 4; i++ {
		m.AddEvent(NewEvent(EventRoute, "a", "b", nil))
	}
	m.Clear()

	ctx := m.Context()
	if len(ctx.Facts) != 0 || len(ctx.RecentEvents) != 0 || len(ctx.Scratchpad) != 0 || ctx.RollingSummary != "" {
		t.Fatalf("memory not empty after Clear: %+v", ctx)
	}
	if m.CondensedEvents() != 0 {
		t.Fatalf("condensed = %d after Clear", m.CondensedEvents())
	}
}
