package organizer

import (
	"fmt"
	"sort"
	"strings"
)

// TeamMemoryContext is the read-only snapshot handed to coordinators:
// a rolling summary of condensed history, stable facts, the short-term
// scratchpad and the most recent raw events.
type TeamMemoryContext struct {
	RollingSummary string   `json:"rolling_summary"`
	Facts          []string `json:"facts"`
	Scratchpad     []string `json:"scratchpad"`
	RecentEvents   []Event  `json:"recent_events"`
}

// TeamMemory is the team's bounded working memory. Events append only;
// every summarizeEvery events get condensed into a deterministic summary
// block so the memory footprint stays flat over long sessions.
//
// Not safe for concurrent use; the orchestrator serializes access.
type TeamMemory struct {
	events              []Event
	summaryBlocks       []string
	condensedEvents     int
	facts               []string
	scratchpad          []string
	lastSummarizedIndex int

	summarizeEvery int
	keepRecent     int
	keepScratchpad int
}

// MemoryOption configures a TeamMemory.
type MemoryOption func(*TeamMemory)

// WithSummarizeEvery sets the condensation chunk size. Zero disables
// condensation.
func WithSummarizeEvery(n int) MemoryOption {
	return func(m *TeamMemory) {
		if n >= 0 {
			m.summarizeEvery = n
		}
	}
}

// WithKeepRecent sets how many raw events a context snapshot includes.
func WithKeepRecent(n int) MemoryOption {
	return func(m *TeamMemory) {
		if n > 0 {
			m.keepRecent = n
		}
	}
}

// WithKeepScratchpad sets the scratchpad window size.
func WithKeepScratchpad(n int) MemoryOption {
	return func(m *TeamMemory) {
		if n > 0 {
			m.keepScratchpad = n
		}
	}
}

// NewTeamMemory builds a TeamMemory with defaults of 12/20/12 for
// summarize-every, keep-recent and keep-scratchpad.
func NewTeamMemory(opts ...MemoryOption) *TeamMemory {
	m := &TeamMemory{
		summarizeEvery: 12,
		keepRecent:     20,
		keepScratchpad: 12,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddEvent appends an event, maintains the scratchpad and condenses a chunk
// of history once enough events are pending.
func (m *TeamMemory) AddEvent(ev Event) {
	m.events = append(m.events, ev)
	m.scratchpad = append(m.scratchpad, scratchpadLine(ev))

	if limit := maxInt(m.keepScratchpad*3, 30); len(m.scratchpad) > limit {
		keep := maxInt(m.keepScratchpad*2, 20)
		m.scratchpad = append([]string(nil), m.scratchpad[len(m.scratchpad)-keep:]...)
	}

	if m.summarizeEvery <= 0 {
		return
	}
	for len(m.events)-m.lastSummarizedIndex >= m.summarizeEvery {
		chunk := m.events[m.lastSummarizedIndex : m.lastSummarizedIndex+m.summarizeEvery]
		m.summaryBlocks = append(m.summaryBlocks, summarizeChunk(chunk))
		m.lastSummarizedIndex += m.summarizeEvery
		m.condensedEvents = m.lastSummarizedIndex
		if len(m.scratchpad) > m.keepScratchpad {
			m.scratchpad = append([]string(nil), m.scratchpad[len(m.scratchpad)-m.keepScratchpad:]...)
		}
	}
}

// AddFacts records durable facts, trimming whitespace and dropping empties
// and duplicates while preserving insertion order.
func (m *TeamMemory) AddFacts(facts ...string) {
	for _, f := range facts {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		dup := false
		for _, existing := range m.facts {
			if existing == f {
				dup = true
				break
			}
		}
		if !dup {
			m.facts = append(m.facts, f)
		}
	}
}

// Context returns a snapshot of the memory. The returned slices are copies;
// mutating them does not affect the memory.
func (m *TeamMemory) Context() TeamMemoryContext {
	scratch := m.scratchpad
	if len(scratch) > m.keepScratchpad {
		scratch = scratch[len(scratch)-m.keepScratchpad:]
	}
	recent := m.events
	if len(recent) > m.keepRecent {
		recent = recent[len(recent)-m.keepRecent:]
	}
	return TeamMemoryContext{
		RollingSummary: strings.TrimSpace(strings.Join(m.summaryBlocks, "\n")),
		Facts:          append([]string(nil), m.facts...),
		Scratchpad:     append([]string(nil), scratch...),
		RecentEvents:   append([]Event(nil), recent...),
	}
}

// CondensedEvents reports how many events have been folded into summary
// blocks so far.
func (m *TeamMemory) CondensedEvents() int { return m.condensedEvents }

// Events returns a copy of the full event log.
func (m *TeamMemory) Events() []Event {
	return append([]Event(nil), m.events...)
}

// Clear resets the memory to its initial empty state.
func (m *TeamMemory) Clear() {
	m.events = nil
	m.summaryBlocks = nil
	m.condensedEvents = 0
	m.facts = nil
	m.scratchpad = nil
	m.lastSummarizedIndex = 0
}

// --- condensation ---

// detailedEventTypes get a short data hint in scratchpad lines and summary
// highlights.
var detailedEventTypes = map[EventType]bool{
	EventToolCall:    true,
	EventObservation: true,
	EventCritique:    true,
	EventDecision:    true,
	EventError:       true,
}

func scratchpadLine(ev Event) string {
	line := fmt.Sprintf("%s :: %s -> %s", ev.Type, ev.Actor, ev.Target)
	if hint := dataHint(ev); hint != "" {
		line += " data=" + hint
	}
	return line
}

// dataHint renders the first two keys of ev.Data, key-sorted for
// determinism, as "{k1:v1, k2:v2}".
func dataHint(ev Event) string {
	if !detailedEventTypes[ev.Type] || len(ev.Data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 2 {
		keys = keys[:2]
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%v", k, ev.Data[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// summarizeChunk folds a chunk of events into one deterministic text block:
// a per-type count line plus up to six highlight lines.
func summarizeChunk(chunk []Event) string {
	counts := make(map[EventType]int)
	for _, ev := range chunk {
		counts[ev.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	countParts := make([]string, len(types))
	for i, t := range types {
		countParts[i] = fmt.Sprintf("%s:%d", t, counts[EventType(t)])
	}

	parts := []string{
		fmt.Sprintf("[summary] +%d events ", len(chunk)),
		"counts=" + strings.Join(countParts, ", "),
	}

	var highlights []string
	for _, ev := range chunk {
		if len(highlights) >= 6 {
			break
		}
		switch ev.Type {
		case EventDecision, EventCritique, EventError, EventToolCall:
			hint := ""
			if h := dataHint(ev); h != "" {
				hint = " data=" + h
			}
			if ev.Type == EventToolCall {
				highlights = append(highlights, fmt.Sprintf("- tool_call: %s%s", ev.Target, hint))
			} else {
				highlights = append(highlights, fmt.Sprintf("- %s: %s->%s%s", ev.Type, ev.Actor, ev.Target, hint))
			}
		}
	}
	if len(highlights) > 0 {
		parts = append(parts, "highlights:\n"+strings.Join(highlights, "\n"))
	}
	return strings.Join(parts, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
