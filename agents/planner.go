package agents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/trailnote/organizer"
)

// Planner builds a simple day plan: it fetches the weather and the event
// list through its tools, filters to indoor events when rain is likely,
// and lays out a non-overlapping timeline capped by the user's
// preferences.
type Planner struct {
	name        string
	weatherTool organizer.Tool
	eventsTool  organizer.Tool
	detailTool  organizer.Tool
	prefs       organizer.Preferences
	normalizer  organizer.Tool
	logger      *slog.Logger
}

var _ organizer.Agent = (*Planner)(nil)

// PlannerOption configures a Planner agent.
type PlannerOption func(*Planner)

// WithPlannerPreferences overrides the default planning preferences.
func WithPlannerPreferences(p organizer.Preferences) PlannerOption {
	return func(pl *Planner) { pl.prefs = p }
}

// WithPlannerDetailTool sets the tool used to fetch the page of the first
// planned event that carries a URL. Lookup failures only drop the detail
// line, never the plan.
func WithPlannerDetailTool(tool organizer.Tool) PlannerOption {
	return func(pl *Planner) { pl.detailTool = tool }
}

// WithPlannerCityNormalizer sets the tool that rewrites declined city names
// to the nominative.
func WithPlannerCityNormalizer(tool organizer.Tool) PlannerOption {
	return func(pl *Planner) { pl.normalizer = tool }
}

// WithPlannerLogger sets the agent's logger.
func WithPlannerLogger(l *slog.Logger) PlannerOption {
	return func(pl *Planner) {
		if l != nil {
			pl.logger = l
		}
	}
}

// NewPlanner builds the planner agent around a weather and an events tool.
func NewPlanner(weatherTool, eventsTool organizer.Tool, opts ...PlannerOption) *Planner {
	p := &Planner{
		name:        "planner",
		weatherTool: weatherTool,
		eventsTool:  eventsTool,
		prefs:       organizer.DefaultPreferences(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Name() string { return p.name }

func (p *Planner) Description() string {
	return "plans a day of activities around the weather and local events"
}

func (p *Planner) Handle(ctx context.Context, msg organizer.Message) (organizer.AgentResult, error) {
	city, ok := ResolveCity(ctx, msg.Content, p.normalizer)
	if !ok {
		city = "Warszawa"
	}
	date := "tomorrow"

	var events []organizer.Event

	weather, trace := organizer.CallToolWithTrace(ctx, p.weatherTool,
		map[string]any{"location": city, "date": date}, p.name, msg.CorrelationID)
	events = append(events, traceEvents(p.name, []organizer.TraceEvent{trace})...)
	if trace.Error != nil {
		return organizer.AgentResult{Events: events}, trace.Error
	}

	payload, trace := organizer.CallToolWithTrace(ctx, p.eventsTool,
		map[string]any{"city": city, "date": date, "category": p.prefs.Category}, p.name, msg.CorrelationID)
	events = append(events, traceEvents(p.name, []organizer.TraceEvent{trace})...)
	if trace.Error != nil {
		return organizer.AgentResult{Events: events}, trace.Error
	}

	candidates := eventList(payload)
	rainy := intValue(weather["precip_prob"]) > 60
	chosen := p.pickTimeline(candidates, rainy)

	events = append(events, organizer.NewEvent(organizer.EventObservation, p.name, p.eventsTool.Name(), map[string]any{
		"candidates": len(candidates),
		"chosen":     len(chosen),
	}).WithCorrelationID(msg.CorrelationID))

	if len(chosen) == 0 {
		content := fmt.Sprintf("Nie znalazłem sensownego planu dla %s (%s). Pogoda: %v.",
			city, date, valueOr(weather["summary"], "?"))
		return organizer.AgentResult{
			Message: organizer.NewMessage(p.name, content),
			Events:  events,
		}, nil
	}

	lines := []string{
		fmt.Sprintf("Plan dla %s (%s)", city, date),
		fmt.Sprintf("Pogoda: %v, %v°C, opady %v%%",
			valueOr(weather["summary"], "?"), valueOr(weather["temp_c"], "?"), valueOr(weather["precip_prob"], "?")),
		"Oś czasu:",
	}
	for _, e := range chosen {
		kind := "outdoor"
		if indoor, _ := e["indoor"].(bool); indoor {
			kind = "indoor"
		}
		lines = append(lines, fmt.Sprintf("- %v, %v (%s, %v PLN)",
			e["start"], e["title"], kind, valueOr(e["price_pln"], "?")))
	}
	if p.detailTool != nil {
		if line, detailEvents := p.eventDetail(ctx, chosen, msg.CorrelationID); len(detailEvents) > 0 {
			events = append(events, detailEvents...)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	if rainy {
		lines = append(lines, "Uwzględniłem tylko wydarzenia indoor, bo wygląda na deszcz.")
	}

	return organizer.AgentResult{
		Message: organizer.NewMessage(p.name, strings.Join(lines, "\n")),
		Payload: map[string]any{"weather": weather, "plan": chosen},
		Events:  events,
	}, nil
}

// pickTimeline filters, sorts by start hour and greedily selects
// non-overlapping events up to the preferred count.
func (p *Planner) pickTimeline(candidates []map[string]any, rainy bool) []map[string]any {
	events := make([]map[string]any, 0, len(candidates))
	for _, e := range candidates {
		if rainy {
			if indoor, _ := e["indoor"].(bool); !indoor {
				continue
			}
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return parseHour(events[i]) < parseHour(events[j])
	})

	var chosen []map[string]any
	lastEnd := -1
	for _, e := range events {
		start := parseHour(e)
		if lastEnd < 0 || start >= lastEnd {
			chosen = append(chosen, e)
			lastEnd = start + p.prefs.EventDurationHours
		}
		if len(chosen) >= p.prefs.MaxItems {
			break
		}
	}
	return chosen
}

// eventDetail fetches the page of the first planned event with a URL and
// renders a one-line excerpt.
func (p *Planner) eventDetail(ctx context.Context, chosen []map[string]any, cid string) (string, []organizer.Event) {
	for _, e := range chosen {
		u, _ := e["url"].(string)
		if u == "" {
			continue
		}
		detail, trace := organizer.CallToolWithTrace(ctx, p.detailTool, map[string]any{"url": u}, p.name, cid)
		events := traceEvents(p.name, []organizer.TraceEvent{trace})
		if trace.Error != nil {
			p.logger.Warn("event detail lookup failed",
				slog.String("url", u), slog.String("error", trace.Error.Message))
			return "", events
		}
		content, _ := detail["content"].(string)
		if content == "" {
			return "", events
		}
		return fmt.Sprintf("Szczegóły (%v): %s", e["title"], excerpt(content, 160)), events
	}
	return "", nil
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func eventList(payload map[string]any) []map[string]any {
	var out []map[string]any
	switch raw := payload["events"].(type) {
	case []map[string]any:
		out = raw
	case []any:
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// parseHour reads the hour of "18:00"-style start fields.
func parseHour(e map[string]any) int {
	s, _ := e["start"].(string)
	if i := strings.IndexByte(s, ':'); i > 0 {
		if h, err := strconv.Atoi(s[:i]); err == nil {
			return h
		}
	}
	return 0
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func valueOr(v any, def string) any {
	if v == nil {
		return def
	}
	return v
}
