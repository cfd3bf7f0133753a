package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trailnote/organizer"
)

// Weather answers weather questions. It calls its tool through the retry
// engine; when retries run out it asks the recovery agent for a fix plan
// and applies it once before giving up.
type Weather struct {
	name       string
	tool       organizer.Tool
	fallback   map[string]organizer.Tool
	recovery   *organizer.RecoveryAgent
	policy     organizer.RetryPolicy
	normalizer organizer.Tool
	logger     *slog.Logger
}

var _ organizer.Agent = (*Weather)(nil)

// WeatherOption configures a Weather agent.
type WeatherOption func(*Weather)

// WithWeatherRecovery installs the recovery agent consulted after
// exhausted retries.
func WithWeatherRecovery(r *organizer.RecoveryAgent) WeatherOption {
	return func(w *Weather) { w.recovery = r }
}

// WithWeatherFallback registers a tool the recovery agent may switch to.
func WithWeatherFallback(tool organizer.Tool) WeatherOption {
	return func(w *Weather) { w.fallback[tool.Name()] = tool }
}

// WithWeatherCityNormalizer sets the tool that rewrites declined city names
// to the nominative before geocoding.
func WithWeatherCityNormalizer(tool organizer.Tool) WeatherOption {
	return func(w *Weather) { w.normalizer = tool }
}

// WithWeatherRetryPolicy overrides the retry policy.
func WithWeatherRetryPolicy(p organizer.RetryPolicy) WeatherOption {
	return func(w *Weather) { w.policy = p }
}

// WithWeatherLogger sets the agent's logger.
func WithWeatherLogger(l *slog.Logger) WeatherOption {
	return func(w *Weather) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWeather builds the weather agent around a weather tool.
func NewWeather(tool organizer.Tool, opts ...WeatherOption) *Weather {
	w := &Weather{
		name:     "weather",
		tool:     tool,
		fallback: make(map[string]organizer.Tool),
		policy:   organizer.DefaultRetryPolicy(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Weather) Name() string { return w.name }

func (w *Weather) Description() string {
	return "answers weather questions for a city and day"
}

func (w *Weather) Handle(ctx context.Context, msg organizer.Message) (organizer.AgentResult, error) {
	city, ok := ResolveCity(ctx, msg.Content, w.normalizer)
	if !ok {
		city = "Warszawa"
	}
	params := map[string]any{"location": city, "date": "tomorrow"}

	var events []organizer.Event

	result, traces, err := organizer.CallToolWithRetry(ctx, w.tool, params, w.policy, w.name, msg.CorrelationID,
		organizer.WithRetryLogger(w.logger))
	events = append(events, traceEvents(w.name, traces)...)

	if err != nil {
		var exceeded *organizer.RetryExceededError
		if !errors.As(err, &exceeded) || w.recovery == nil {
			return organizer.AgentResult{Events: events}, err
		}
		recovered, recEvents, recErr := w.applyFixPlan(ctx, params, exceeded)
		events = append(events, recEvents...)
		if recErr != nil {
			return organizer.AgentResult{Events: events}, recErr
		}
		result = recovered
	}

	events = append(events, organizer.NewEvent(organizer.EventObservation, w.name, w.tool.Name(), map[string]any{
		"summary":     result["summary"],
		"temp_c":      result["temp_c"],
		"precip_prob": result["precip_prob"],
	}).WithCorrelationID(msg.CorrelationID))

	content := fmt.Sprintf("Pogoda w %v (%v): %v, %v°C, opady %v%%.",
		result["location"], result["date"], result["summary"], result["temp_c"], result["precip_prob"])

	return organizer.AgentResult{
		Message: organizer.NewMessage(w.name, content),
		Payload: result,
		Events:  events,
	}, nil
}

// applyFixPlan executes one recovery round: patched retry, plain retry or a
// fallback tool. A fail plan surfaces the original error.
func (w *Weather) applyFixPlan(ctx context.Context, params map[string]any, exceeded *organizer.RetryExceededError) (map[string]any, []organizer.Event, error) {
	task := organizer.Task{Name: "weather_query", Target: w.tool.Name(), Inputs: params}
	plan := w.recovery.Plan(ctx, task, exceeded.Last)

	w.logger.Info("applying recovery plan",
		slog.String("action", string(plan.Action)),
		slog.String("reason", plan.Reason))

	var (
		tool   = w.tool
		inputs = params
	)
	switch plan.Action {
	case organizer.FixRetrySame:
	case organizer.FixRetryWithParams:
		inputs = mergeParams(params, plan.ParamsPatch)
	case organizer.FixFallbackTool:
		fb, ok := w.fallback[plan.FallbackToolName]
		if !ok {
			return nil, nil, fmt.Errorf("recovery suggested unknown fallback tool %q: %w", plan.FallbackToolName, exceeded)
		}
		tool = fb
		inputs = mergeParams(params, plan.ParamsPatch)
	default:
		return nil, nil, exceeded
	}

	result, trace := organizer.CallToolWithTrace(ctx, tool, inputs, w.name, "")
	events := traceEvents(w.name, []organizer.TraceEvent{trace})
	if trace.Error != nil {
		return nil, events, fmt.Errorf("recovery attempt failed: %w", trace.Error)
	}
	return result, events, nil
}

// traceEvents lifts legacy tool traces into unified tool_call events.
func traceEvents(actor string, traces []organizer.TraceEvent) []organizer.Event {
	out := make([]organizer.Event, 0, len(traces))
	for _, tr := range traces {
		data := map[string]any{"outcome": tr.Outcome}
		if tr.Error != nil {
			data["error_type"] = tr.Error.Type
			data["error_code"] = tr.Error.Code
		}
		out = append(out, organizer.NewEvent(organizer.EventToolCall, actor, tr.Target, data).
			WithCorrelationID(tr.CorrelationID))
	}
	return out
}

func mergeParams(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
