package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/trailnote/organizer"
)

// Stays suggests accommodation options via a housing tool.
type Stays struct {
	name       string
	tool       organizer.Tool
	normalizer organizer.Tool
	logger     *slog.Logger
	now        func() time.Time
}

var _ organizer.Agent = (*Stays)(nil)

// StaysOption configures a Stays agent.
type StaysOption func(*Stays)

// WithStaysLogger sets the agent's logger.
func WithStaysLogger(l *slog.Logger) StaysOption {
	return func(s *Stays) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStaysCityNormalizer sets the tool that rewrites declined city names
// to the nominative.
func WithStaysCityNormalizer(tool organizer.Tool) StaysOption {
	return func(s *Stays) { s.normalizer = tool }
}

// WithStaysClock overrides the clock used for default check-in dates.
func WithStaysClock(now func() time.Time) StaysOption {
	return func(s *Stays) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStays builds the stays agent around a housing tool.
func NewStays(tool organizer.Tool, opts ...StaysOption) *Stays {
	s := &Stays{
		name:   "stays",
		tool:   tool,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stays) Name() string { return s.name }

func (s *Stays) Description() string {
	return "finds accommodation options for a city"
}

func (s *Stays) Handle(ctx context.Context, msg organizer.Message) (organizer.AgentResult, error) {
	city, ok := ResolveCity(ctx, msg.Content, s.normalizer)
	if !ok {
		city = "Warszawa"
	}
	checkin := s.now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	checkout := s.now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	params := map[string]any{"city": city, "checkin": checkin, "checkout": checkout}
	result, trace := organizer.CallToolWithTrace(ctx, s.tool, params, s.name, msg.CorrelationID)
	events := traceEvents(s.name, []organizer.TraceEvent{trace})
	if trace.Error != nil {
		return organizer.AgentResult{Events: events}, trace.Error
	}

	stays, _ := result["stays"].([]map[string]any)
	if stays == nil {
		if raw, ok := result["stays"].([]any); ok {
			for _, item := range raw {
				if m, ok := item.(map[string]any); ok {
					stays = append(stays, m)
				}
			}
		}
	}

	events = append(events, organizer.NewEvent(organizer.EventObservation, s.name, s.tool.Name(), map[string]any{
		"city":  city,
		"count": len(stays),
	}).WithCorrelationID(msg.CorrelationID))

	if len(stays) == 0 {
		return organizer.AgentResult{
			Message: organizer.NewMessage(s.name, fmt.Sprintf("Nie znalazłem noclegów w %s (%s - %s).", city, checkin, checkout)),
			Payload: result,
			Events:  events,
		}, nil
	}

	lines := []string{fmt.Sprintf("Noclegi w %s (%s - %s):", city, checkin, checkout)}
	for _, stay := range stays {
		lines = append(lines, fmt.Sprintf("- %v, %v PLN/noc, ocena %v",
			stay["name"], stay["price_pln_per_night"], stay["rating"]))
	}

	return organizer.AgentResult{
		Message: organizer.NewMessage(s.name, strings.Join(lines, "\n")),
		Payload: result,
		Events:  events,
	}, nil
}
