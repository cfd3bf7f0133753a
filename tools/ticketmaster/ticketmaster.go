// Package ticketmaster provides an events tool backed by the Ticketmaster
// Discovery API. Requires the TICKETMASTER_API_KEY environment variable or
// an explicit key option.
package ticketmaster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/trailnote/organizer"
)

const defaultBaseURL = "https://app.ticketmaster.com/discovery/v2/events.json"

// Events lists events for a city and day in the planner's event shape.
type Events struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

var _ organizer.Tool = (*Events)(nil)

// Option configures an Events tool.
type Option func(*Events)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(e *Events) {
		if u != "" {
			e.baseURL = u
		}
	}
}

// WithAPIKey sets the API key explicitly instead of reading the
// environment.
func WithAPIKey(key string) Option {
	return func(e *Events) { e.apiKey = key }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Events) {
		if c != nil {
			e.client = c
		}
	}
}

// WithClock overrides the clock used to resolve "tomorrow".
func WithClock(now func() time.Time) Option {
	return func(e *Events) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds the Ticketmaster events tool.
func New(opts ...Option) *Events {
	e := &Events{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Events) Name() string { return "ticketmaster_events" }

// Call expects params: city (string, required), date ("YYYY-MM-DD" or
// "tomorrow"), category (string, default "any"). Returns
// {city, date, category, events: [...], source}.
func (e *Events) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	city, _ := params["city"].(string)
	if city == "" {
		return nil, fmt.Errorf("ticketmaster: missing city")
	}
	dateStr, _ := params["date"].(string)
	if dateStr == "" {
		dateStr = "tomorrow"
	}
	category, _ := params["category"].(string)
	if category == "" {
		category = "any"
	}

	apiKey := e.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("TICKETMASTER_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ticketmaster: missing env var TICKETMASTER_API_KEY")
	}

	day, err := e.resolveDate(dateStr)
	if err != nil {
		return nil, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("apikey", apiKey)
	q.Set("city", city)
	q.Set("size", "20")
	q.Set("startDateTime", start.Format("2006-01-02T15:04:05Z"))
	q.Set("endDateTime", end.Format("2006-01-02T15:04:05Z"))
	if category != "any" {
		q.Set("classificationName", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &organizer.HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	dayISO := day.Format("2006-01-02")
	return map[string]any{
		"city":     city,
		"date":     dayISO,
		"category": category,
		"events":   flattenEvents(raw, city, dayISO),
		"source":   "ticketmaster",
	}, nil
}

func (e *Events) resolveDate(dateStr string) (time.Time, error) {
	if strings.EqualFold(dateStr, "tomorrow") {
		return e.now().UTC().AddDate(0, 0, 1), nil
	}
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("ticketmaster: invalid date format %q: %w", dateStr, err)
	}
	return t, nil
}

// flattenEvents maps the Discovery payload to the planner's event shape.
// Ticketmaster rarely reports indoor/outdoor, so venue-backed events are
// assumed indoor. Price is left unset; it needs extra API fields.
func flattenEvents(raw map[string]any, city, dayISO string) []map[string]any {
	out := []map[string]any{}
	embedded, _ := raw["_embedded"].(map[string]any)
	events, _ := embedded["events"].([]any)
	for _, item := range events {
		ev, _ := item.(map[string]any)
		if ev == nil {
			continue
		}
		title, _ := ev["name"].(string)
		if title == "" {
			title = "Untitled"
		}

		dates, _ := ev["dates"].(map[string]any)
		startInfo, _ := dates["start"].(map[string]any)
		localDate, _ := startInfo["localDate"].(string)
		if localDate == "" {
			localDate = dayISO
		}
		localTime, _ := startInfo["localTime"].(string)
		startHHMM := "19:00"
		if len(localTime) >= 5 {
			startHHMM = localTime[:5]
		}

		entry := map[string]any{
			"title":     title,
			"city":      city,
			"date":      localDate,
			"start":     startHHMM,
			"price_pln": nil,
			"indoor":    true,
		}
		// The event page URL feeds the webpage tool for detail lookups.
		if u, _ := ev["url"].(string); u != "" {
			entry["url"] = u
		}
		out = append(out, entry)
	}
	return out
}
