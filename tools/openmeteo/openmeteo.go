// Package openmeteo provides weather tools backed by the Open-Meteo
// geocoding and forecast APIs. No API key is required.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trailnote/organizer"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Geocoding resolves a place name to coordinates.
type Geocoding struct {
	baseURL string
	client  *http.Client
}

var _ organizer.Tool = (*Geocoding)(nil)

// GeocodingOption configures a Geocoding tool.
type GeocodingOption func(*Geocoding)

// WithGeocodingURL overrides the API endpoint.
func WithGeocodingURL(u string) GeocodingOption {
	return func(g *Geocoding) {
		if u != "" {
			g.baseURL = u
		}
	}
}

// WithGeocodingClient overrides the HTTP client.
func WithGeocodingClient(c *http.Client) GeocodingOption {
	return func(g *Geocoding) {
		if c != nil {
			g.client = c
		}
	}
}

// NewGeocoding builds the geocoding tool.
func NewGeocoding(opts ...GeocodingOption) *Geocoding {
	g := &Geocoding{
		baseURL: defaultGeocodingURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Geocoding) Name() string { return "open_meteo_geocoding" }

// Call expects params: location (string, required), count (int, default 1),
// language (string, default "en"). Returns the raw geocoding payload.
func (g *Geocoding) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	location, _ := params["location"].(string)
	if location == "" {
		return nil, fmt.Errorf("geocoding: missing location")
	}
	count := intParam(params, "count", 1)
	language := stringParam(params, "language", "en")

	q := url.Values{}
	q.Set("name", location)
	q.Set("count", fmt.Sprint(count))
	q.Set("language", language)
	q.Set("format", "json")

	return getJSON(ctx, g.client, g.baseURL+"?"+q.Encode())
}

// Weather geocodes a city, fetches the hourly forecast and condenses it
// into summary/temp/precip for one day, preferring the midday reading.
type Weather struct {
	forecastURL string
	geocoding   *Geocoding
	client      *http.Client
	now         func() time.Time
}

var _ organizer.Tool = (*Weather)(nil)

// WeatherOption configures a Weather tool.
type WeatherOption func(*Weather)

// WithForecastURL overrides the forecast endpoint.
func WithForecastURL(u string) WeatherOption {
	return func(w *Weather) {
		if u != "" {
			w.forecastURL = u
		}
	}
}

// WithWeatherClient overrides the HTTP client.
func WithWeatherClient(c *http.Client) WeatherOption {
	return func(w *Weather) {
		if c != nil {
			w.client = c
		}
	}
}

// WithGeocoding injects the geocoding tool used for city resolution.
func WithGeocoding(g *Geocoding) WeatherOption {
	return func(w *Weather) {
		if g != nil {
			w.geocoding = g
		}
	}
}

// WithClock overrides the clock used to resolve "tomorrow". Tests use this.
func WithClock(now func() time.Time) WeatherOption {
	return func(w *Weather) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWeather builds the weather tool.
func NewWeather(opts ...WeatherOption) *Weather {
	w := &Weather{
		forecastURL: defaultForecastURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.geocoding == nil {
		w.geocoding = NewGeocoding(WithGeocodingClient(w.client))
	}
	return w
}

func (w *Weather) Name() string { return "open_meteo_weather" }

// Call expects params: location (string, required), date (string,
// "YYYY-MM-DD" or "tomorrow").
func (w *Weather) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	location, _ := params["location"].(string)
	if location == "" {
		return nil, fmt.Errorf("weather: missing location")
	}
	dateStr := stringParam(params, "date", "tomorrow")

	lat, lon, resolved, err := w.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	target, err := w.resolveDate(dateStr)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", lat))
	q.Set("longitude", fmt.Sprintf("%.4f", lon))
	q.Set("hourly", "temperature_2m,precipitation_probability")
	q.Set("timezone", "auto")
	q.Set("timeformat", "iso8601")
	q.Set("forecast_days", "7")

	data, err := getJSON(ctx, w.client, w.forecastURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	temp, prec, err := pickMidday(data, target)
	if err != nil {
		return nil, err
	}

	summary := "pogodnie"
	if prec > 60 {
		summary = "deszczowo"
	}
	return map[string]any{
		"location":    resolved,
		"date":        target,
		"summary":     summary,
		"temp_c":      int(temp + 0.5),
		"precip_prob": int(prec + 0.5),
		"source":      "open-meteo",
	}, nil
}

func (w *Weather) geocode(ctx context.Context, location string) (lat, lon float64, resolved string, err error) {
	geo, err := w.geocoding.Call(ctx, map[string]any{"location": location, "count": 1, "language": "en"})
	if err != nil {
		return 0, 0, "", err
	}
	results, _ := geo["results"].([]any)
	if len(results) == 0 {
		return 0, 0, "", &organizer.NoResultsError{Provider: "open_meteo_geocoding", Query: location}
	}
	top, _ := results[0].(map[string]any)
	lat, _ = top["latitude"].(float64)
	lon, _ = top["longitude"].(float64)

	name := stringParam(top, "name", location)
	country := strings.TrimSpace(stringParam(top, "country", ""))
	resolved = name
	if country != "" {
		resolved = name + ", " + country
	}
	return lat, lon, resolved, nil
}

// resolveDate accepts "tomorrow" or an ISO date, returning "YYYY-MM-DD".
func (w *Weather) resolveDate(dateStr string) (string, error) {
	if strings.EqualFold(dateStr, "tomorrow") {
		return w.now().UTC().AddDate(0, 0, 1).Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return "", fmt.Errorf("weather: invalid date format %q: %w", dateStr, err)
	}
	return dateStr, nil
}

// pickMidday picks the 12:00 reading of the target day, falling back to the
// day's first reading.
func pickMidday(data map[string]any, target string) (temp, prec float64, err error) {
	hourly, _ := data["hourly"].(map[string]any)
	times, _ := hourly["time"].([]any)
	temps, _ := hourly["temperature_2m"].([]any)
	precs, _ := hourly["precipitation_probability"].([]any)

	pick := func(prefix string) (float64, float64, bool) {
		for i, t := range times {
			s, _ := t.(string)
			if !strings.HasPrefix(s, prefix) || i >= len(temps) || i >= len(precs) {
				continue
			}
			tv, _ := temps[i].(float64)
			pv, _ := precs[i].(float64)
			return tv, pv, true
		}
		return 0, 0, false
	}

	if t, p, ok := pick(target + "T12:00"); ok {
		return t, p, nil
	}
	if t, p, ok := pick(target + "T"); ok {
		return t, p, nil
	}
	return 0, 0, fmt.Errorf("weather: no hourly data for %s", target)
}

// --- helpers ---

func getJSON(ctx context.Context, client *http.Client, u string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
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

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func stringParam(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func intParam(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}
