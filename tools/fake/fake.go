// Package fake provides deterministic offline stand-ins for the real
// weather, events and housing tools. Outputs are seeded from the inputs, so
// the same query always yields the same data across runs.
package fake

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/trailnote/organizer"
)

// seedInt derives a stable numeric seed from text parts.
func seedInt(parts ...string) int {
	joined := strings.Join(parts, "|")
	digest := md5.Sum([]byte(joined))
	n, _ := strconv.ParseInt(hex.EncodeToString(digest[:])[:8], 16, 64)
	return int(n)
}

// Weather is a deterministic weather tool.
type Weather struct{}

var _ organizer.Tool = (*Weather)(nil)

func NewWeather() *Weather { return &Weather{} }

func (w *Weather) Name() string { return "fake_weather_api" }

func (w *Weather) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	location, _ := params["location"].(string)
	date, _ := params["date"].(string)

	s := seedInt(strings.ToLower(location), date)
	tempC := (s % 35) - 5
	precipProb := (s / 7) % 101
	summary := "pogodnie"
	if precipProb > 60 {
		summary = "deszczowo"
	}

	return map[string]any{
		"location":    location,
		"date":        date,
		"summary":     summary,
		"temp_c":      tempC,
		"precip_prob": precipProb,
	}, nil
}

// Events is a deterministic events tool yielding 3 to 5 events per query.
type Events struct{}

var _ organizer.Tool = (*Events)(nil)

func NewEvents() *Events { return &Events{} }

func (e *Events) Name() string { return "fake_events_api" }

func (e *Events) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	city, _ := params["city"].(string)
	date, _ := params["date"].(string)
	category, _ := params["category"].(string)
	if category == "" {
		category = "any"
	}

	s := seedInt(strings.ToLower(city), date, strings.ToLower(category))
	n := 3 + s%3

	events := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		startHour := 16 + (s+i*3)%6
		events = append(events, map[string]any{
			"title":     fmt.Sprintf("%s Event %d", titleCase(category), i+1),
			"city":      city,
			"date":      date,
			"start":     fmt.Sprintf("%02d:00", startHour),
			"price_pln": 20 + (s+i*11)%120,
			"indoor":    (s+i)%2 == 0,
		})
	}

	return map[string]any{"city": city, "date": date, "category": category, "events": events}, nil
}

// Housing is a deterministic accommodation tool yielding 3 to 5 offers.
type Housing struct{}

var _ organizer.Tool = (*Housing)(nil)

func NewHousing() *Housing { return &Housing{} }

func (h *Housing) Name() string { return "fake_housing_api" }

func (h *Housing) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	city, _ := params["city"].(string)
	checkin, _ := params["checkin"].(string)
	checkout, _ := params["checkout"].(string)
	budget := 300
	switch v := params["budget_pln_per_night"].(type) {
	case int:
		budget = v
	case float64:
		budget = int(v)
	}

	s := seedInt(strings.ToLower(city), checkin, checkout, strconv.Itoa(budget))
	n := 3 + s%3

	stays := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		price := budget - (s+i*37)%150
		if price < 80 {
			price = 80
		}
		rating := 3.5 + float64((s+i*5)%15)/10
		stays = append(stays, map[string]any{
			"name":                fmt.Sprintf("Stay %d in %s", i+1, city),
			"city":                city,
			"price_pln_per_night": price,
			"rating":              rating,
		})
	}

	return map[string]any{
		"city":                 city,
		"checkin":              checkin,
		"checkout":             checkout,
		"budget_pln_per_night": budget,
		"stays":                stays,
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
