package openmeteo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trailnote/organizer"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func jsonServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

const geoKrakow = `{"results":[{"latitude":50.0614,"longitude":19.9366,"name":"Kraków","country":"Poland"}]}`

func forecastBody(times, temps, precs string) string {
	return `{"hourly":{"time":[` + times + `],"temperature_2m":[` + temps + `],"precipitation_probability":[` + precs + `]}}`
}

func newTestWeather(t *testing.T, geoBody, forecastJSON string) *Weather {
	t.Helper()
	geoSrv := jsonServer(t, geoBody)
	t.Cleanup(geoSrv.Close)
	fcSrv := jsonServer(t, forecastJSON)
	t.Cleanup(fcSrv.Close)

	return NewWeather(
		WithGeocoding(NewGeocoding(WithGeocodingURL(geoSrv.URL))),
		WithForecastURL(fcSrv.URL),
		WithClock(fixedClock()))
}

func TestWeather_MiddayReading(t *testing.T) {
	w := newTestWeather(t, geoKrakow, forecastBody(
		`"2026-08-25T09:00","2026-08-25T12:00","2026-08-25T15:00"`,
		`15.2,21.6,19.0`,
		`10,80,40`))

	out, err := w.Call(context.Background(), map[string]any{"location": "Kraków", "date": "tomorrow"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out["location"] != "Kraków, Poland" {
		t.Errorf("location = %v", out["location"])
	}
	if out["date"] != "2026-08-25" {
		t.Errorf("date = %v", out["date"])
	}
	// The 12:00 reading wins: 21.6°C rounds to 22, precip 80 means rain.
	if out["temp_c"] != 22 || out["precip_prob"] != 80 {
		t.Errorf("temp/precip = %v/%v", out["temp_c"], out["precip_prob"])
	}
	if out["summary"] != "deszczowo" {
		t.Errorf("summary = %v", out["summary"])
	}
}

func TestWeather_FallsBackToFirstReadingOfDay(t *testing.T) {
	w := newTestWeather(t, geoKrakow, forecastBody(
		`"2026-08-25T06:00","2026-08-25T07:00"`,
		`12.0,13.0`,
		`5,5`))

	out, err := w.Call(context.Background(), map[string]any{"location": "Kraków", "date": "2026-08-25"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out["temp_c"] != 12 || out["summary"] != "pogodnie" {
		t.Errorf("out = %v", out)
	}
}

func TestWeather_NoHourlyDataForDay(t *testing.T) {
	w := newTestWeather(t, geoKrakow, forecastBody(`"2026-08-26T12:00"`, `20.0`, `10`))

	_, err := w.Call(context.Background(), map[string]any{"location": "Kraków", "date": "2026-08-25"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestWeather_UnknownPlace(t *testing.T) {
	w := newTestWeather(t, `{"results":[]}`, forecastBody(`"2026-08-25T12:00"`, `20.0`, `10`))

	_, err := w.Call(context.Background(), map[string]any{"location": "Xyzzy"})
	var nre *organizer.NoResultsError
	if !errors.As(err, &nre) {
		t.Fatalf("err = %v, want NoResultsError", err)
	}
	if nre.Query != "Xyzzy" {
		t.Errorf("query = %q", nre.Query)
	}
}

func TestWeather_InvalidDate(t *testing.T) {
	w := newTestWeather(t, geoKrakow, `{}`)
	if _, err := w.Call(context.Background(), map[string]any{"location": "Kraków", "date": "25-08-2026"}); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestWeather_MissingLocation(t *testing.T) {
	w := NewWeather()
	if _, err := w.Call(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGeocoding_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	g := NewGeocoding(WithGeocodingURL(srv.URL))
	_, err := g.Call(context.Background(), map[string]any{"location": "Kraków"})

	var herr *organizer.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if herr.Status != 503 || herr.Body != "maintenance" {
		t.Errorf("herr = %+v", herr)
	}
}

func TestGeocoding_QueryParams(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"name":     r.URL.Query().Get("name"),
			"count":    r.URL.Query().Get("count"),
			"language": r.URL.Query().Get("language"),
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	g := NewGeocoding(WithGeocodingURL(srv.URL))
	if _, err := g.Call(context.Background(), map[string]any{"location": "Łódź", "count": 5, "language": "pl"}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if got["name"] != "Łódź" || got["count"] != "5" || got["language"] != "pl" {
		t.Errorf("query = %v", got)
	}
}
