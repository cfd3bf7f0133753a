package ticketmaster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/trailnote/organizer"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

const discoveryPayload = `{"_embedded":{"events":[
	{"name":"Chopin Recital","url":"https://tm.example/chopin","dates":{"start":{"localDate":"2026-08-25","localTime":"18:30:00"}}},
	{"name":"Open Mic","dates":{"start":{"localDate":"2026-08-25"}}},
	{"dates":{"start":{}}}
]}}`

func TestEvents_FlattensDiscoveryPayload(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(discoveryPayload))
	}))
	defer srv.Close()

	tool := New(WithBaseURL(srv.URL), WithAPIKey("tm-key"), WithClock(fixedClock()))
	out, err := tool.Call(context.Background(), map[string]any{
		"city": "Warszawa", "date": "tomorrow", "category": "music",
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	if query.Get("apikey") != "tm-key" || query.Get("city") != "Warszawa" {
		t.Errorf("query = %v", query)
	}
	if query.Get("classificationName") != "music" {
		t.Errorf("classificationName = %q", query.Get("classificationName"))
	}
	if query.Get("startDateTime") != "2026-08-25T00:00:00Z" || query.Get("endDateTime") != "2026-08-26T00:00:00Z" {
		t.Errorf("day window = %q .. %q", query.Get("startDateTime"), query.Get("endDateTime"))
	}

	events := out["events"].([]map[string]any)
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0]["title"] != "Chopin Recital" || events[0]["start"] != "18:30" {
		t.Errorf("events[0] = %v", events[0])
	}
	if events[0]["url"] != "https://tm.example/chopin" {
		t.Errorf("events[0].url = %v", events[0]["url"])
	}
	if _, ok := events[1]["url"]; ok {
		t.Errorf("events[1] has url: %v", events[1])
	}
	// Missing local time falls back to the evening default.
	if events[1]["start"] != "19:00" {
		t.Errorf("events[1].start = %v", events[1]["start"])
	}
	if events[2]["title"] != "Untitled" {
		t.Errorf("events[2].title = %v", events[2]["title"])
	}
	for i, e := range events {
		if e["indoor"] != true || e["price_pln"] != nil {
			t.Errorf("events[%d] = %v", i, e)
		}
	}
}

func TestEvents_AnyCategorySkipsClassification(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tool := New(WithBaseURL(srv.URL), WithAPIKey("tm-key"), WithClock(fixedClock()))
	out, err := tool.Call(context.Background(), map[string]any{"city": "Warszawa"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if query.Has("classificationName") {
		t.Errorf("classificationName sent for category any")
	}
	if events := out["events"].([]map[string]any); len(events) != 0 {
		t.Errorf("events = %v", events)
	}
}

func TestEvents_MissingCity(t *testing.T) {
	tool := New(WithAPIKey("tm-key"))
	if _, err := tool.Call(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvents_MissingAPIKey(t *testing.T) {
	t.Setenv("TICKETMASTER_API_KEY", "")
	tool := New()
	if _, err := tool.Call(context.Background(), map[string]any{"city": "Warszawa"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvents_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota"))
	}))
	defer srv.Close()

	tool := New(WithBaseURL(srv.URL), WithAPIKey("tm-key"), WithClock(fixedClock()))
	_, err := tool.Call(context.Background(), map[string]any{"city": "Warszawa"})

	var herr *organizer.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if herr.Status != 429 {
		t.Errorf("status = %d", herr.Status)
	}
}
