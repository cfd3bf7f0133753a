package fake

import (
	"context"
	"reflect"
	"testing"
)

func TestWeather_Deterministic(t *testing.T) {
	tool := NewWeather()
	params := map[string]any{"location": "Kraków", "date": "2026-08-25"}

	first, err := tool.Call(context.Background(), params)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	second, err := tool.Call(context.Background(), params)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}

	temp := first["temp_c"].(int)
	if temp < -5 || temp > 29 {
		t.Errorf("temp_c = %d out of range", temp)
	}
	precip := first["precip_prob"].(int)
	if precip < 0 || precip > 100 {
		t.Errorf("precip_prob = %d out of range", precip)
	}
	summary := first["summary"].(string)
	if (precip > 60) != (summary == "deszczowo") {
		t.Errorf("summary %q does not match precip %d", summary, precip)
	}
}

func TestWeather_CaseInsensitiveLocation(t *testing.T) {
	tool := NewWeather()
	a, _ := tool.Call(context.Background(), map[string]any{"location": "Kraków", "date": "d"})
	b, _ := tool.Call(context.Background(), map[string]any{"location": "kraków", "date": "d"})
	if a["temp_c"] != b["temp_c"] {
		t.Errorf("location casing changed the seed: %v vs %v", a["temp_c"], b["temp_c"])
	}
}

func TestEvents_Shape(t *testing.T) {
	tool := NewEvents()
	out, err := tool.Call(context.Background(), map[string]any{
		"city": "Warszawa", "date": "2026-08-25", "category": "music",
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	events := out["events"].([]map[string]any)
	if len(events) < 3 || len(events) > 5 {
		t.Fatalf("got %d events, want 3..5", len(events))
	}
	for i, e := range events {
		if e["title"] != "Music Event "+string(rune('1'+i)) {
			t.Errorf("events[%d].title = %v", i, e["title"])
		}
		start := e["start"].(string)
		if len(start) != 5 || start[2] != ':' {
			t.Errorf("events[%d].start = %q", i, start)
		}
		if _, ok := e["indoor"].(bool); !ok {
			t.Errorf("events[%d].indoor missing", i)
		}
	}
}

func TestEvents_DefaultCategory(t *testing.T) {
	tool := NewEvents()
	out, _ := tool.Call(context.Background(), map[string]any{"city": "Radom", "date": "d"})
	if out["category"] != "any" {
		t.Errorf("category = %v, want any", out["category"])
	}
}

func TestHousing_PriceFloorAndBudget(t *testing.T) {
	tool := NewHousing()
	out, err := tool.Call(context.Background(), map[string]any{
		"city": "Gdańsk", "checkin": "2026-08-25", "checkout": "2026-08-26",
		"budget_pln_per_night": 100.0,
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if out["budget_pln_per_night"] != 100 {
		t.Errorf("budget = %v", out["budget_pln_per_night"])
	}

	stays := out["stays"].([]map[string]any)
	if len(stays) < 3 || len(stays) > 5 {
		t.Fatalf("got %d stays, want 3..5", len(stays))
	}
	for i, stay := range stays {
		price := stay["price_pln_per_night"].(int)
		if price < 80 || price > 100 {
			t.Errorf("stays[%d].price = %d, want 80..100", i, price)
		}
		rating := stay["rating"].(float64)
		if rating < 3.5 || rating > 4.9 {
			t.Errorf("stays[%d].rating = %v", i, rating)
		}
	}
}
