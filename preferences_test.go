package organizer

import (
	"context"
	"testing"
)

func TestMemoryPreferences_DefaultsForUnknownUser(t *testing.T) {
	store := NewMemoryPreferences()

	prefs, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if prefs != DefaultPreferences() {
		t.Fatalf("prefs = %+v, want defaults", prefs)
	}
}

func TestMemoryPreferences_SetGet(t *testing.T) {
	store := NewMemoryPreferences()
	want := Preferences{Category: "music", MaxItems: 3, EventDurationHours: 2}

	if err := store.Set(context.Background(), "u1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMemoryPreferences_Update(t *testing.T) {
	store := NewMemoryPreferences()

	next, err := store.Update(context.Background(), "u1", func(p Preferences) Preferences {
		p.MaxItems = 2
		return p
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if next.MaxItems != 2 || next.Category != "any" {
		t.Fatalf("next = %+v", next)
	}

	stored, _ := store.Get(context.Background(), "u1")
	if stored != next {
		t.Fatalf("stored %+v, want %+v", stored, next)
	}
}
