package agents

import (
	"context"
	"errors"
	"testing"
)

func TestExtractCity(t *testing.T) {
	cases := []struct {
		text  string
		want  string
		found bool
	}{
		{"Jaka pogoda w Krakowie?", "Krakowie", true},
		{"zaplanuj dzień w Gdańsku", "Gdańsku", true},
		{"nocleg w Łodzi na jutro", "Łodzi", true},
		{"szukam czegoś w Bielsku-Białej", "Bielsku-Białej", true},
		{"jaka pogoda?", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, found := ExtractCity(tc.text)
		if got != tc.want || found != tc.found {
			t.Errorf("ExtractCity(%q) = (%q, %v), want (%q, %v)", tc.text, got, found, tc.want, tc.found)
		}
	}
}

func TestResolveCity_Normalizer(t *testing.T) {
	normalizer := &fakeTool{name: "openai_city_normalizer", results: []fakeResult{
		{out: map[string]any{"input": "Krakowie", "nominative": "Kraków"}},
	}}

	city, ok := ResolveCity(context.Background(), "pogoda w Krakowie", normalizer)
	if !ok || city != "Kraków" {
		t.Fatalf("ResolveCity = (%q, %v)", city, ok)
	}
	if normalizer.params[0]["text"] != "Krakowie" {
		t.Errorf("normalizer params = %v", normalizer.params[0])
	}
}

func TestResolveCity_NormalizerFailureKeepsRawMatch(t *testing.T) {
	normalizer := &fakeTool{name: "openai_city_normalizer", results: []fakeResult{
		{err: errors.New("provider down")},
	}}

	city, ok := ResolveCity(context.Background(), "pogoda w Krakowie", normalizer)
	if !ok || city != "Krakowie" {
		t.Fatalf("ResolveCity = (%q, %v)", city, ok)
	}
}

func TestResolveCity_NoMatchSkipsNormalizer(t *testing.T) {
	normalizer := &fakeTool{name: "openai_city_normalizer"}

	if _, ok := ResolveCity(context.Background(), "jaka pogoda?", normalizer); ok {
		t.Fatal("unexpected match")
	}
	if normalizer.calls != 0 {
		t.Errorf("normalizer called %d times", normalizer.calls)
	}
}
