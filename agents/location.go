package agents

import (
	"context"
	"regexp"

	"github.com/trailnote/organizer"
)

// cityPattern catches the common Polish phrasing "w Krakowie",
// "w Warszawie". Deliberately simple; the LLM city normalizer handles
// declension when configured.
var cityPattern = regexp.MustCompile(`(?i)\bw\s+([A-Za-zĄĆĘŁŃÓŚŹŻąćęłńóśźż\-]+)`)

// ExtractCity pulls a city name out of free-form text. The second return
// reports whether anything was found.
func ExtractCity(text string) (string, bool) {
	m := cityPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ResolveCity extracts a city and, when a normalizer tool is set, rewrites
// the declined form to the nominative ("Krakowie" to "Kraków"). Normalizer
// failures keep the raw match; extraction misses are the caller's problem.
func ResolveCity(ctx context.Context, text string, normalizer organizer.Tool) (string, bool) {
	city, ok := ExtractCity(text)
	if !ok || normalizer == nil {
		return city, ok
	}
	out, err := normalizer.Call(ctx, map[string]any{"text": city})
	if err != nil {
		return city, true
	}
	if nom, _ := out["nominative"].(string); nom != "" {
		return nom, true
	}
	return city, true
}
