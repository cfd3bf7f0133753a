// Package citynorm normalizes declined Polish city names to the nominative
// case ("Krakowie" -> "Kraków") using a chat model.
package citynorm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trailnote/organizer"
	"github.com/trailnote/organizer/provider/openaicompat"
)

// Tool wraps a completion function as an organizer tool.
type Tool struct {
	complete openaicompat.CompletionFn
}

var _ organizer.Tool = (*Tool)(nil)

// New builds the normalizer. complete is typically Client.CompleteJSON.
func New(complete openaicompat.CompletionFn) *Tool {
	return &Tool{complete: complete}
}

func (t *Tool) Name() string { return "openai_city_normalizer" }

// Call expects params: text (string, required). Returns
// {input, nominative, source}.
func (t *Tool) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	text, _ := params["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("citynorm: missing text")
	}

	content, err := t.complete(ctx, []openaicompat.ChatMessage{
		{Role: "system", Content: "Zamieniasz polskie nazwy miast/miejsc na mianownik. Odpowiadaj wyłącznie JSON-em."},
		{Role: "user", Content: fmt.Sprintf("Wejście: %s\nZwróć dokładnie: {\"nominative\": \"<mianownik>\"}", text)},
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		Nominative string `json:"nominative"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("citynorm: parse response: %w", err)
	}
	nominative := strings.TrimSpace(data.Nominative)
	if nominative == "" {
		nominative = text
	}
	return map[string]any{"input": text, "nominative": nominative, "source": "openai"}, nil
}
