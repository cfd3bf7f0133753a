// Package webpage provides a tool that fetches a URL and extracts its
// readable text. Agents use it to pull venue or event details referenced in
// planner results.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/trailnote/organizer"
)

// Tool fetches URLs and extracts readable content.
type Tool struct {
	client *http.Client
}

var _ organizer.Tool = (*Tool)(nil)

// Option configures the tool.
type Option func(*Tool)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tool) {
		if c != nil {
			t.client = c
		}
	}
}

// New creates a webpage tool with a 15-second timeout.
func New(opts ...Option) *Tool {
	t := &Tool{client: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tool) Name() string { return "webpage_fetch" }

// Call expects params: url (string, required). Returns {url, content},
// with content truncated to 8000 characters.
func (t *Tool) Call(ctx context.Context, params map[string]any) (map[string]any, error) {
	rawURL, _ := params["url"].(string)
	if rawURL == "" {
		return nil, fmt.Errorf("webpage: missing url")
	}

	content, err := t.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(content) > 8000 {
		content = content[:8000] + "\n... (truncated)"
	}
	return map[string]any{"url": rawURL, "content": content}, nil
}

func (t *Tool) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; OrganizerBot/1.0)")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read error: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", &organizer.HTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err == nil && article.TextContent != "" {
		return strings.TrimSpace(article.TextContent), nil
	}
	return strings.TrimSpace(string(body)), nil
}
