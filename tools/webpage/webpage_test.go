package webpage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trailnote/organizer"
)

const articleHTML = `<!DOCTYPE html><html><head><title>Filharmonia</title></head><body>
<article><h1>Koncert wieczorny</h1>
<p>Filharmonia zaprasza na koncert muzyki kameralnej o godzinie dziewiętnastej.</p>
<p>Bilety dostępne w kasie oraz online. Wstęp od dwunastego roku życia.</p>
</article></body></html>`

func TestTool_ExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "OrganizerBot") {
			t.Errorf("user agent = %q", ua)
		}
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	out, err := New().Call(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	content := out["content"].(string)
	if !strings.Contains(content, "koncert muzyki kameralnej") {
		t.Errorf("content = %q", content)
	}
	if strings.Contains(content, "<p>") {
		t.Errorf("content still carries markup: %q", content)
	}
	if out["url"] != srv.URL {
		t.Errorf("url = %v", out["url"])
	}
}

func TestTool_TruncatesLongContent(t *testing.T) {
	long := strings.Repeat("treść ", 4000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))
	defer srv.Close()

	out, err := New().Call(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	content := out["content"].(string)
	if !strings.HasSuffix(content, "... (truncated)") {
		t.Errorf("content not truncated, len=%d", len(content))
	}
}

func TestTool_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New().Call(context.Background(), map[string]any{"url": srv.URL})
	var herr *organizer.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("err = %v, want HTTPError", err)
	}
	if herr.Status != 404 {
		t.Errorf("status = %d", herr.Status)
	}
}

func TestWithHTTPClient(t *testing.T) {
	c := &http.Client{}
	if New(WithHTTPClient(c)).client != c {
		t.Error("custom client not installed")
	}
	if New(WithHTTPClient(nil)).client == nil {
		t.Error("nil client accepted")
	}
}

func TestTool_MissingURL(t *testing.T) {
	if _, err := New().Call(context.Background(), map[string]any{}); err == nil {
		t.Fatal("expected error")
	}
}
