package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.toml"))

	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Memory.SummarizeEvery != 12 || cfg.Memory.KeepRecent != 20 || cfg.Memory.KeepScratchpad != 12 {
		t.Errorf("memory = %+v", cfg.Memory)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Path != "organizer.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Tools.UseRealAPIs || cfg.Observer.Enabled {
		t.Errorf("real APIs / observer enabled by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organizer.toml")
	data := `
[llm]
model = "gpt-4o"

[memory]
summarize_every = 6

[tools]
use_real_apis = true

[database]
driver = "postgres"
postgres_url = "postgres://localhost/organizer"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Memory.SummarizeEvery != 6 {
		t.Errorf("summarize_every = %d", cfg.Memory.SummarizeEvery)
	}
	if !cfg.Tools.UseRealAPIs {
		t.Error("use_real_apis not read")
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.PostgresURL != "postgres://localhost/organizer" {
		t.Errorf("database = %+v", cfg.Database)
	}
	// Untouched sections keep their defaults.
	if cfg.Logs.Dir != "logs" {
		t.Errorf("logs dir = %q", cfg.Logs.Dir)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "organizer.toml")
	if err := os.WriteFile(path, []byte("[llm]\nmodel = \"from-file\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ORGANIZER_LLM_MODEL", "from-env")
	t.Setenv("ORGANIZER_LLM_API_KEY", "sk-test")
	t.Setenv("ORGANIZER_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("ORGANIZER_OBSERVER_ENABLED", "1")

	cfg := Load(path)
	if cfg.LLM.Model != "from-env" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("max attempts = %d", cfg.Retry.MaxAttempts)
	}
	if !cfg.Observer.Enabled {
		t.Error("observer not enabled from env")
	}
}

func TestLoad_OpenAIKeyIsFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ORGANIZER_LLM_API_KEY", "")

	cfg := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if cfg.LLM.APIKey != "sk-openai" {
		t.Errorf("api key = %q, want fallback", cfg.LLM.APIKey)
	}

	t.Setenv("ORGANIZER_LLM_API_KEY", "sk-primary")
	cfg = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if cfg.LLM.APIKey != "sk-primary" {
		t.Errorf("api key = %q, want primary", cfg.LLM.APIKey)
	}
}

func TestLoad_InvalidRetryEnvIgnored(t *testing.T) {
	t.Setenv("ORGANIZER_RETRY_MAX_ATTEMPTS", "zero")
	cfg := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("max attempts = %d, want default 3", cfg.Retry.MaxAttempts)
	}
}
