package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"writegeist/internal/config"
)

func TestLoadDefaultsUseEnvAPIKeyAndExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "writegeist")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected API key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "writegeist.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.SyncMarkerPath() != filepath.Join(wantData, "last_update.txt") {
		t.Fatalf("unexpected sync marker path: %q", cfg.SyncMarkerPath())
	}
}

func TestLoadReadsTOMLOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "~/writegeist-data"`,
		`api_bind = "0.0.0.0:9001"`,
		"",
		"[llm]",
		`api_key = "file-key"`,
		`model = "gpt-4o"`,
		"",
		"[logging]",
		`format = "JSON"`,
		`level = "Debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "writegeist-data") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9001" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.LLM.APIKey)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
	// Unset keys keep their defaults.
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.LLM.BaseURL)
	}
}

func TestLoadMissingAPIKeyStillValid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty API key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad bind", "[paths]\napi_bind = \"not-a-bind\"\n", "api_bind"},
		{"bad format", "[logging]\nformat = \"yaml\"\n", "logging.format"},
		{"bad level", "[logging]\nlevel = \"trace\"\n", "logging.level"},
		{"bad base url", "[llm]\nbase_url = \"::\"\n", "llm.base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample config failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind from sample: %q", cfg.Paths.APIBind)
	}
}
