package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate points HOME and the working directory at an empty temp dir so no
// real config or .env file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	for _, k := range []string{"STUDY_BACKEND", "STUDY_DB", "STUDY_REDIS_URL", "STUDY_LLM_API_KEY",
		"STUDY_LLM_MODEL", "OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "STUDY_SESSION_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Backend)
	}
	if want := filepath.Join(dir, ".study-assistant", "study.db"); cfg.DB != want {
		t.Errorf("expected db %q, got %q", want, cfg.DB)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.LLM.BaseURL != DefaultBaseURL || cfg.LLM.Model != DefaultModel {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxTokens != 1000 || cfg.LLM.Temperature != 0.7 {
		t.Errorf("unexpected llm tuning: %+v", cfg.LLM)
	}
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	t.Setenv("STUDY_BACKEND", "redis")
	t.Setenv("STUDY_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("STUDY_SESSION_TTL", "2h")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("STUDY_LLM_MODEL", "some/model")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "redis" || cfg.RedisURL != "redis://cache:6379/2" {
		t.Errorf("expected redis settings from env, got %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %v", cfg.SessionTTL)
	}
	if cfg.LLM.APIKey != "sk-or-test" {
		t.Errorf("expected api key from OPENROUTER_API_KEY, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "some/model" {
		t.Errorf("expected model from env, got %q", cfg.LLM.Model)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENROUTER_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.APIKey != "from-dotenv" {
		t.Errorf("expected key from .env, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "backend: memory\nllm:\n  max_tokens: 400\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "memory" || cfg.LLM.MaxTokens != 400 {
		t.Errorf("expected values from config file, got %+v", cfg)
	}
}

func TestLoadFlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("STUDY_DB", "/from/env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("backend", "", "")
	if err := flags.Parse([]string{"--db", "/from/flag.db"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB != "/from/flag.db" {
		t.Errorf("expected flag to win, got %q", cfg.DB)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("expected unset flag to fall through to default, got %q", cfg.Backend)
	}
}

func TestValidate(t *testing.T) {
	base := Config{Backend: "sqlite", DB: "x.db", SessionTTL: time.Hour, LLM: LLM{MaxTokens: 10}}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "etcd" }},
		{"sqlite without db", func(c *Config) { c.DB = "" }},
		{"redis without url", func(c *Config) { c.Backend = "redis"; c.RedisURL = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Errorf("expected base config to be valid: %v", err)
	}
}
