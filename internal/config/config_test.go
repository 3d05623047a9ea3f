package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()

	if cfg.Queue.KeyPrefix != "bull:" {
		t.Errorf("key_prefix = %q", cfg.Queue.KeyPrefix)
	}
	if cfg.Filter.DefaultCount != 20 || cfg.Filter.MaxCount != 100 {
		t.Errorf("filter defaults = %+v", cfg.Filter)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http defaults = %+v", cfg.HTTP)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Filter:   FilterConfig{DefaultCount: 20, MaxCount: 100},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }},
		{"default above max", func(c *Config) { c.Filter.DefaultCount = 500 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	src := `
http:
  port: ${TEST_FILTER_PORT}
database:
  addrs: ["${TEST_FILTER_ADDR:-localhost:6379}"]
queue:
  key_prefix: "custom:"
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TEST_FILTER_PORT", "9090")
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Queue.KeyPrefix != "custom:" {
		t.Errorf("key_prefix = %q", cfg.Queue.KeyPrefix)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("default env = %q", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("env = %q", got)
	}
}
