package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "DATA_DIR":
			return "/srv/data"
		case "LEVEL":
			return "debug"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "sqlite: ${DATA_DIR}/catalog.db",
			expected: "sqlite: /srv/data/catalog.db",
		},
		{
			name:     "with default (env set)",
			input:    "level: ${LEVEL:-info}",
			expected: "level: debug",
		},
		{
			name:     "with default (env not set)",
			input:    "level: ${UNSET_VAR:-warn}",
			expected: "level: warn",
		},
		{
			name:     "unset without default",
			input:    "prompt: ${UNSET_VAR}",
			expected: "prompt: ",
		},
		{
			name:     "multiple substitutions",
			input:    "${DATA_DIR}:${LEVEL}",
			expected: "/srv/data:debug",
		},
		{
			name:     "no substitution",
			input:    "plain: value",
			expected: "plain: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scql.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func noenv(string) string { return "" }

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
catalog:
  builtins: false
  files:
    - sources.yaml
    - /abs/more.yaml
  sqlite: data/catalog.db
  watch: true
repl:
  prompt: "> "
  history: .history
logging:
  level: debug
  format: json
`)

	cfg, absPath, err := LoadWithPath(path, noenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if absPath != path {
		t.Errorf("expected path %q, got %q", path, absPath)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}
	if cfg.Catalog.Builtins {
		t.Error("expected builtins to be disabled")
	}
	if got := cfg.Catalog.Files[0]; got != filepath.Join(dir, "sources.yaml") {
		t.Errorf("relative catalog file not resolved: %q", got)
	}
	if got := cfg.Catalog.Files[1]; got != "/abs/more.yaml" {
		t.Errorf("absolute catalog file changed: %q", got)
	}
	if got := cfg.Catalog.SQLite; got != filepath.Join(dir, "data", "catalog.db") {
		t.Errorf("sqlite path not resolved: %q", got)
	}
	if got := cfg.REPL.History; got != filepath.Join(dir, ".history") {
		t.Errorf("history path not resolved: %q", got)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("expected prompt '> ', got %q", cfg.REPL.Prompt)
	}
	if cfg.REPL.Width != 80 {
		t.Errorf("unset width should keep default, got %d", cfg.REPL.Width)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging not loaded: %+v", cfg.Logging)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("unset output should keep default, got %q", cfg.Logging.Output)
	}
}

func TestLoadInterpolatesEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
logging:
  level: ${SCQL_LOG_LEVEL:-warn}
catalog:
  sqlite: ${CATALOG_DB}
`)
	getenv := func(key string) string {
		if key == "CATALOG_DB" {
			return "/tmp/cat.db"
		}
		return ""
	}

	cfg, err := Load(path, getenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level 'warn', got %q", cfg.Logging.Level)
	}
	if cfg.Catalog.SQLite != "/tmp/cat.db" {
		t.Errorf("expected sqlite '/tmp/cat.db', got %q", cfg.Catalog.SQLite)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noenv)
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "repl:\n  prompt: \"env> \"\n")
	getenv := func(key string) string {
		if key == "SCQL_CONFIG" {
			return path
		}
		return ""
	}

	cfg, err := Load("", getenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != "env> " {
		t.Errorf("expected prompt from SCQL_CONFIG file, got %q", cfg.REPL.Prompt)
	}

	missing := func(key string) string {
		if key == "SCQL_CONFIG" {
			return filepath.Join(dir, "missing.yaml")
		}
		return ""
	}
	if _, err := Load("", missing); err == nil {
		t.Error("expected error when SCQL_CONFIG points nowhere")
	}
}

func TestLoadCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "logging:\n  format: json\n")
	t.Chdir(dir)

	cfg, path, err := LoadWithPath("", noenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "scql.yaml" {
		t.Errorf("expected ./scql.yaml, got %q", path)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadNoFileFallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadWithPath("", noenv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no path, got %q", path)
	}
	if !cfg.Catalog.Builtins || cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if strings.HasPrefix(cfg.REPL.History, "~") {
		t.Errorf("history should have home expanded, got %q", cfg.REPL.History)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	path := writeConfig(t, dir, "logging:\n  level: chatty\n")
	if _, err := Load(path, noenv); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("expected validation error, got %v", err)
	}

	path = writeConfig(t, dir, "catalog: [unclosed\n")
	if _, err := Load(path, noenv); err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("expected parse error, got %v", err)
	}
}
