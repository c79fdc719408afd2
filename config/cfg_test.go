package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if !cfg.Diff.Strict {
		t.Error("strict comparison should be on by default")
	}
	if cfg.Diff.FailOnAssetError || cfg.Diff.Minify || cfg.Diff.Normalize {
		t.Errorf("unexpected defaults: %+v", cfg.Diff)
	}
	if cfg.Diff.Cwd != "" {
		t.Errorf("Cwd = %q, want empty", cfg.Diff.Cwd)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
	if cfg.Reporting.Destination == "" {
		t.Error("report destination is required")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
diff:
  strict: false
  cwd: `+dir+`
  fail_on_asset_error: true
  minify: true
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(dir, "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(dir, "report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	want := DiffConfig{Cwd: dir, FailOnAssetError: true, Minify: true}
	if cfg.Diff != want {
		t.Errorf("Diff = %+v, want %+v", cfg.Diff, want)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("file log mode = %q", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	path := writeConfig(t, `version: 1
diff:
  normalize: true
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if !cfg.Diff.Normalize {
		t.Error("Expected Normalize to be true from config file")
	}
	if !cfg.Diff.Strict {
		t.Error("Strict should keep template default")
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Error("logging section should keep template defaults")
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid yaml",
			content: "version: 1\ndiff:\n  strict: true\n  invalid indent\n",
		},
		{
			name:    "unknown field",
			content: "version: 1\nunknown_field: value\n",
		},
		{
			name:    "unknown diff field",
			content: "version: 1\ndiff:\n  loose: true\n",
		},
		{
			name:    "wrong version",
			content: "version: 2\n",
		},
		{
			name:    "wrong log level",
			content: "version: 1\nlogging:\n  console:\n    level: verbose\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	for _, section := range []string{"diff:", "logging:", "reporting:"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("Prepare() output has no %q section", section)
		}
	}

	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Diff.Minify = true

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Diff != cfg.Diff {
		t.Errorf("Diff mismatch after dump/load: got %+v, want %+v", cfg2.Diff, cfg.Diff)
	}
}
