package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if filepath.Base(path) != "config.yaml" {
		t.Errorf("DefaultConfigPath() = %q, should end with config.yaml", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".hyperbee" {
		t.Errorf("DefaultConfigPath() = %q, should be in .hyperbee directory", path)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil for missing file", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfig() returned nil config")
	}
	if cfg.DefaultModel != "" || cfg.MaxRetries != nil {
		t.Errorf("LoadConfig() = %+v, want empty config", cfg)
	}
}

func TestLoadConfigValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `default_model: hive
default_namespace: handbook
organization: org-1
chat_base_url: https://chat.example/v1/
pipeline_base_url: https://rag.example/v1/
timeout: 90s
max_retries: 0
headers:
  X-Team: search
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DefaultModel != "hive" {
		t.Errorf("DefaultModel = %q, want hive", cfg.DefaultModel)
	}
	if cfg.DefaultNamespace != "handbook" {
		t.Errorf("DefaultNamespace = %q, want handbook", cfg.DefaultNamespace)
	}
	if cfg.Organization != "org-1" {
		t.Errorf("Organization = %q, want org-1", cfg.Organization)
	}
	if cfg.ChatBaseURL != "https://chat.example/v1/" || cfg.PipelineBaseURL != "https://rag.example/v1/" {
		t.Errorf("base URLs = %q, %q", cfg.ChatBaseURL, cfg.PipelineBaseURL)
	}
	if cfg.MaxRetries == nil || *cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %v, want explicit 0", cfg.MaxRetries)
	}
	if cfg.Headers["X-Team"] != "search" {
		t.Errorf("Headers = %v", cfg.Headers)
	}

	d, err := cfg.TimeoutDuration()
	if err != nil || d != 90*time.Second {
		t.Errorf("TimeoutDuration() = %v, %v; want 90s", d, err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"yaml", "default_model: [unterminated"},
		{"timeout", "timeout: soon"},
		{"negative timeout", "timeout: -5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("LoadConfig() should fail")
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	retries := 4
	want := &Config{DefaultModel: "hive", Timeout: "2m", MaxRetries: &retries}

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got.DefaultModel != "hive" || got.Timeout != "2m" || got.MaxRetries == nil || *got.MaxRetries != 4 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestTimeoutDurationEmpty(t *testing.T) {
	d, err := (&Config{}).TimeoutDuration()
	if err != nil || d != 0 {
		t.Errorf("TimeoutDuration() = %v, %v; want 0, nil", d, err)
	}
}
