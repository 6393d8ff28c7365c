package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
range:
  min: 9000
  max: 9999
database_channel: 200
bus_channel: 5
bus_address: "localhost:7199"
dc_file_paths:
  - "/etc/dbss/schema.yaml"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Range.Min != 9000 || cfg.Range.Max != 9999 {
		t.Errorf("unexpected range: %+v", cfg.Range)
	}
	if cfg.DatabaseChannel != 200 {
		t.Errorf("expected database_channel 200, got %d", cfg.DatabaseChannel)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default logging level INFO, got %s", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, err := Load(filepath.Join(tmpDir, "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Range.Min != 9000 {
		t.Errorf("expected default range min 9000, got %d", cfg.Range.Min)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.DatabaseChannel = 42
	cfg.BusChannel = 5

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig returned error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.DatabaseChannel != 42 {
		t.Errorf("expected database_channel 42, got %d", loaded.DatabaseChannel)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	got := GetDefaultConfigPath()
	want := filepath.Join("/tmp/xdg-test", "dbss", "config.yaml")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
