package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.DatabaseChannel = 200
	cfg.BusChannel = 5
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log format")
	}
}

func TestValidate_MissingDatabaseChannel(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseChannel = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for missing database_channel")
	}
}

func TestValidate_RangeMaxBeforeMin(t *testing.T) {
	cfg := validConfig()
	cfg.Range.Min = 9999
	cfg.Range.Max = 9000

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for max < min")
	}
}

func TestValidate_NoDCFilePaths(t *testing.T) {
	cfg := validConfig()
	cfg.DCFilePaths = nil

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for empty dc_file_paths")
	}
}
