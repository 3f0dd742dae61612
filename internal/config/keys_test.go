package config

import (
	"errors"
	"testing"
)

func TestGetAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := Default()
	if _, err := GetAPIKey(cfg); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}

	cfg.Oracle.APIKey = "sk-ant-configured"
	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-configured" {
		t.Errorf("key = %q", key)
	}

	// Environment wins over config.
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	key, err = GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-env" {
		t.Errorf("key = %q, want env value", key)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"empty", "", true},
		{"wrong prefix", "api-key-1234567890123456", true},
		{"too short", "sk-ant-123", true},
		{"valid", "sk-ant-REDACTED", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key mask = %q", got)
	}
	if got := MaskAPIKey("sk-ant-123"); got != "***" {
		t.Errorf("short key mask = %q", got)
	}
	if got := MaskAPIKey("sk-ant-api03-abcdefgh1234"); got != "sk-ant-...1234" {
		t.Errorf("mask = %q", got)
	}
}

func TestGetAPIKeySource(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if got := GetAPIKeySource(Default()); got != KeySourceNone {
		t.Errorf("source = %s, want none", got)
	}

	cfg := Default()
	cfg.Oracle.APIKey = "sk-ant-configured"
	if got := GetAPIKeySource(cfg); got != KeySourceConfig {
		t.Errorf("source = %s, want config_file", got)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")
	if got := GetAPIKeySource(cfg); got != KeySourceEnv {
		t.Errorf("source = %s, want environment", got)
	}
}
