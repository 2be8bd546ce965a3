package config_test

import (
	"strings"
	"testing"

	"github.com/nutrifit/nutrifit/internal/config"
)

func TestLoadFromReader_ValidConfig(t *testing.T) {
	yaml := `
server:
  transport: stdio
  log_level: debug
nutritionix:
  app_id: test-id
  app_key: test-key
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Transport != config.TransportStdio {
		t.Errorf("transport = %q, want stdio", cfg.Server.Transport)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Nutritionix.AppID != "test-id" {
		t.Errorf("app_id = %q, want test-id", cfg.Nutritionix.AppID)
	}
}

func TestLoadFromReader_Defaults(t *testing.T) {
	yaml := `
nutritionix:
  app_id: test-id
  app_key: test-key
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Transport != config.TransportStdio {
		t.Errorf("default transport = %q, want stdio", cfg.Server.Transport)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("default log_level = %q, want info", cfg.Server.LogLevel)
	}
}

func TestLoadFromReader_MissingCredentials(t *testing.T) {
	yaml := `
server:
  transport: stdio
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing credentials, got nil")
	}
	if !strings.Contains(err.Error(), "nutritionix.app_id is required") {
		t.Errorf("error should mention app_id, got: %v", err)
	}
	if !strings.Contains(err.Error(), "nutritionix.app_key is required") {
		t.Errorf("error should mention app_key, got: %v", err)
	}
}

func TestLoadFromReader_EnvOverridesFile(t *testing.T) {
	t.Setenv(config.EnvNutritionixAppID, "env-id")
	t.Setenv(config.EnvNutritionixAppKey, "env-key")
	yaml := `
nutritionix:
  app_id: file-id
  app_key: file-key
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Nutritionix.AppID != "env-id" {
		t.Errorf("app_id = %q, want env-id", cfg.Nutritionix.AppID)
	}
	if cfg.Nutritionix.AppKey != "env-key" {
		t.Errorf("app_key = %q, want env-key", cfg.Nutritionix.AppKey)
	}
}

func TestLoadFromReader_EnvOnly(t *testing.T) {
	t.Setenv(config.EnvNutritionixAppID, "env-id")
	t.Setenv(config.EnvNutritionixAppKey, "env-key")
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Nutritionix.AppID != "env-id" {
		t.Errorf("app_id = %q, want env-id", cfg.Nutritionix.AppID)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	yaml := `
nutritionix:
  app_id: test-id
  app_key: test-key
  typo_field: oops
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_StreamableHTTPRequiresAddr(t *testing.T) {
	yaml := `
server:
  transport: streamable-http
nutritionix:
  app_id: test-id
  app_key: test-key
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing mcp_listen_addr, got nil")
	}
	if !strings.Contains(err.Error(), "server.mcp_listen_addr is required") {
		t.Errorf("error should mention mcp_listen_addr, got: %v", err)
	}
}

func TestValidate_InvalidTransport(t *testing.T) {
	yaml := `
server:
  transport: websocket
nutritionix:
  app_id: test-id
  app_key: test-key
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid transport, got nil")
	}
	if !strings.Contains(err.Error(), "server.transport") {
		t.Errorf("error should mention transport, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	yaml := `
server:
  log_level: chatty
nutritionix:
  app_id: test-id
  app_key: test-key
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "server.log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	yaml := `
server:
  transport: streamable-http
  log_level: chatty
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	for _, want := range []string{"server.mcp_listen_addr", "server.log_level", "nutritionix.app_id", "nutritionix.app_key"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}
