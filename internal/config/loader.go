package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the corresponding YAML fields.
const (
	EnvNutritionixAppID  = "NUTRITIONIX_APP_ID"
	EnvNutritionixAppKey = "NUTRITIONIX_APP_KEY"
)

// Load reads the YAML configuration file at path, applies environment
// overrides, and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies environment overrides,
// and validates the result. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyEnv(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides credential fields from the environment. Environment
// values always win over the YAML file so deployments can keep secrets out
// of config files.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvNutritionixAppID); v != "" {
		cfg.Nutritionix.AppID = v
	}
	if v := os.Getenv(EnvNutritionixAppKey); v != "" {
		cfg.Nutritionix.AppKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = TransportStdio
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if !cfg.Server.Transport.IsValid() {
		errs = append(errs, fmt.Errorf("server.transport %q is invalid; valid values: stdio, streamable-http", cfg.Server.Transport))
	}
	if cfg.Server.Transport == TransportStreamableHTTP && cfg.Server.MCPListenAddr == "" {
		errs = append(errs, errors.New("server.mcp_listen_addr is required when transport is streamable-http"))
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Tools cannot return meaningful results without Nutritionix credentials,
	// so a missing pair fails startup instead of failing every call.
	if cfg.Nutritionix.AppID == "" {
		errs = append(errs, fmt.Errorf("nutritionix.app_id is required (or set %s)", EnvNutritionixAppID))
	}
	if cfg.Nutritionix.AppKey == "" {
		errs = append(errs, fmt.Errorf("nutritionix.app_key is required (or set %s)", EnvNutritionixAppKey))
	}
	if cfg.Nutritionix.Timeout < 0 {
		errs = append(errs, fmt.Errorf("nutritionix.timeout %v must not be negative", cfg.Nutritionix.Timeout))
	}
	if cfg.WGER.Timeout < 0 {
		errs = append(errs, fmt.Errorf("wger.timeout %v must not be negative", cfg.WGER.Timeout))
	}

	return errors.Join(errs...)
}
