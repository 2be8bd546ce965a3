// Package config provides the configuration schema and loader for the
// nutrifit MCP server.
package config

import "time"

// LogLevel controls log verbosity for the nutrifit server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Transport selects how MCP clients connect to the server.
type Transport string

const (
	// TransportStdio serves a single client over stdin/stdout.
	TransportStdio Transport = "stdio"

	// TransportStreamableHTTP serves MCP over the streamable HTTP transport.
	TransportStreamableHTTP Transport = "streamable-http"
)

// IsValid reports whether t is a recognised transport.
func (t Transport) IsValid() bool {
	return t == TransportStdio || t == TransportStreamableHTTP
}

// Config is the root configuration structure for nutrifit.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Nutritionix NutritionixConfig `yaml:"nutritionix"`
	WGER        WGERConfig        `yaml:"wger"`
}

// ServerConfig holds transport, network, and logging settings.
type ServerConfig struct {
	// Transport selects how MCP clients connect. Defaults to stdio.
	Transport Transport `yaml:"transport"`

	// MCPListenAddr is the TCP address the MCP endpoint listens on when
	// Transport is "streamable-http" (e.g., ":8765"). Ignored for stdio.
	MCPListenAddr string `yaml:"mcp_listen_addr"`

	// ListenAddr is the TCP address for the health and metrics endpoints
	// (e.g., ":8080"). Empty disables the HTTP sidecar entirely, which is
	// the right choice for stdio deployments that share stdout with MCP.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// LogFile is a path for rotated log output. Empty logs to stderr only.
	LogFile string `yaml:"log_file"`
}

// NutritionixConfig holds Nutritionix API credentials and endpoint settings.
// AppID and AppKey may also be supplied via the NUTRITIONIX_APP_ID and
// NUTRITIONIX_APP_KEY environment variables, which take precedence.
type NutritionixConfig struct {
	AppID  string `yaml:"app_id"`
	AppKey string `yaml:"app_key"`

	// BaseURL overrides the default API endpoint. Leave empty for production.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each upstream request. Zero uses the client default.
	Timeout time.Duration `yaml:"timeout"`
}

// WGERConfig holds WGER API endpoint settings. The public catalog endpoints
// need no credentials.
type WGERConfig struct {
	// BaseURL overrides the default API endpoint. Leave empty for wger.de.
	BaseURL string `yaml:"base_url"`

	// UserAgent overrides the User-Agent header sent to WGER.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds each upstream request. Zero uses the client default.
	Timeout time.Duration `yaml:"timeout"`
}
