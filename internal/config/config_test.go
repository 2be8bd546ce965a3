package config_test

import (
	"testing"

	"github.com/nutrifit/nutrifit/internal/config"
)

func TestLogLevelIsValid(t *testing.T) {
	t.Parallel()
	valid := []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError}
	for _, l := range valid {
		if !l.IsValid() {
			t.Errorf("LogLevel(%q).IsValid() = false, want true", l)
		}
	}
	invalid := []config.LogLevel{"", "trace", "INFO", "verbose"}
	for _, l := range invalid {
		if l.IsValid() {
			t.Errorf("LogLevel(%q).IsValid() = true, want false", l)
		}
	}
}

func TestTransportIsValid(t *testing.T) {
	t.Parallel()
	if !config.TransportStdio.IsValid() {
		t.Error("stdio should be valid")
	}
	if !config.TransportStreamableHTTP.IsValid() {
		t.Error("streamable-http should be valid")
	}
	for _, tr := range []config.Transport{"", "sse", "websocket"} {
		if tr.IsValid() {
			t.Errorf("Transport(%q).IsValid() = true, want false", tr)
		}
	}
}
