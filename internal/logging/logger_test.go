package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"ERROR", slog.LevelError, true},
		{"verbose", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got := parseLevel(tt.input)
		if tt.ok {
			if got == nil || *got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		} else if got != nil {
			t.Errorf("parseLevel(%q) = %v, want nil", tt.input, *got)
		}
	}
}

func TestGetLogger_SameInstancePerModule(t *testing.T) {
	a := GetLogger("watcher-test")
	b := GetLogger("watcher-test")
	if a != b {
		t.Error("GetLogger returned different instances for the same module")
	}
}

func TestInitialize_ModuleOverrides(t *testing.T) {
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"chatty": "error",
		},
	})

	logger := GetLogger("chatty")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("module override to error still enables info")
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("module override disabled its own level")
	}

	other := GetLogger("quiet-module")
	if !other.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("global info level not applied to unlisted module")
	}
}

func TestSetModuleLevel(t *testing.T) {
	Initialize(Config{Level: "info", Format: "text"})
	logger := GetLogger("runtime-tuned")

	if !SetModuleLevel("runtime-tuned", "debug") {
		t.Fatal("SetModuleLevel rejected a known module and level")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug not enabled after SetModuleLevel")
	}

	if SetModuleLevel("runtime-tuned", "loud") {
		t.Error("SetModuleLevel accepted an unknown level")
	}
	if SetModuleLevel("never-created", "debug") {
		t.Error("SetModuleLevel accepted an unknown module")
	}
}
