// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, level Level, types []string, excluded []string) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	config := LoggingConfig{
		Writer:        &buf,
		Level:         level,
		Types:         types,
		ExcludedTypes: excluded,
	}
	manager, err := NewManager([]LoggingConfig{config})
	if err != nil {
		t.Fatal(err)
	}
	return manager, &buf
}

func TestLevelsAndTypes(t *testing.T) {
	manager, buf := newTestLogger(t, LogInfo, []string{"*"}, []string{"server"})
	manager.Debug("format", "hidden")
	manager.Info("server", "hidden")
	manager.Info("format", "registered pattern", "rainbow")
	manager.Error("ws", "hidden by alias")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("unexpected line in %q", output)
	}
	if !strings.Contains(output, " : info  : format : registered pattern : rainbow\n") {
		t.Errorf("missing line in %q", output)
	}
	if strings.Count(output, "\n") != 1 {
		t.Errorf("expected exactly one line, got %q", output)
	}
}

func TestAliases(t *testing.T) {
	manager, buf := newTestLogger(t, LogDebug, []string{"patterns"}, nil)
	manager.Warning("format", "aliased")
	manager.Warning("cache", "other")
	if output := buf.String(); !strings.Contains(output, "aliased") || strings.Contains(output, "other") {
		t.Errorf("bad output %q", output)
	}
}

func TestTracing(t *testing.T) {
	manager, _ := newTestLogger(t, LogDebug, []string{"*"}, nil)
	if manager.IsTracing() {
		t.Error("wildcard alone should not enable tracing")
	}
	manager, _ = newTestLogger(t, LogInfo, []string{TraceType}, nil)
	if manager.IsTracing() {
		t.Error("tracing requires debug level")
	}
	manager, _ = newTestLogger(t, LogDebug, []string{"*", TraceType}, nil)
	if !manager.IsTracing() {
		t.Error("tracing should be enabled")
	}
	manager.ApplyConfig(nil)
	if manager.IsTracing() {
		t.Error("rehash should reset tracing")
	}
}

func TestFileMethod(t *testing.T) {
	filename := t.TempDir() + "/chatfmt.log"
	manager, err := NewManager([]LoggingConfig{{
		MethodFile: true,
		Filename:   filename,
		Level:      LogDebug,
		Types:      []string{"*"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	manager.Info("cache", "opened")
	manager.Close()

	manager, err = NewManager([]LoggingConfig{{
		MethodFile: true,
		Filename:   t.TempDir() + "/missing/dir/chatfmt.log",
		Level:      LogDebug,
		Types:      []string{"*"},
	}})
	if err == nil || manager != nil {
		t.Error("expected an error for an unwritable log file")
	}
}
