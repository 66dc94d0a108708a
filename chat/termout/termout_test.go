// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package termout

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/ergochat/chatfmt/chat/segments"
)

func TestPlainRenderer(t *testing.T) {
	r := NewRenderer(io.Discard, false)
	if out := r.Text("§cred §lbold§r\tend"); out != "red bold\tend" {
		t.Errorf("unexpected plain output %q", out)
	}
}

func TestColorRenderer(t *testing.T) {
	r := NewRenderer(io.Discard, true)
	out := r.Text("plain §cred §lbold")
	if ansi.Strip(out) != "plain red bold" {
		t.Errorf("visible text changed: %q", ansi.Strip(out))
	}
	if !strings.HasPrefix(out, "plain ") {
		t.Errorf("plain run should not be styled: %q", out)
	}
	if !strings.Contains(out, "38;2;255;85;85") {
		t.Errorf("missing truecolor red in %q", out)
	}
}

func TestSegments(t *testing.T) {
	var parser segments.Parser
	segs := parser.Parse(`<run:"/help">Click me</text> visit http://x.io`)

	out := NewRenderer(io.Discard, true).Segments(segs)
	if ansi.Strip(out) != "Click me visit http://x.io" {
		t.Errorf("visible text changed: %q", ansi.Strip(out))
	}
	if !strings.Contains(out, "]8;;http://x.io") {
		t.Errorf("missing hyperlink in %q", out)
	}

	out = NewRenderer(io.Discard, false).Segments(segs)
	if out != "Click me visit http://x.io" {
		t.Errorf("unexpected plain output %q", out)
	}
}
