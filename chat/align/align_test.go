// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package align

import (
	"strings"
	"testing"

	"github.com/ergochat/chatfmt/chat/widths"
)

func assertEqual(found, expected interface{}, t *testing.T) {
	t.Helper()
	if found != expected {
		t.Errorf("expected %#v, found %#v", expected, found)
	}
}

func TestMeasure(t *testing.T) {
	table := widths.NewTable()
	assertEqual(Measure(table, ""), 0, t)
	assertEqual(Measure(table, "Hi"), 8, t)
	assertEqual(Measure(table, "§lHi"), 10, t)
	// a colour code ends bold
	assertEqual(Measure(table, "§lH§ci"), 9, t)
	assertEqual(Measure(table, "§cHi§r"), 8, t)
	// hex sequences are a chain of two-character codes
	assertEqual(Measure(table, "§x§f§f§0§0§0§0Hi"), 8, t)
	assertEqual(Measure(table, "a b"), 6+4+6, t)
	assertEqual(Measure(table, "§la b"), 7+4+7, t)
}

func TestPad(t *testing.T) {
	table := widths.NewTable()
	pad := Pad(table, ChatLimit, "Hi")
	// 154 - 8/2 = 150, reached after 38 spaces of 4
	assertEqual(len(pad), 38, t)
	assertEqual(strings.Trim(pad, " "), "", t)

	assertEqual(Pad(table, 0, "Hi"), "", t)
	assertEqual(Pad(table, 0, ""), "", t)
	assertEqual(Pad(table, 2, strings.Repeat("W", 200)), "", t)
}

func TestCenterPad(t *testing.T) {
	table := widths.NewTable()

	assertEqual(CenterPad(table, "<center>", ChatLimit, "no marker", nil), "no marker", t)

	styled := "§c§lWelcome!"
	centered := CenterPad(table, "<center>", ChatLimit, "<center>"+styled, nil)
	if !strings.HasSuffix(centered, styled) {
		t.Fatalf("styled text was altered: %q", centered)
	}
	pad := strings.TrimSuffix(centered, styled)
	if len(pad) == 0 || strings.Trim(pad, " ") != "" {
		t.Errorf("expected a pad made of spaces, found %q", pad)
	}
	assertEqual(len(pad), len(Pad(table, ChatLimit, styled)), t)

	// measured text can differ from the text that is kept
	stripped := CenterPad(table, "<center>", ChatLimit, "<center><b>x</b>", func(string) string { return "x" })
	assertEqual(stripped, Pad(table, ChatLimit, "x")+"<b>x</b>", t)

	assertEqual(CenterPad(table, "<center>", 0, "<center>abc", nil), "abc", t)
}
