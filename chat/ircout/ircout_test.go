// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package ircout

import (
	"testing"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/segments"
)

func assertEqual(found, expected string, t *testing.T) {
	t.Helper()
	if found != expected {
		t.Errorf("expected %q, found %q", expected, found)
	}
}

func TestColorName(t *testing.T) {
	assertEqual(ColorName(colors.Legacy('c')), "red", t)
	assertEqual(ColorName(colors.Legacy('6')), "orange", t)
	assertEqual(ColorName(colors.FromRGB(colors.RGB{R: 0xfe, G: 0x50, B: 0x50})), "red", t)
	assertEqual(ColorName(colors.FromRGB(colors.RGB{R: 0x10, G: 0x10, B: 0x10})), "black", t)
}

func TestEscape(t *testing.T) {
	assertEqual(Escape("plain"), "plain", t)
	assertEqual(Escape("§cred §lbold"), "$c[red]red $bbold", t)
	assertEqual(Escape("§lbold§r plain"), "$bbold$r plain", t)
	// a colour code ends bold
	assertEqual(Escape("§lB§aG"), "$bB$r$c[light green]G", t)
	assertEqual(Escape("§o§ni"), "$i$ui", t)
	assertEqual(Escape("cost: $5"), "cost: $$5", t)
	hex := colors.FromRGB(colors.RGB{R: 0xfe, G: 0x50, B: 0x50})
	assertEqual(Escape(hex.String()+"x"), "$c[red]x", t)
}

func TestLower(t *testing.T) {
	assertEqual(Lower("§cred"), "\x034red", t)
	// a digit after the colour forces the two-digit form
	assertEqual(Lower("§c1"), "\x03041", t)
	assertEqual(Lower("§lb§r x"), "\x02b\x0f x", t)
	assertEqual(Lower("a$b"), "a$b", t)
	assertEqual(Strip(Lower("§cred §lbold")), "red bold", t)
}

func TestLowerSegments(t *testing.T) {
	var parser segments.Parser
	assertEqual(LowerSegments(parser.Parse(`<run:"/help">Click me</text> visit http://x.io`)), "Click me visit http://x.io", t)
	assertEqual(LowerSegments(parser.Parse(`see <url:"https://x.io">§lsite</text>!`)), "see \x02site\x0f <https://x.io>!", t)
	assertEqual(LowerSegments(parser.Parse("go to www.x.io")), "go to www.x.io", t)

	// formatting carries over between segments and is reset when it ends
	assertEqual(LowerSegments([]segments.Segment{{Content: "§lA"}, {Content: "B"}}), "\x02A\x0fB", t)
}
