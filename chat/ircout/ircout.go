// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package ircout lowers resolved chat text to IRC formatting codes.
package ircout

import (
	"strings"

	"github.com/ergochat/irc-go/ircfmt"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/segments"
)

// IRC names (as understood by ircfmt) of the legacy palette, by code
var colorNames = map[rune]string{
	'0': "black",
	'1': "blue",
	'2': "green",
	'3': "cyan",
	'4': "brown",
	'5': "magenta",
	'6': "orange",
	'7': "light grey",
	'8': "grey",
	'9': "light blue",
	'a': "light green",
	'b': "light cyan",
	'c': "red",
	'd': "pink",
	'e': "yellow",
	'f': "white",
}

var dollarEscaper = strings.NewReplacer("$", "$$")

// ColorName returns the IRC colour name for a token. RGB colours are
// approximated by the nearest legacy colour.
func ColorName(token colors.ColorToken) string {
	code := token.Code()
	if !token.IsLegacy() {
		code = colors.Nearest(token.RGB()).Code
	}
	return colorNames[code]
}

// escaper writes ircfmt escapes, tracking the formatting in effect.
type escaper struct {
	out   strings.Builder
	style colors.Style
}

func (e *escaper) write(resolved string) {
	runs, _ := colors.Runs(resolved, colors.Style{})
	for _, run := range runs {
		writeTransition(&e.out, e.style, run.Style)
		e.out.WriteString(dollarEscaper.Replace(run.Text))
		e.style = run.Style
	}
}

func (e *escaper) reset() {
	if !e.style.IsPlain() {
		e.out.WriteString("$r")
		e.style = colors.Style{}
	}
}

// Escape converts resolved text into ircfmt's escaped form, e.g.
// "§cred §lbold" becomes "$c[red]red $bbold".
func Escape(resolved string) string {
	var e escaper
	e.write(resolved)
	return e.out.String()
}

// IRC formats toggle, so a style that loses anything is reached through a reset.
func writeTransition(out *strings.Builder, from, to colors.Style) {
	if (from.Bold && !to.Bold) || (from.Italic && !to.Italic) ||
		(from.Underline && !to.Underline) || (from.Strikethrough && !to.Strikethrough) ||
		(from.HasColor && !to.HasColor) {
		out.WriteString("$r")
		from = colors.Style{}
	}
	if to.HasColor && (!from.HasColor || ColorName(from.Color) != ColorName(to.Color)) {
		out.WriteString("$c[")
		out.WriteString(ColorName(to.Color))
		out.WriteString("]")
	}
	if to.Bold && !from.Bold {
		out.WriteString("$b")
	}
	if to.Italic && !from.Italic {
		out.WriteString("$i")
	}
	if to.Underline && !from.Underline {
		out.WriteString("$u")
	}
	if to.Strikethrough && !from.Strikethrough {
		out.WriteString("$s")
	}
}

// Lower converts resolved text into a raw IRC message body.
func Lower(resolved string) string {
	return ircfmt.Unescape(Escape(resolved))
}

// LowerSegments joins segments into one IRC message body. IRC has no click
// or hover support: links are written out after their text when it differs
// from the target, and other actions are dropped.
func LowerSegments(segs []segments.Segment) string {
	var e escaper
	for _, segment := range segs {
		e.write(segment.Content)
		if segment.Click != nil && segment.Click.Kind == segments.OpenURL {
			text := colors.StripCodes(segment.Content)
			target := segment.Click.Argument
			if text != target && !strings.HasSuffix(target, "://"+text) {
				e.reset()
				e.out.WriteString(" <")
				e.out.WriteString(dollarEscaper.Replace(target))
				e.out.WriteString(">")
			}
		}
	}
	return ircfmt.Unescape(e.out.String())
}

// Strip returns the text of a raw IRC message body without formatting.
func Strip(raw string) string {
	return ircfmt.Strip(raw)
}
