// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package colors

import (
	"strings"
)

// Style is the formatting in effect at one point of a resolved string.
type Style struct {
	Color         ColorToken
	HasColor      bool
	Obfuscated    bool
	Bold          bool
	Strikethrough bool
	Underline     bool
	Italic        bool
}

// Apply updates the style for one control sequence. Setting a colour clears
// the format codes, as does a reset, which also clears the colour.
func (s *Style) Apply(seq Sequence) {
	if seq.IsColor {
		*s = Style{Color: seq.Color, HasColor: true}
		return
	}
	switch seq.Code {
	case ResetCode:
		*s = Style{}
	case 'k':
		s.Obfuscated = true
	case BoldCode:
		s.Bold = true
	case 'm':
		s.Strikethrough = true
	case 'n':
		s.Underline = true
	case 'o':
		s.Italic = true
	}
}

// IsPlain reports whether the style has neither colour nor formatting.
func (s Style) IsPlain() bool {
	return s == Style{}
}

// Run is a stretch of visible text sharing one style.
type Run struct {
	Style Style
	Text  string
}

// Runs splits a resolved string into styled runs of visible text, starting
// from the given style. It returns the style in effect at the end of str.
func Runs(str string, start Style) (runs []Run, end Style) {
	units, tail := Units(str)
	style := start
	var text strings.Builder
	flush := func() {
		if text.Len() != 0 {
			runs = append(runs, Run{Style: style, Text: text.String()})
			text.Reset()
		}
	}
	for _, unit := range units {
		if unit.Codes != "" {
			next := style
			for _, seq := range Sequences(unit.Codes) {
				next.Apply(seq)
			}
			if next != style {
				flush()
				style = next
			}
		}
		text.WriteRune(unit.Char)
	}
	flush()
	for _, seq := range Sequences(tail) {
		style.Apply(seq)
	}
	return runs, style
}
