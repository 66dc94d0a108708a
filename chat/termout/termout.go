// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package termout lowers resolved chat text and segments to ANSI terminal
// output.
package termout

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/segments"
)

// Renderer styles text for one output.
type Renderer struct {
	renderer *lipgloss.Renderer
	ansi     bool
}

// NewRenderer returns a renderer for w. With color unset, all styling is
// dropped and only the visible text is written.
func NewRenderer(w io.Writer, color bool) *Renderer {
	renderer := lipgloss.NewRenderer(w)
	if color {
		renderer.SetColorProfile(termenv.TrueColor)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{renderer: renderer, ansi: color}
}

func (r *Renderer) style(style colors.Style) lipgloss.Style {
	s := r.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if style.HasColor {
		s = s.Foreground(lipgloss.Color("#" + style.Color.RGB().Hex()))
	}
	// no terminal equivalent of obfuscated text; reverse video marks it
	return s.Bold(style.Bold).
		Italic(style.Italic).
		Underline(style.Underline).
		Strikethrough(style.Strikethrough).
		Reverse(style.Obfuscated)
}

func (r *Renderer) write(out *strings.Builder, resolved string) {
	runs, _ := colors.Runs(resolved, colors.Style{})
	for _, run := range runs {
		if run.Style.IsPlain() || !r.ansi {
			out.WriteString(run.Text)
		} else {
			out.WriteString(r.style(run.Style).Render(run.Text))
		}
	}
}

// Text renders resolved text.
func (r *Renderer) Text(resolved string) string {
	var out strings.Builder
	r.write(&out, resolved)
	return out.String()
}

// Segments renders segments one after the other. Links become terminal
// hyperlinks; other click and hover actions have no terminal equivalent.
func (r *Renderer) Segments(segs []segments.Segment) string {
	var out strings.Builder
	for _, segment := range segs {
		link := r.ansi && segment.Click != nil && segment.Click.Kind == segments.OpenURL
		if link {
			out.WriteString(ansi.SetHyperlink(segment.Click.Argument))
		}
		r.write(&out, segment.Content)
		if link {
			out.WriteString(ansi.ResetHyperlink())
		}
	}
	return out.String()
}
