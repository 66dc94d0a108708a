// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package patterns implements the colour markup: flat colours, gradients,
// multi-stop gradients, rainbows and the small caps content transform.
package patterns

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ergochat/chatfmt/chat/colors"
)

// Pattern is one markup construct. Apply resolves the construct into
// control sequences and must be pure; Strip removes only this pattern's
// markup, keeping the enclosed text. Apply(Strip(t)) == Strip(t).
type Pattern interface {
	Name() string
	Apply(text string, legacy bool) string
	Strip(text string) string
}

// regexPattern is a Pattern driven by one regular expression. Matches that
// the callbacks reject are left as literal text.
type regexPattern struct {
	name  string
	re    *regexp.Regexp
	apply func(groups []string, legacy bool) (string, bool)
	strip func(groups []string) string
}

func (p *regexPattern) Name() string {
	return p.name
}

func (p *regexPattern) Apply(text string, legacy bool) string {
	return replaceMatches(p.re, text, func(groups []string) (string, bool) {
		return p.apply(groups, legacy)
	})
}

func (p *regexPattern) Strip(text string) string {
	return replaceMatches(p.re, text, func(groups []string) (string, bool) {
		return p.strip(groups), true
	})
}

// replaceMatches is regexp.ReplaceAllStringFunc with access to the submatches
// and the option of keeping a match as it is.
func replaceMatches(re *regexp.Regexp, text string, fn func(groups []string) (string, bool)) string {
	locations := re.FindAllStringSubmatchIndex(text, -1)
	if locations == nil {
		return text
	}
	var buf strings.Builder
	buf.Grow(len(text))
	last := 0
	for _, loc := range locations {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		buf.WriteString(text[last:loc[0]])
		if replacement, ok := fn(groups); ok {
			buf.WriteString(replacement)
		} else {
			buf.WriteString(groups[0])
		}
		last = loc[1]
	}
	buf.WriteString(text[last:])
	return buf.String()
}

// firstGroup returns the first non-empty submatch after the whole match.
func firstGroup(groups []string) string {
	for _, group := range groups[1:] {
		if group != "" {
			return group
		}
	}
	return ""
}

// span is the text enclosed by a colouring construct, split into visible units.
// formats[i] holds the style codes in effect for units[i].
type span struct {
	units   []colors.Unit
	formats []string
	tail    string
}

func newSpan(text string) (s span) {
	s.units, s.tail = colors.Units(text)
	s.formats = make([]string, len(s.units))
	var active string
	for i, unit := range s.units {
		active = carryFormats(active, unit.Codes)
		s.formats[i] = active
	}
	return
}

// carryFormats updates the active style codes with codes. Colour codes
// inside a painted span are dropped, a reset clears the styles.
func carryFormats(active, codes string) string {
	for _, code := range codes {
		switch {
		case code == colors.ControlChar:
			continue
		case code == colors.ResetCode:
			active = ""
		case colors.IsFormatCode(code):
			pair := string([]rune{colors.ControlChar, code})
			if !strings.Contains(active, pair) {
				active += pair
			}
		}
	}
	return active
}

// paintUnit renders unit i of the span in the given colour.
func (s span) paintUnit(i int, color colors.RGB, legacy bool) string {
	return colors.Resolve(color, legacy).String() + s.formats[i] + string(s.units[i].Char)
}

// paint renders every unit with the matching colour of palette.
func (s span) paint(palette []colors.RGB, legacy bool) string {
	var buf strings.Builder
	for i := range s.units {
		buf.WriteString(s.paintUnit(i, palette[i], legacy))
	}
	buf.WriteString(s.tail)
	return buf.String()
}

// Registry is an ordered list of patterns applied one after the other.
// Readers never block; Register and Unregister copy the list.
type Registry struct {
	writeMutex sync.Mutex
	patterns   atomic.Pointer[[]Pattern]
}

// NewRegistry returns a registry holding patterns in the given order.
func NewRegistry(patterns ...Pattern) *Registry {
	r := new(Registry)
	list := append([]Pattern(nil), patterns...)
	r.patterns.Store(&list)
	return r
}

// DefaultPatterns returns the built-in patterns in registration order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		SmallCaps(),
		MultiGradient(),
		Gradient(),
		Rainbow(),
		Solid(),
	}
}

// NewDefaultRegistry returns a registry with DefaultPatterns.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultPatterns()...)
}

// Patterns returns a snapshot of the registered patterns.
func (r *Registry) Patterns() []Pattern {
	return append([]Pattern(nil), (*r.patterns.Load())...)
}

// Register adds p at the end, or replaces the pattern with the same name in place.
func (r *Registry) Register(p Pattern) (replaced bool) {
	r.writeMutex.Lock()
	defer r.writeMutex.Unlock()

	list := r.Patterns()
	for i, existing := range list {
		if existing.Name() == p.Name() {
			list[i] = p
			r.patterns.Store(&list)
			return true
		}
	}
	list = append(list, p)
	r.patterns.Store(&list)
	return false
}

// Unregister removes the pattern with the given name.
func (r *Registry) Unregister(name string) (removed bool) {
	r.writeMutex.Lock()
	defer r.writeMutex.Unlock()

	current := *r.patterns.Load()
	list := make([]Pattern, 0, len(current))
	for _, existing := range current {
		if existing.Name() == name {
			removed = true
		} else {
			list = append(list, existing)
		}
	}
	if removed {
		r.patterns.Store(&list)
	}
	return
}

// Apply runs every pattern over text in registration order.
func (r *Registry) Apply(text string, legacy bool) string {
	for _, p := range *r.patterns.Load() {
		text = p.Apply(text, legacy)
	}
	return text
}

// Strip removes the markup of every pattern.
func (r *Registry) Strip(text string) string {
	for _, p := range *r.patterns.Load() {
		text = p.Strip(text)
	}
	return text
}
