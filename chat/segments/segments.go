// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package segments splits a chat message into runs of text that share one
// click/hover behaviour.
package segments

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/utils"
)

var (
	// <action:"arg"[|action2:"arg2"]>content</text>
	tagRe = regexp.MustCompile(`(?s)<([a-zA-Z_]+:"[^"]*"(?:\|[a-zA-Z_]+:"[^"]*")?)>(.*?)</text>`)
	// the older action=[argument] syntax
	legacyActionRe = regexp.MustCompile(`(?i)\b(url|link|open_url|run|cmd|command|run_command|suggest|suggest_command|copy|clipboard|copy_to_clipboard|page|change_page|hover|text|show_text|item|show_item)=\[([^\]"]*)\]`)
	urlRe          = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"§]+`)
)

// Segment is a run of text with at most one click action and one kind of
// hover data.
type Segment struct {
	Content string `json:"content"`
	// TrailingColor is the last colour set inside Content, carried into the
	// next segment
	TrailingColor *colors.ColorToken `json:"trailing_color,omitempty"`
	Click         *ClickAction       `json:"click,omitempty"`
	HoverLines    []string           `json:"hover,omitempty"`
	HoverPayload  string             `json:"hover_item,omitempty"`
}

// IsPlain reports whether the segment has no click or hover behaviour.
func (s *Segment) IsPlain() bool {
	return s.Click == nil && s.HoverLines == nil && s.HoverPayload == ""
}

// NormalizeLegacy rewrites action=[argument] into action:"argument".
func NormalizeLegacy(raw string) string {
	return legacyActionRe.ReplaceAllString(raw, `$1:"$2"`)
}

// Parser turns raw messages into segments. The zero value is usable.
type Parser struct {
	// Content, if set, resolves the colour markup of each segment's content
	// and hover lines
	Content func(string) string
	// HoverWidth, if positive, wraps hover lines to this many characters
	HoverWidth int
}

// Parse splits raw into segments: one per tag span, one per bare URL and one
// per run of plain text in between. A segment that does not start with a
// colour of its own inherits the trailing colour of the previous segment.
// Colour markup is resolved within each tag span and within each run of text
// between tags, so a colour span must not cross a tag.
func (p *Parser) Parse(raw string) (result []Segment) {
	raw = NormalizeLegacy(raw)

	var previous *colors.ColorToken
	emit := func(segment Segment) {
		if segment.Content == "" {
			return
		}
		if previous != nil && !colors.HasLeadingColor(segment.Content) {
			segment.Content = previous.String() + segment.Content
		}
		if token, ok := colors.LastColor(segment.Content); ok {
			segment.TrailingColor = &token
		}
		if segment.HoverLines != nil {
			segment.HoverLines = p.hoverLines(segment.HoverLines)
		}
		previous = segment.TrailingColor
		result = append(result, segment)
	}

	last := 0
	for _, loc := range tagRe.FindAllStringSubmatchIndex(raw, -1) {
		scanURLs(p.resolve(raw[last:loc[0]]), emit)
		segment := Segment{Content: p.resolve(raw[loc[4]:loc[5]])}
		for _, action := range ParseActions(raw[loc[2]:loc[3]]) {
			action.applyTo(&segment)
		}
		emit(segment)
		last = loc[1]
	}
	scanURLs(p.resolve(raw[last:]), emit)
	return
}

func (p *Parser) resolve(text string) string {
	if p.Content == nil {
		return text
	}
	return p.Content(text)
}

func (p *Parser) hoverLines(lines []string) (result []string) {
	for _, line := range lines {
		line = p.resolve(line)
		if p.HoverWidth > 0 {
			result = append(result, utils.WordWrap(line, p.HoverWidth)...)
		} else {
			result = append(result, line)
		}
	}
	return
}

// visibleText returns text without control sequences. For the rune at each
// byte offset of visible, codeStart is where its control sequences begin in
// text and charEnd is the offset just past the rune.
func visibleText(text string) (visible string, codeStart, charEnd []int) {
	var buf strings.Builder
	codeStart = make([]int, len(text)+1)
	charEnd = make([]int, len(text)+1)
	pending := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == colors.ControlChar && i+size < len(text) {
			code, codeSize := utf8.DecodeRuneInString(text[i+size:])
			if colors.IsCode(code) {
				if pending < 0 {
					pending = i
				}
				i += size + codeSize
				continue
			}
		}
		start := i
		if pending >= 0 {
			start, pending = pending, -1
		}
		codeStart[buf.Len()] = start
		charEnd[buf.Len()] = i + size
		buf.WriteString(text[i : i+size])
		i += size
	}
	return buf.String(), codeStart, charEnd
}

// scanURLs emits resolved text, cutting bare URLs out into their own
// segments. URLs are found in the visible text, so a coloured URL is still
// recognized; its control sequences stay with it.
func scanURLs(text string, emit func(Segment)) {
	visible, codeStart, charEnd := visibleText(text)
	last := 0
	for _, loc := range urlRe.FindAllStringIndex(visible, -1) {
		url := strings.TrimRight(visible[loc[0]:loc[1]], ".,;:!?)'")
		if url == "" {
			continue
		}
		_, size := utf8.DecodeLastRuneInString(url)
		start, end := codeStart[loc[0]], charEnd[loc[0]+len(url)-size]
		emit(Segment{Content: text[last:start]})
		target := url
		if strings.HasPrefix(strings.ToLower(url), "www.") {
			target = "https://" + url
		}
		emit(Segment{Content: text[start:end], Click: &ClickAction{Kind: OpenURL, Argument: target}})
		last = end
	}
	emit(Segment{Content: text[last:]})
}

// RemoveFormat returns raw with every click/hover tag replaced by its
// content. Colour markup and bare URLs are left alone.
func RemoveFormat(raw string) string {
	return tagRe.ReplaceAllString(NormalizeLegacy(raw), "${2}")
}
