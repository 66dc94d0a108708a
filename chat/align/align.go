// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package align centers chat lines by prepending spaces, using pixel widths.
package align

import (
	"strings"

	"github.com/ergochat/chatfmt/chat/colors"
)

const (
	// ChatLimit is the pixel distance from the left edge to the center of the chat box.
	ChatLimit = 154
	// MOTDLimit is the same for the server list message of the day.
	MOTDLimit = 127

	// width units contributed by each padding space
	padWidth = 4
)

// Widths supplies character widths; *widths.Table implements it.
type Widths interface {
	Width(char rune, bold bool) int
}

// Measure returns the pixel width of visible, skipping "§X" control sequences.
// "§l" switches bold on and any other code switches it off. Every measured
// character is followed by one pixel of spacing.
func Measure(widths Widths, visible string) (size int) {
	isBold := false
	previousCode := false
	for _, char := range visible {
		if char == colors.ControlChar {
			previousCode = true
		} else if previousCode {
			previousCode = false
			isBold = char == colors.BoldCode || char == 'L'
		} else {
			size += widths.Width(char, isBold) + 1
		}
	}
	return
}

// Pad returns the run of spaces that centers visible around limit.
// It is empty when visible is already wider than 2*limit.
func Pad(widths Widths, limit int, visible string) string {
	toCompensate := limit - Measure(widths, visible)/2
	var pad strings.Builder
	for compensated := 0; compensated < toCompensate; compensated += padWidth {
		pad.WriteByte(' ')
	}
	return pad.String()
}

// CenterPad centers text if it begins with marker. The marker is removed and
// the padding is prepended to the remaining, still styled text; visible
// reduces that text to what is actually displayed so it can be measured.
// Text without the marker is returned unchanged.
func CenterPad(widths Widths, marker string, limit int, text string, visible func(string) string) string {
	body, ok := strings.CutPrefix(text, marker)
	if !ok {
		return text
	}
	measured := body
	if visible != nil {
		measured = visible(body)
	}
	return Pad(widths, limit, measured) + body
}
