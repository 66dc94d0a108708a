// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package patterns

import (
	"regexp"
	"strings"

	"github.com/ergochat/chatfmt/chat/colors"
)

var (
	// <gradient:HEX>TEXT</gradient:HEX>, <g:HEX>TEXT</g:HEX>
	gradientRe = regexp.MustCompile(`(?is)<(?:gradient|g):#?([0-9a-f]{6})>(.*?)</(?:gradient|g):#?([0-9a-f]{6})>`)
	// <#H1:#H2[:#H3...]>TEXT</g>
	multiGradientRe = regexp.MustCompile(`(?is)<(#[0-9a-f]{6}(?::#[0-9a-f]{6})+)>(.*?)</g>`)
)

// Interpolate returns n colours going from start towards end. Each channel
// moves by |start-end|/(n-1) per step using integer division, so the last
// colour can fall short of end; existing configurations depend on these exact
// sequences. n < 2 yields just start.
func Interpolate(start, end colors.RGB, n int) []colors.RGB {
	if n < 2 {
		if n < 1 {
			return nil
		}
		return []colors.RGB{start}
	}
	stepR, dirR := channelStep(start.R, end.R, n)
	stepG, dirG := channelStep(start.G, end.G, n)
	stepB, dirB := channelStep(start.B, end.B, n)
	result := make([]colors.RGB, n)
	for i := range result {
		result[i] = colors.RGB{
			R: uint8(int(start.R) + stepR*i*dirR),
			G: uint8(int(start.G) + stepG*i*dirG),
			B: uint8(int(start.B) + stepB*i*dirB),
		}
	}
	return result
}

func channelStep(start, end uint8, n int) (step, direction int) {
	diff := int(start) - int(end)
	if diff < 0 {
		return -diff / (n - 1), 1
	}
	return diff / (n - 1), -1
}

// ApplyGradient colours the visible characters of text from start to end.
// Text with fewer than two visible characters is returned unchanged.
func ApplyGradient(text string, start, end colors.RGB, legacy bool) string {
	s := newSpan(text)
	if len(s.units) < 2 {
		return text
	}
	return s.paint(Interpolate(start, end, len(s.units)), legacy)
}

// ApplyMultiGradient colours text across several anchors. The visible
// characters are split into len(anchors)-1 parts, earlier parts taking the
// extra characters when the split is uneven.
func ApplyMultiGradient(text string, anchors []colors.RGB, legacy bool) string {
	if len(anchors) < 2 {
		return text
	}
	s := newSpan(text)
	if len(s.units) < 2 {
		return text
	}

	var buf strings.Builder
	parts := len(anchors) - 1
	remaining := len(s.units)
	offset := 0
	for i := 0; i < parts && remaining > 0; i++ {
		size := (remaining + (parts - i) - 1) / (parts - i)
		first := offset
		if i > 0 {
			// the last character of the previous part is the joint: it takes part
			// in this part's interpolation too, so the colours stay continuous
			first--
		}
		palette := Interpolate(anchors[i], anchors[i+1], offset+size-first)
		painted := make([]string, len(palette))
		for j := range palette {
			painted[j] = s.paintUnit(first+j, palette[j], legacy)
		}
		if i > 0 {
			// the joint was already written by the previous part; drop its repeat
			painted = painted[1:]
		}
		for _, unit := range painted {
			buf.WriteString(unit)
		}
		offset += size
		remaining -= size
	}
	buf.WriteString(s.tail)
	return buf.String()
}

// Gradient is the two-anchor shorthand <g:HEX>TEXT</g:HEX>.
func Gradient() Pattern {
	return &regexPattern{
		name: "gradient",
		re:   gradientRe,
		apply: func(groups []string, legacy bool) (string, bool) {
			start, err := colors.ParseHex(groups[1])
			if err != nil {
				return "", false
			}
			end, err := colors.ParseHex(groups[3])
			if err != nil {
				return "", false
			}
			return ApplyGradient(groups[2], start, end, legacy), true
		},
		strip: func(groups []string) string {
			return groups[2]
		},
	}
}

// MultiGradient is <#H1:#H2[:#H3...]>TEXT</g>.
func MultiGradient() Pattern {
	return &regexPattern{
		name: "multi-gradient",
		re:   multiGradientRe,
		apply: func(groups []string, legacy bool) (string, bool) {
			anchors, err := parseAnchors(strings.Split(groups[1], ":"))
			if err != nil {
				return "", false
			}
			return ApplyMultiGradient(groups[2], anchors, legacy), true
		},
		strip: func(groups []string) string {
			return groups[2]
		},
	}
}

func parseAnchors(hexes []string) (anchors []colors.RGB, err error) {
	anchors = make([]colors.RGB, len(hexes))
	for i, hex := range hexes {
		anchors[i], err = colors.ParseHex(hex)
		if err != nil {
			return nil, err
		}
	}
	if len(anchors) < 2 {
		return nil, errTooFewAnchors
	}
	return anchors, nil
}
