// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ergochat/chatfmt/chat/colors"
)

var (
	// <rainbow:SAT>TEXT</rainbow>, <rainbowSAT>TEXT</rainbow>, <r:SAT>TEXT</r>
	rainbowRe = regexp.MustCompile(`(?is)<(?:rainbow|r):?([0-9]*\.?[0-9]+)>(.*?)</(?:rainbow|r)>`)
)

// ParseSaturation accepts an integer percentage ("50") or a fraction ("0.5").
func ParseSaturation(str string) (float64, error) {
	if strings.ContainsRune(str, '.') {
		value, err := strconv.ParseFloat(str, 64)
		if err != nil || value < 0 || value > 1 {
			return 0, errInvalidSaturation
		}
		return value, nil
	}
	percent, err := strconv.Atoi(str)
	if err != nil || percent < 0 || percent > 100 {
		return 0, errInvalidSaturation
	}
	return float64(percent) / 100, nil
}

// RainbowColors returns n colours sweeping the hue wheel: colour i has hue
// i/n, and saturation and brightness both equal to saturation.
func RainbowColors(n int, saturation float64) []colors.RGB {
	result := make([]colors.RGB, n)
	step := 1.0 / float64(n)
	for i := range result {
		r, g, b := colorful.Hsv(step*float64(i)*360, saturation, saturation).RGB255()
		result[i] = colors.RGB{R: r, G: g, B: b}
	}
	return result
}

// ApplyRainbow colours every visible character of text with one hue step.
// Like a gradient, text with fewer than two visible characters is returned
// unchanged.
func ApplyRainbow(text string, saturation float64, legacy bool) string {
	s := newSpan(text)
	if len(s.units) < 2 {
		return text
	}
	return s.paint(RainbowColors(len(s.units), saturation), legacy)
}

// Rainbow is <rainbow:SAT>TEXT</rainbow>.
func Rainbow() Pattern {
	return &regexPattern{
		name: "rainbow",
		re:   rainbowRe,
		apply: func(groups []string, legacy bool) (string, bool) {
			saturation, err := ParseSaturation(groups[1])
			if err != nil {
				return "", false
			}
			return ApplyRainbow(groups[2], saturation, legacy), true
		},
		strip: func(groups []string) string {
			return groups[2]
		},
	}
}
