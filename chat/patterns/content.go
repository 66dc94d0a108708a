// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ergochat/chatfmt/chat/colors"
	"github.com/ergochat/chatfmt/chat/smallcaps"
)

var (
	errTooFewAnchors     = errors.New("A gradient needs at least two colours")
	errInvalidSaturation = errors.New("Saturation must be a percentage or a fraction between 0 and 1")
	ErrInvalidPresetName = errors.New("Gradient preset names may only contain a-z, 0-9, '_' and '-'")

	smallCapsRe  = regexp.MustCompile(`(?is)<(?:sc|smallcaps)>(.*?)</(?:sc|smallcaps)>`)
	presetNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

// MapVisible applies fn to the visible characters of text, leaving control
// sequences in place.
func MapVisible(text string, fn func(string) string) string {
	units, tail := colors.Units(text)
	var buf strings.Builder
	for _, unit := range units {
		buf.WriteString(unit.Codes)
		buf.WriteString(fn(string(unit.Char)))
	}
	buf.WriteString(tail)
	return buf.String()
}

// SmallCaps is the <sc>TEXT</sc> content transform.
func SmallCaps() Pattern {
	return &regexPattern{
		name: "smallcaps",
		re:   smallCapsRe,
		apply: func(groups []string, legacy bool) (string, bool) {
			return MapVisible(groups[1], smallcaps.ToSmallCaps), true
		},
		strip: func(groups []string) string {
			return groups[1]
		},
	}
}

// Preset is a named multi-stop gradient, used as <name>TEXT</name>.
func Preset(name string, anchors []colors.RGB) (Pattern, error) {
	name = strings.ToLower(name)
	if !presetNameRe.MatchString(name) {
		return nil, ErrInvalidPresetName
	}
	if len(anchors) < 2 {
		return nil, errTooFewAnchors
	}
	anchors = append([]colors.RGB(nil), anchors...)
	quoted := regexp.QuoteMeta(name)
	re, err := regexp.Compile(fmt.Sprintf(`(?is)<%s>(.*?)</%s>`, quoted, quoted))
	if err != nil {
		return nil, err
	}
	return &regexPattern{
		name: "preset:" + name,
		re:   re,
		apply: func(groups []string, legacy bool) (string, bool) {
			return ApplyMultiGradient(groups[1], anchors, legacy), true
		},
		strip: func(groups []string) string {
			return groups[1]
		},
	}, nil
}
