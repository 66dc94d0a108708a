// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package patterns

import (
	"regexp"

	"github.com/ergochat/chatfmt/chat/colors"
)

var (
	// <solid:HEX>, <#HEX>, {#HEX}, &#HEX
	solidRe = regexp.MustCompile(`(?i)<solid:#?([0-9a-f]{6})>|<#([0-9a-f]{6})>|\{#([0-9a-f]{6})\}|&#([0-9a-f]{6})`)
)

// Solid replaces flat hex colour markup with a single colour token.
func Solid() Pattern {
	return &regexPattern{
		name: "solid",
		re:   solidRe,
		apply: func(groups []string, legacy bool) (string, bool) {
			color, err := colors.ParseHex(firstGroup(groups))
			if err != nil {
				return "", false
			}
			return colors.Resolve(color, legacy).String(), true
		},
		strip: func(groups []string) string {
			return ""
		},
	}
}
