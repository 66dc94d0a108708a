// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package colors

import (
	"strings"
)

const (
	// ControlChar introduces a two-character control sequence.
	ControlChar = '§'
	// AltControlChar is the user-typeable prefix translated to ControlChar.
	AltControlChar = '&'

	ResetCode = 'r'
	BoldCode  = 'l'
	HexCode   = 'x'
)

// IsColorCode reports whether c is one of the 16 legacy colour codes.
func IsColorCode(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// IsFormatCode reports whether c is a style code (obfuscated, bold,
// strikethrough, underline, italic).
func IsFormatCode(c rune) bool {
	return ('k' <= c && c <= 'o') || ('K' <= c && c <= 'O')
}

// IsCode reports whether c may follow a control prefix.
func IsCode(c rune) bool {
	return IsColorCode(c) || IsFormatCode(c) || c == 'r' || c == 'R' || c == 'x' || c == 'X'
}

func isControl(c rune) bool {
	return c == ControlChar || c == AltControlChar
}

// TranslateAlternate rewrites "&c"-style codes into "§c" codes.
// An '&' not followed by a code character is left alone.
func TranslateAlternate(str string) string {
	if !strings.ContainsRune(str, AltControlChar) {
		return str
	}
	runes := []rune(str)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == AltControlChar && IsCode(runes[i+1]) {
			runes[i] = ControlChar
			runes[i+1] = toLower(runes[i+1])
		}
	}
	return string(runes)
}

// StripCodes removes every "§X" control sequence.
func StripCodes(str string) string {
	if !strings.ContainsRune(str, ControlChar) {
		return str
	}
	var buf strings.Builder
	buf.Grow(len(str))
	runes := []rune(str)
	for i := 0; i < len(runes); i++ {
		if runes[i] == ControlChar && i+1 < len(runes) && IsCode(runes[i+1]) {
			i++
			continue
		}
		buf.WriteRune(runes[i])
	}
	return buf.String()
}

// Unit is one visible rune together with the control sequences immediately
// before it. Codes is normalized to use ControlChar and lowercase codes.
type Unit struct {
	Codes string
	Char  rune
}

// Units splits str into visible units. Control sequences after the last
// visible rune are returned as tail. Both '§' and '&' prefixes are recognized.
func Units(str string) (units []Unit, tail string) {
	var codes strings.Builder
	runes := []rune(str)
	for i := 0; i < len(runes); i++ {
		if isControl(runes[i]) && i+1 < len(runes) && IsCode(runes[i+1]) {
			codes.WriteRune(ControlChar)
			codes.WriteRune(toLower(runes[i+1]))
			i++
			continue
		}
		units = append(units, Unit{Codes: codes.String(), Char: runes[i]})
		codes.Reset()
	}
	return units, codes.String()
}

// VisibleLength counts the runes of str that are not part of a control sequence.
func VisibleLength(str string) int {
	units, _ := Units(str)
	return len(units)
}

// scanCodes calls fn for every control sequence in str in order, passing
// the code and the remaining runes after it.
func scanCodes(str string, fn func(code rune, rest []rune) (skip int)) {
	runes := []rune(str)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] == ControlChar && IsCode(runes[i+1]) {
			code := toLower(runes[i+1])
			i += 1 + fn(code, runes[i+2:])
		}
	}
}

// parseHexSequence reads the six "§d" pairs that follow "§x".
func parseHexSequence(rest []rune) (RGB, bool) {
	if len(rest) < 12 {
		return RGB{}, false
	}
	digits := make([]rune, 0, 6)
	for i := 0; i < 12; i += 2 {
		if rest[i] != ControlChar || !IsColorCode(rest[i+1]) {
			return RGB{}, false
		}
		digits = append(digits, rest[i+1])
	}
	rgb, err := ParseHex(string(digits))
	return rgb, err == nil
}

// Sequence is one control sequence. For colour sequences Color is set and
// Code is the colour code, or HexCode for RGB colours.
type Sequence struct {
	Code    rune
	Color   ColorToken
	IsColor bool
}

// Sequences returns the control sequences of str in order. Malformed RGB
// sequences are skipped.
func Sequences(str string) (result []Sequence) {
	scanCodes(str, func(code rune, rest []rune) int {
		switch {
		case code == HexCode:
			if rgb, valid := parseHexSequence(rest); valid {
				result = append(result, Sequence{Code: code, Color: FromRGB(rgb), IsColor: true})
				return 12
			}
		case IsColorCode(code):
			result = append(result, Sequence{Code: code, Color: Legacy(code), IsColor: true})
		default:
			result = append(result, Sequence{Code: code})
		}
		return 0
	})
	return
}

// LastColor returns the last colour token set in str. A reset code clears it.
func LastColor(str string) (token ColorToken, ok bool) {
	for _, seq := range Sequences(str) {
		if seq.IsColor {
			token, ok = seq.Color, true
		} else if seq.Code == ResetCode {
			ok = false
		}
	}
	return
}

// HasLeadingColor reports whether a colour token appears among the control
// sequences before the first visible rune of str.
func HasLeadingColor(str string) bool {
	units, tail := Units(str)
	codes := tail
	if len(units) != 0 {
		codes = units[0].Codes
	}
	_, ok := LastColor(codes)
	return ok
}
