// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package smallcaps substitutes latin letters with their small capital
// lookalikes, and back.
package smallcaps

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLength is the display width of most small capital glyphs.
const DefaultLength = 5

// Entry maps a lowercase letter to its small capital glyph.
type Entry struct {
	Letter rune
	Glyph  rune
	Length int
}

var entries = [26]Entry{
	{'a', 'ᴀ', DefaultLength},
	{'b', 'ʙ', DefaultLength},
	{'c', 'ᴄ', DefaultLength},
	{'d', 'ᴅ', DefaultLength},
	{'e', 'ᴇ', DefaultLength},
	{'f', 'ғ', 4},
	{'g', 'ɢ', DefaultLength},
	{'h', 'ʜ', DefaultLength},
	{'i', 'ɪ', 3},
	{'j', 'ᴊ', DefaultLength},
	{'k', 'ᴋ', DefaultLength},
	{'l', 'ʟ', 4},
	{'m', 'ᴍ', DefaultLength},
	{'n', 'ɴ', DefaultLength},
	{'o', 'ᴏ', DefaultLength},
	{'p', 'ᴘ', DefaultLength},
	{'q', 'ǫ', DefaultLength},
	{'r', 'ʀ', DefaultLength},
	{'s', 'ꜱ', DefaultLength},
	{'t', 'ᴛ', 4},
	{'u', 'ᴜ', DefaultLength},
	{'v', 'ᴠ', DefaultLength},
	{'w', 'ᴡ', DefaultLength},
	// there is no small capital x in common fonts
	{'x', 'x', DefaultLength},
	{'y', 'ʏ', DefaultLength},
	{'z', 'ᴢ', DefaultLength},
}

var (
	toGlyph  map[rune]rune
	toLetter map[rune]rune
)

func init() {
	toGlyph = make(map[rune]rune, len(entries))
	toLetter = make(map[rune]rune, len(entries))
	for _, entry := range entries {
		toGlyph[entry.Letter] = entry.Glyph
		if entry.Glyph != entry.Letter {
			toLetter[entry.Glyph] = entry.Letter
		}
	}
}

// Entries returns a copy of the substitution table.
func Entries() []Entry {
	result := make([]Entry, len(entries))
	copy(result, entries[:])
	return result
}

// StripDiacritics decomposes str and drops the combining marks, e.g. "Café" -> "Cafe".
func StripDiacritics(str string) string {
	// transform.Chain is stateful, so build a fresh one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		return str
	}
	return result
}

// ToSmallCaps strips diacritics from str, then replaces every latin letter
// with its small capital glyph. Other characters are untouched.
func ToSmallCaps(str string) string {
	return strings.Map(func(r rune) rune {
		if glyph, ok := toGlyph[unicode.ToLower(r)]; ok && r < unicode.MaxASCII {
			return glyph
		}
		return r
	}, StripDiacritics(str))
}

// ToNormal replaces small capital glyphs with lowercase letters.
// Stripped diacritics are not restored.
func ToNormal(str string) string {
	return strings.Map(func(r rune) rune {
		if letter, ok := toLetter[r]; ok {
			return letter
		}
		return r
	}, str)
}

// IsSmallCaps reports whether r is a small capital glyph.
func IsSmallCaps(r rune) bool {
	_, ok := toLetter[r]
	return ok
}

// HasSmallCaps reports whether str contains any small capital glyph.
func HasSmallCaps(str string) bool {
	return strings.IndexFunc(str, IsSmallCaps) != -1
}
