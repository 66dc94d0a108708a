// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package colors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidHex   = errors.New("Invalid hex colour")
	ErrInvalidToken = errors.New("Invalid colour token")
)

// RGB is a 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// ParseHex parses a 6-digit hex colour, with or without a leading '#'.
func ParseHex(str string) (color RGB, err error) {
	str = strings.TrimPrefix(str, "#")
	if len(str) != 6 {
		return color, ErrInvalidHex
	}
	value, err := strconv.ParseUint(str, 16, 32)
	if err != nil {
		return color, ErrInvalidHex
	}
	color.R = uint8(value >> 16)
	color.G = uint8(value >> 8)
	color.B = uint8(value)
	return color, nil
}

// Hex returns the colour as 6 lowercase hex digits, without '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) distance(other RGB) int {
	dr := int(c.R) - int(other.R)
	dg := int(c.G) - int(other.G)
	db := int(c.B) - int(other.B)
	return dr*dr + dg*dg + db*db
}

// ColorToken is either a legacy single-character colour code or an RGB colour.
// The zero value is not a valid token; use Legacy or FromRGB.
type ColorToken struct {
	code rune
	rgb  RGB
}

// Legacy returns the token for a legacy colour code such as 'c'.
func Legacy(code rune) ColorToken {
	code = toLower(code)
	rgb, _ := PaletteColor(code)
	return ColorToken{code: code, rgb: rgb}
}

// FromRGB returns an exact RGB token.
func FromRGB(rgb RGB) ColorToken {
	return ColorToken{code: HexCode, rgb: rgb}
}

// IsLegacy reports whether the token is one of the 16 palette codes.
func (t ColorToken) IsLegacy() bool {
	return t.code != HexCode
}

// Code returns the legacy code, or 'x' for RGB tokens.
func (t ColorToken) Code() rune {
	return t.code
}

// RGB returns the colour value; for legacy tokens this is the palette colour.
func (t ColorToken) RGB() RGB {
	return t.rgb
}

// String renders the token as control sequences: "§c" for legacy codes,
// "§x§r§r§g§g§b§b" for RGB.
func (t ColorToken) String() string {
	var buf strings.Builder
	buf.WriteRune(ControlChar)
	buf.WriteRune(t.code)
	if t.code == HexCode {
		for _, digit := range t.rgb.Hex() {
			buf.WriteRune(ControlChar)
			buf.WriteRune(digit)
		}
	}
	return buf.String()
}

// ParseToken parses the text form of a token: a legacy code such as "c",
// or "#rrggbb".
func ParseToken(str string) (ColorToken, error) {
	if strings.HasPrefix(str, "#") {
		rgb, err := ParseHex(str)
		if err != nil {
			return ColorToken{}, err
		}
		return FromRGB(rgb), nil
	}
	if runes := []rune(str); len(runes) == 1 && IsColorCode(runes[0]) {
		return Legacy(runes[0]), nil
	}
	return ColorToken{}, ErrInvalidToken
}

// MarshalText implements encoding.TextMarshaler, using the ParseToken format.
func (t ColorToken) MarshalText() ([]byte, error) {
	if t.code == HexCode {
		return []byte("#" + t.rgb.Hex()), nil
	}
	return []byte(string(t.code)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColorToken) UnmarshalText(text []byte) (err error) {
	*t, err = ParseToken(string(text))
	return
}

// PaletteEntry is one of the 16 legacy colours.
type PaletteEntry struct {
	Code  rune
	Name  string
	Color RGB
}

// Palette is the legacy palette. Nearest-colour ties resolve to the
// earlier entry, so this order must stay stable.
var Palette = [16]PaletteEntry{
	{'0', "black", RGB{0x00, 0x00, 0x00}},
	{'1', "dark_blue", RGB{0x00, 0x00, 0xaa}},
	{'2', "dark_green", RGB{0x00, 0xaa, 0x00}},
	{'3', "dark_aqua", RGB{0x00, 0xaa, 0xaa}},
	{'4', "dark_red", RGB{0xaa, 0x00, 0x00}},
	{'5', "dark_purple", RGB{0xaa, 0x00, 0xaa}},
	{'6', "gold", RGB{0xff, 0xaa, 0x00}},
	{'7', "gray", RGB{0xaa, 0xaa, 0xaa}},
	{'8', "dark_gray", RGB{0x55, 0x55, 0x55}},
	{'9', "blue", RGB{0x55, 0x55, 0xff}},
	{'a', "green", RGB{0x55, 0xff, 0x55}},
	{'b', "aqua", RGB{0x55, 0xff, 0xff}},
	{'c', "red", RGB{0xff, 0x55, 0x55}},
	{'d', "light_purple", RGB{0xff, 0x55, 0xff}},
	{'e', "yellow", RGB{0xff, 0xff, 0x55}},
	{'f', "white", RGB{0xff, 0xff, 0xff}},
}

// PaletteColor returns the palette colour for a legacy code.
func PaletteColor(code rune) (RGB, bool) {
	code = toLower(code)
	for _, entry := range Palette {
		if entry.Code == code {
			return entry.Color, true
		}
	}
	return RGB{}, false
}

// Nearest returns the palette entry closest to rgb by squared euclidean distance.
func Nearest(rgb RGB) PaletteEntry {
	best := Palette[0]
	bestDistance := rgb.distance(best.Color)
	for _, entry := range Palette[1:] {
		// strict comparison: the first entry wins ties
		if d := rgb.distance(entry.Color); d < bestDistance {
			best, bestDistance = entry, d
		}
	}
	return best
}

// Resolve returns the best token for rgb: the exact colour in modern mode,
// the nearest palette entry in legacy mode.
func Resolve(rgb RGB, legacy bool) ColorToken {
	if !legacy {
		return FromRGB(rgb)
	}
	return Legacy(Nearest(rgb).Code)
}

func toLower(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
