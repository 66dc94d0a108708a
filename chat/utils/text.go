// Copyright (c) 2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package utils

import (
	"strings"
)

const controlChar = '§'

// VisibleLen counts the runes of str, not counting "§X" control sequences.
func VisibleLen(str string) (length int) {
	previousCode := false
	for _, char := range str {
		if previousCode {
			previousCode = false
		} else if char == controlChar {
			previousCode = true
		} else {
			length++
		}
	}
	return
}

// WordWrap wraps text into lines of at most lineWidth visible characters,
// breaking at spaces and at explicit newlines. Words longer than a line are
// split, but never inside a control sequence.
func WordWrap(text string, lineWidth int) []string {
	if lineWidth <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		var line strings.Builder
		lineLen := 0
		for _, word := range strings.Split(paragraph, " ") {
			wordLen := VisibleLen(word)
			if lineLen != 0 && lineLen+1+wordLen <= lineWidth {
				line.WriteByte(' ')
				line.WriteString(word)
				lineLen += 1 + wordLen
				continue
			}
			if lineLen != 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineLen = 0
			}
			for _, chunk := range splitWord(word, lineWidth) {
				if lineLen != 0 {
					lines = append(lines, line.String())
					line.Reset()
				}
				line.WriteString(chunk)
				lineLen = VisibleLen(chunk)
			}
		}
		lines = append(lines, line.String())
	}
	return lines
}

// splitWord cuts word into pieces of at most width visible characters.
func splitWord(word string, width int) (chunks []string) {
	if VisibleLen(word) <= width {
		return []string{word}
	}
	var chunk strings.Builder
	chunkLen := 0
	runes := []rune(word)
	for i := 0; i < len(runes); i++ {
		if runes[i] == controlChar && i+1 < len(runes) {
			chunk.WriteRune(runes[i])
			chunk.WriteRune(runes[i+1])
			i++
			continue
		}
		if chunkLen == width {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			chunkLen = 0
		}
		chunk.WriteRune(runes[i])
		chunkLen++
	}
	return append(chunks, chunk.String())
}
