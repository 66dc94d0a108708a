// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

// Package widths holds the per-character pixel widths of the chat font.
package widths

import (
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/ergochat/chatfmt/chat/smallcaps"
)

const (
	// DefaultWidth is used for characters missing from the table.
	DefaultWidth = 4
	// SpaceWidth is the width of ' '; bold adds nothing to it.
	SpaceWidth = 3
)

// Entry is the display width of one character, in normal and bold weight.
type Entry struct {
	Char      rune
	Width     int
	BoldWidth int
}

// NewEntry returns an entry whose bold width is one more than its normal width,
// except for the space character.
func NewEntry(char rune, width int) Entry {
	bold := width + 1
	if char == ' ' {
		bold = width
	}
	return Entry{Char: char, Width: width, BoldWidth: bold}
}

// DefaultEntry is the fallback for characters missing from the table.
// Runes occupying two terminal cells count double.
func DefaultEntry(char rune) Entry {
	width := DefaultWidth
	if runewidth.RuneWidth(char) == 2 {
		width *= 2
	}
	return NewEntry(char, width)
}

// defaultFont lists the widths of the standard chat font, grouped by width.
var defaultFont = map[int]string{
	1: "!',.:;il|",
	2: "`",
	3: "\"I[]" + " ",
	4: "(){}<>fkt",
	5: "ABCDEFGHJKLMNOPQRSTUVWXYZabcdeghjmnopqrsuvwxyz0123456789#$%^&*-_+=?/\\~",
	6: "@",
}

// Table maps characters to widths. It is safe for concurrent use; Add and
// Remove may run while other goroutines are measuring text.
type Table struct {
	sync.RWMutex // tier 1
	entries      map[rune]Entry
}

// seeded entries of a new table
var defaultEntries = func() map[rune]Entry {
	entries := make(map[rune]Entry)
	for width, chars := range defaultFont {
		for _, char := range chars {
			entries[char] = NewEntry(char, width)
		}
	}
	for _, entry := range smallcaps.Entries() {
		if _, exists := entries[entry.Glyph]; !exists {
			entries[entry.Glyph] = NewEntry(entry.Glyph, entry.Length)
		}
	}
	return entries
}()

// NewTable returns a table seeded with the default font and the small
// capital glyphs.
func NewTable() *Table {
	t := &Table{entries: make(map[rune]Entry, len(defaultEntries))}
	for char, entry := range defaultEntries {
		t.entries[char] = entry
	}
	return t
}

// Add registers or replaces entries.
func (t *Table) Add(entries ...Entry) {
	t.Lock()
	defer t.Unlock()
	for _, entry := range entries {
		t.entries[entry.Char] = entry
	}
}

// Remove deletes the entry for char, returning whether it was present.
// Afterwards the character measures as DefaultEntry.
func (t *Table) Remove(char rune) (present bool) {
	t.Lock()
	defer t.Unlock()
	_, present = t.entries[char]
	delete(t.entries, char)
	return
}

// Restore puts back the seeded entries of chars, removing the entries of
// chars that are not part of the default font.
func (t *Table) Restore(chars ...rune) {
	t.Lock()
	defer t.Unlock()
	for _, char := range chars {
		if entry, ok := defaultEntries[char]; ok {
			t.entries[char] = entry
		} else {
			delete(t.entries, char)
		}
	}
}

// Lookup returns the entry for char, or DefaultEntry if there is none.
func (t *Table) Lookup(char rune) (entry Entry, found bool) {
	t.RLock()
	entry, found = t.entries[char]
	t.RUnlock()
	if !found {
		entry = DefaultEntry(char)
	}
	return
}

// Width returns the width of char in the requested weight.
func (t *Table) Width(char rune, bold bool) int {
	entry, _ := t.Lookup(char)
	if bold {
		return entry.BoldWidth
	}
	return entry.Width
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.RLock()
	defer t.RUnlock()
	return len(t.entries)
}
