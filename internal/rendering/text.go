package rendering

import (
	"strings"
	"unicode"
)

// pictographic drops emoji and the joiners and selectors that travel with them.
// Core PDF fonts have no glyphs for these and the translator would print dots.
func pictographic(r rune) bool {
	switch {
	case r > 0xFFFF:
		return true
	case r == 0x200D, r == 0xFE0E, r == 0xFE0F, r == 0x20E3:
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return false
}

// cleanText strips pictographs and stray control characters and collapses the
// gap an emoji leaves behind at the start of a line.
func cleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if pictographic(r) {
			return -1
		}
		if r == '\t' {
			return ' '
		}
		if r != '\n' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " ")
	}
	return strings.Join(lines, "\n")
}

// cleanCode is cleanText for preformatted blocks, leading spaces are kept.
func cleanCode(s string) string {
	return strings.Map(func(r rune) rune {
		if pictographic(r) {
			return -1
		}
		if r == '\t' {
			return ' '
		}
		if r != '\n' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
