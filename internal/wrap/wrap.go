// Package wrap fits UTF-8 strings into a fixed pixel budget for a small
// monochrome display. Breaks happen at spaces where possible, otherwise
// after the nearest vowel with an inserted hyphen, otherwise hard at the
// overflow point. All indexing is rune-based; byte length never stands in
// for visual width.
package wrap

// TextMetrics reports the rendered pixel width of a string in one font.
type TextMetrics interface {
	TextWidth(text string) int
}

// WidthFunc adapts a plain measuring function to TextMetrics.
type WidthFunc func(text string) int

func (f WidthFunc) TextWidth(text string) int { return f(text) }

// MaxLines is the number of display lines a title may occupy. Text beyond
// that is dropped; see Lines.
const MaxLines = 3

// Wrap splits text into a first line that fits maxWidthPx and a remainder.
// If the whole text fits, the remainder is empty. The first line is clamped
// to the budget (the inserted hyphen may otherwise overflow by a pixel or
// two); the remainder is returned untouched so it can be wrapped again.
func Wrap(text string, maxWidthPx int, m TextMetrics) (string, string) {
	if m.TextWidth(text) <= maxWidthPx {
		return text, ""
	}

	runes := []rune(text)
	lastSpace := 0
	for i := range runes {
		if m.TextWidth(string(runes[:i+1])) > maxWidthPx {
			return breakAt(runes, i, lastSpace, maxWidthPx, m)
		}
		if runes[i] == ' ' {
			lastSpace = i
		}
	}
	// Unreachable given the guard above, but a width model that measures
	// prefixes narrower than the full string must not derail us.
	return text, ""
}

// breakAt decides the break point once the candidate through rune overflow
// has exceeded the budget.
func breakAt(runes []rune, overflow, lastSpace, maxWidthPx int, m TextMetrics) (string, string) {
	// A space earlier in the candidate wins; the space itself is consumed.
	if lastSpace > 0 {
		return Truncate(string(runes[:lastSpace]), maxWidthPx, m), string(runes[lastSpace+1:])
	}

	// One long token: hyphenate after the nearest vowel before the
	// overflowing rune.
	for j := overflow - 1; j >= 0; j-- {
		if isVowel(runes[j]) {
			return Truncate(string(runes[:j+1])+"-", maxWidthPx, m), string(runes[j+1:])
		}
	}

	// No vowel at all: hard break, no hyphen.
	return Truncate(string(runes[:overflow]), maxWidthPx, m), string(runes[overflow:])
}

// Truncate returns the longest prefix of text whose rendered width fits
// maxWidthPx. Quadratic in width queries, which is fine at display-line
// lengths.
func Truncate(text string, maxWidthPx int, m TextMetrics) string {
	if text == "" || maxWidthPx <= 0 {
		return ""
	}
	if m.TextWidth(text) <= maxWidthPx {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n >= 1; n-- {
		if m.TextWidth(string(runes[:n])) <= maxWidthPx {
			return string(runes[:n])
		}
	}
	return ""
}

// Lines lays text out over at most MaxLines display lines. The final line
// is truncated to the budget; whatever would need a fourth line is dropped.
func Lines(text string, maxWidthPx int, m TextMetrics) []string {
	if m.TextWidth(text) <= maxWidthPx {
		return []string{text}
	}
	line1, rest := Wrap(text, maxWidthPx, m)
	if rest == "" {
		return []string{line1}
	}
	if m.TextWidth(rest) <= maxWidthPx {
		return []string{line1, rest}
	}
	line2, line3 := Wrap(rest, maxWidthPx, m)
	return []string{line1, line2, Truncate(line3, maxWidthPx, m)}
}

// Vowels cover ASCII plus the German umlauts the source material uses.
func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u',
		'A', 'E', 'I', 'O', 'U',
		'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü':
		return true
	}
	return false
}
