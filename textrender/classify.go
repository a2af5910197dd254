package textrender

import "unicode"

// UppercaseWords returns a classifier that lights words written entirely in
// capitals at bright and everything else at normal. A word must hold at
// least one letter.
func UppercaseWords(bright, normal uint8) Classifier {
	return func(text []rune, i int) (uint8, bool) {
		if i < 0 || i >= len(text) {
			return 0, false
		}
		if unicode.IsSpace(text[i]) {
			return normal, true
		}
		start, end := i, i
		for start > 0 && !unicode.IsSpace(text[start-1]) {
			start--
		}
		for end < len(text)-1 && !unicode.IsSpace(text[end+1]) {
			end++
		}
		letters := false
		for _, r := range text[start : end+1] {
			if unicode.IsLower(r) {
				return normal, true
			}
			if unicode.IsUpper(r) {
				letters = true
			}
		}
		if letters {
			return bright, true
		}
		return normal, true
	}
}

// ClockFormat returns a classifier for "15:04:05 Mon 02 Jan" style text.
// The time before the first space is bright, the date after it dim.
func ClockFormat(bright, dim uint8) Classifier {
	return func(text []rune, i int) (uint8, bool) {
		if i < 0 || i >= len(text) {
			return 0, false
		}
		for j := 0; j < i; j++ {
			if text[j] == ' ' {
				return dim, true
			}
		}
		if text[i] == ' ' {
			return dim, true
		}
		return bright, true
	}
}
