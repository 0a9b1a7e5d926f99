package caser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.'
}

// Words splits a binding name at separators and at lower-to-upper case
// boundaries. Words are lower-cased.
func Words(s string) []string {
	var words []string
	for _, field := range strings.FieldsFunc(s, isSeparator) {
		start := 0
		prev := rune(0)
		for i, r := range field {
			if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
				words = append(words, strings.ToLower(field[start:i]))
				start = i
			}
			prev = r
		}
		words = append(words, strings.ToLower(field[start:]))
	}
	return words
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Sentence turns a binding name such as "coin_slot" or "coinSlot" into a
// display name such as "Coin slot".
func Sentence(s string) string {
	return capitalize(strings.Join(Words(s), " "))
}

// Snake joins the words of s with underscores, the form petrifile keys use.
func Snake(s string) string {
	return strings.Join(Words(s), "_")
}
