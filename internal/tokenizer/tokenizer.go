// Package tokenizer turns raw document text into canonical lowercase word
// tokens.
//
// A token is a maximal run of alphabet runes: ASCII letters plus the extended
// Latin letters used by Old English, Icelandic and Old Norse orthography
// (þ ð æ ǣ ā ē ī ō ū ȳ and their capitals). Every other rune separates
// tokens, so "café" yields "caf" and scripts outside the alphabet yield
// nothing at all. Input is NFC-normalised before scanning so decomposed
// diacritics match their precomposed letters.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var extendedLetters = map[rune]struct{}{
	'þ': {}, 'Þ': {},
	'ð': {}, 'Ð': {},
	'æ': {}, 'Æ': {},
	'ǣ': {}, 'Ǣ': {},
	'ā': {}, 'Ā': {},
	'ē': {}, 'Ē': {},
	'ī': {}, 'Ī': {},
	'ō': {}, 'Ō': {},
	'ū': {}, 'Ū': {},
	'ȳ': {}, 'Ȳ': {},
}

// InAlphabet reports whether r can be part of a token.
func InAlphabet(r rune) bool {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	_, ok := extendedLetters[r]
	return ok
}

// fold returns s as valid, NFC-normalised, lowercase UTF-8.
func fold(s string) string {
	s = strings.ToValidUTF8(s, " ")
	t := transform.Chain(norm.NFC, cases.Lower(language.Und))
	out, _, err := transform.String(t, s)
	if err != nil {
		// Lowercasing valid UTF-8 does not fail; keep the composed input if it ever does.
		return norm.NFC.String(s)
	}
	return out
}

// Tokenize returns every word token of text in order, duplicates included.
// It never fails; text without alphabet runes yields an empty slice.
func Tokenize(text string) []string {
	tokens := []string{}
	folded := fold(text)

	start := -1
	for i, r := range folded {
		if InAlphabet(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, folded[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, folded[start:])
	}

	return tokens
}

// Distinct drops repeated tokens, keeping the first occurrence of each.
func Distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// NormalizeWord is the canonical form of a vocabulary key: trimmed,
// NFC-normalised and lowercased. It does not strip characters outside the
// alphabet, so a user may still gloss "café" explicitly.
func NormalizeWord(word string) string {
	return strings.TrimSpace(fold(word))
}

// NormalizeText trims surrounding whitespace from free text such as a meaning.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// Segment is a slice of the original text. Word holds the token form of a
// word segment and is empty for the separators between words.
type Segment struct {
	Text string
	Word string
}

// Segments splits text into word and separator runs without losing any of
// it, so a renderer can decorate words in place. The Word fields, in order,
// match Tokenize for the same text.
//
// A rune whose lowercase form mixes alphabet and other runes (İ lowers to
// "i" and a combining dot) ends the current word after its alphabet part.
// Its original text stays with the segment it started in, so two word
// segments can follow each other directly.
func Segments(text string) []Segment {
	text = norm.NFC.String(strings.ToValidUTF8(text, " "))

	var (
		segs   []Segment
		orig   strings.Builder
		word   strings.Builder
		inWord bool
	)
	flush := func() {
		if orig.Len() == 0 && word.Len() == 0 {
			return
		}
		seg := Segment{Text: orig.String()}
		if inWord {
			seg.Word = word.String()
		}
		segs = append(segs, seg)
		orig.Reset()
		word.Reset()
	}

	for _, r := range text {
		for i, part := range alphabetRuns(foldRune(r)) {
			if i > 0 || part.alphabet != inWord {
				flush()
				inWord = part.alphabet
			}
			if i == 0 {
				orig.WriteRune(r)
			}
			if part.alphabet {
				word.WriteString(part.text)
			}
		}
	}
	flush()

	return segs
}

// foldRune returns the lowercase form of r as Tokenize sees it.
func foldRune(r rune) string {
	if InAlphabet(r) {
		return string(unicode.ToLower(r))
	}
	if r < utf8.RuneSelf {
		return string(r)
	}
	return fold(string(r))
}

type run struct {
	text     string
	alphabet bool
}

// alphabetRuns splits s into maximal runs of alphabet and non-alphabet
// runes. An empty s is a single separator run.
func alphabetRuns(s string) []run {
	if s == "" {
		return []run{{}}
	}
	var runs []run
	start := 0
	prev := false
	for i, r := range s {
		in := InAlphabet(r)
		if i > 0 && in != prev {
			runs = append(runs, run{text: s[start:i], alphabet: prev})
			start = i
		}
		prev = in
	}
	return append(runs, run{text: s[start:], alphabet: prev})
}
