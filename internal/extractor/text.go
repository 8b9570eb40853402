package extractor

import (
	"strings"
	"unicode"
)

// isBoundaryRune reports whether r separates words. '#', '+', '.', '/'
// and '-' are kept inside tokens so "c#", "next.js" and "ci/cd" match
// as written.
func isBoundaryRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return false
	}
	switch r {
	case '#', '+', '.', '/', '-':
		return false
	}
	return true
}

// phraseIndex returns the byte offset of phrase in text respecting word
// boundaries, or -1. Both arguments must already be lower-cased.
func phraseIndex(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	start := 0
	for {
		idx := strings.Index(text[start:], phrase)
		if idx == -1 {
			return -1
		}
		idx += start
		beforeOK := idx == 0
		if !beforeOK {
			r := rune(text[idx-1])
			beforeOK = isBoundaryRune(r)
		}
		end := idx + len(phrase)
		afterOK := end >= len(text)
		if !afterOK {
			r := rune(text[end])
			afterOK = isBoundaryRune(r)
		}
		if beforeOK && afterOK {
			return idx
		}
		start = idx + 1
		if start >= len(text) {
			return -1
		}
	}
}

// containsPhrase reports a word-boundary match of phrase in text.
func containsPhrase(text, phrase string) bool {
	return phraseIndex(text, phrase) != -1
}

// countPhraseHits returns how many distinct phrases occur in text.
func countPhraseHits(text string, phrases []string) int {
	hits := 0
	for _, p := range phrases {
		if containsPhrase(text, p) {
			hits++
		}
	}
	return hits
}

// maskPhrase blanks every boundary match of phrase in text so longer
// phrases consume their constituent words before shorter keywords run.
func maskPhrase(text, phrase string) string {
	for {
		idx := phraseIndex(text, phrase)
		if idx == -1 {
			return text
		}
		text = text[:idx] + strings.Repeat(" ", len(phrase)) + text[idx+len(phrase):]
	}
}

// normalizeText lower-cases text and collapses whitespace.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// tokenize splits normalized text into tokens, trimming edge punctuation
// but keeping internal '#', '+', '.', '/', '-'.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) && r != '#' && r != '+' && r != '.' && r != '/' && r != '-'
		})
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// stopwords excluded from key-concept extraction.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"for": true, "with": true, "to": true, "of": true, "in": true,
	"on": true, "at": true, "is": true, "are": true, "was": true,
	"be": true, "this": true, "that": true, "it": true, "as": true,
	"my": true, "i": true, "we": true, "our": true, "your": true,
	"from": true, "by": true, "using": true, "use": true, "want": true,
	"need": true, "like": true, "some": true, "will": true, "can": true,
	"about": true, "how": true, "what": true, "into": true, "have": true,
}
