package keyword

import (
	"regexp"
	"strings"
)

// nonWord matches anything that is neither a word character nor whitespace.
var nonWord = regexp.MustCompile(`[^\w\s]`)

// MinTokenLength is the shortest token Tokenize keeps.
const MinTokenLength = 3

// StopWords are dropped by ExtractKeywords. Matching is on exact surface form; there is no stemming.
var StopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// Tokenize lower-cases text, replaces punctuation with spaces, splits on
// whitespace runs and drops tokens shorter than MinTokenLength.
func Tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= MinTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ExtractKeywords tokenizes text and removes StopWords.
func ExtractKeywords(text string) []string {
	tokens := Tokenize(text)
	keywords := tokens[:0]
	for _, tok := range tokens {
		if _, stop := StopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}
