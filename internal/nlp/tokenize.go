package nlp

import (
	"unicode"
	"unicode/utf8"
)

// Token is a word or a single punctuation mark.
type Token struct {
	Text  string
	Punct bool
	// SentenceStart is set on the first word of a sentence.
	SentenceStart bool
}

// Tokenize splits text into words and punctuation. Words may contain inner
// connectors (scikit-learn, node.js, 2.0, don't) and trailing +/# (C++, C#).
func Tokenize(text string) []Token {
	var tokens []Token
	sentenceStart := true

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			end := scanWord(text, i)
			tokens = append(tokens, Token{Text: text[i:end], SentenceStart: sentenceStart})
			sentenceStart = false
			i = end
		default:
			tokens = append(tokens, Token{Text: string(r), Punct: true})
			if isSentenceEnd(r) {
				sentenceStart = true
			}
			i += size
		}
	}
	return tokens
}

func scanWord(text string, start int) int {
	i := start
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			i += size
			continue
		}
		if isConnector(r) {
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if i+size < len(text) && isWordRune(next) {
				i += size
				continue
			}
		}
		if r == '+' || r == '#' {
			// C++ and C#: only directly after the word, never followed by a word rune
			j := i
			for j < len(text) && (text[j] == '+' || text[j] == '#') {
				j++
			}
			if j == len(text) || !isWordRune(firstRune(text[j:])) {
				return j
			}
		}
		break
	}
	return i
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isConnector(r rune) bool {
	switch r {
	case '-', '.', '\'', '’', '_', '/':
		return true
	}
	return false
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':':
		return true
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isAcronym reports words like AWS, SQL or NLP.
func isAcronym(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
