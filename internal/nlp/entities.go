package nlp

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

var dateWords = map[string]bool{
	"january": true, "february": true, "march": true, "april": true, "may": true,
	"june": true, "july": true, "august": true, "september": true, "october": true,
	"november": true, "december": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true, "jul": true,
	"aug": true, "sep": true, "sept": true, "oct": true, "nov": true, "dec": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"today": true, "yesterday": true, "tomorrow": true,
	"day": true, "days": true, "week": true, "weeks": true, "month": true,
	"months": true, "year": true, "years": true, "quarter": true, "decade": true,
}

var cardinalWords = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"eleven": true, "twelve": true, "thirteen": true, "fourteen": true,
	"fifteen": true, "sixteen": true, "seventeen": true, "eighteen": true,
	"nineteen": true, "twenty": true, "thirty": true, "forty": true, "fifty": true,
	"sixty": true, "seventy": true, "eighty": true, "ninety": true,
	"hundred": true, "thousand": true, "million": true, "billion": true,
	"dozen": true,
}

// isDateOrCardinal reports tokens an entity tagger would label DATE or CARDINAL.
func isDateOrCardinal(word string) bool {
	lower := strings.ToLower(word)
	if dateWords[lower] || cardinalWords[lower] {
		return true
	}
	digits := 0
	for _, r := range lower {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.' || r == ',' || r == '%' || r == '-' || r == '/':
		default:
			// ordinals like 1st, 22nd
			return digits > 0 && (strings.HasSuffix(lower, "st") || strings.HasSuffix(lower, "nd") ||
				strings.HasSuffix(lower, "rd") || strings.HasSuffix(lower, "th")) && len(lower)-digits == 2
		}
	}
	return digits > 0
}

// EntityExtractor picks named-entity-like spans: runs of capitalized words
// and acronyms, plus known technical terms, which never join a run. Dates
// and cardinal numbers are not entities, and a capitalized word that only
// ever starts a sentence is treated as an ordinary word.
type EntityExtractor struct {
	name      string
	stopwords Stopwords
	terms     map[string]bool
}

// NewEntityExtractor creates the "use_entities" extractor. Optional params:
// terms ([]string) are always entities, extraStopwords ([]string).
func NewEntityExtractor(params map[string]any) (Extractor, error) {
	terms := make(map[string]bool)
	for _, t := range getStringSliceParam(params, "terms") {
		terms[strings.ToLower(t)] = true
	}
	return &EntityExtractor{
		name:      MethodEntities,
		stopwords: NewStopwords(wordCloudStopwords, courseStopwords, getStringSliceParam(params, "extraStopwords")),
		terms:     terms,
	}, nil
}

// Name returns the method name
func (e *EntityExtractor) Name() string {
	return e.name
}

// Extract returns one entry per entity mention, in text order.
func (e *EntityExtractor) Extract(text string) []string {
	tokens := Tokenize(text)

	// Words seen capitalized away from a sentence start are proper nouns.
	properNouns := make(map[string]bool)
	for _, tok := range tokens {
		if !tok.Punct && !tok.SentenceStart && isCapitalized(tok.Text) {
			properNouns[strings.ToLower(tok.Text)] = true
		}
	}

	var entities []string
	var run []Token
	flush := func() {
		if span := e.trimRun(run, properNouns); len(span) > 0 {
			entities = append(entities, span)
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		if tok.Punct || tok.SentenceStart {
			flush()
		}
		if tok.Punct {
			continue
		}
		if e.isTerm(tok.Text) {
			// known terms are entities of their own
			flush()
			run = append(run, tok)
			flush()
			continue
		}
		if e.isEntityWord(tok.Text) {
			run = append(run, tok)
			continue
		}
		flush()
	}
	flush()

	slog.Debug("EntityExtractor: extracted entities", "tokens", len(tokens), "entities", len(entities))
	return entities
}

func (e *EntityExtractor) isTerm(word string) bool {
	return e.terms[strings.ToLower(word)] && !e.stopwords.Contains(word)
}

func (e *EntityExtractor) isEntityWord(word string) bool {
	if e.stopwords.Contains(word) {
		return false
	}
	return isCapitalized(word) || isAcronym(word)
}

// trimRun drops a sentence-initial common word and any date or cardinal
// words at either end, and joins what is left.
func (e *EntityExtractor) trimRun(run []Token, properNouns map[string]bool) string {
	if len(run) == 0 {
		return ""
	}
	words := make([]string, 0, len(run))
	for i, tok := range run {
		if i == 0 && tok.SentenceStart && !e.keepSentenceStart(tok.Text, properNouns) {
			continue
		}
		words = append(words, tok.Text)
	}
	for len(words) > 0 && isDateOrCardinal(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isDateOrCardinal(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func (e *EntityExtractor) keepSentenceStart(word string, properNouns map[string]bool) bool {
	lower := strings.ToLower(word)
	return isAcronym(word) || e.terms[lower] || properNouns[lower]
}

func init() {
	if err := DefaultRegistry.Register(MethodEntities, NewEntityExtractor); err != nil {
		panic(fmt.Sprintf("failed to register %s extractor: %v", MethodEntities, err))
	}
}
