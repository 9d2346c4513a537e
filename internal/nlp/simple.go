package nlp

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// SimpleExtractor keeps every non-punctuation, non-stopword token and
// reduces it to a base form. Tokens sharing a snowball stem collapse onto
// their most frequent spelling, so "models" and "model" count together
// while the cloud still shows a real word.
type SimpleExtractor struct {
	name      string
	stopwords Stopwords
}

// NewSimpleExtractor creates the "simple" extractor. Optional params:
// extraStopwords ([]string).
func NewSimpleExtractor(params map[string]any) (Extractor, error) {
	return &SimpleExtractor{
		name:      MethodSimple,
		stopwords: NewStopwords(wordCloudStopwords, courseStopwords, getStringSliceParam(params, "extraStopwords")),
	}, nil
}

// Name returns the method name
func (e *SimpleExtractor) Name() string {
	return e.name
}

// Extract returns the base form of each kept token, in text order.
func (e *SimpleExtractor) Extract(text string) []string {
	tokens := Tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Punct || e.stopwords.Contains(tok.Text) {
			continue
		}
		if !hasLetter(tok.Text) || utf8.RuneCountInString(tok.Text) < 2 {
			continue
		}
		kept = append(kept, tok.Text)
	}

	words := baseForms(kept)
	slog.Debug("SimpleExtractor: extracted words", "tokens", len(tokens), "words", len(words))
	return words
}

// baseForms maps each word onto the preferred spelling of its stem group.
func baseForms(words []string) []string {
	spellings := make(map[string]map[string]int)
	keys := make([]string, len(words))
	for i, w := range words {
		key, spelling := stemKey(w)
		keys[i] = key
		if spellings[key] == nil {
			spellings[key] = make(map[string]int)
		}
		spellings[key][spelling]++
	}

	preferred := make(map[string]string, len(spellings))
	for key, counts := range spellings {
		preferred[key] = pickSpelling(counts)
	}

	out := make([]string, len(words))
	for i, key := range keys {
		out[i] = preferred[key]
	}
	return out
}

// stemKey returns the grouping key and the spelling to record for w.
// Acronyms are kept verbatim and never stemmed.
func stemKey(w string) (string, string) {
	if isAcronym(w) {
		return "acronym:" + w, w
	}
	lower := strings.ToLower(w)
	return "stem:" + english.Stem(lower, true), lower
}

func pickSpelling(counts map[string]int) string {
	best := ""
	bestCount := -1
	for spelling, n := range counts {
		switch {
		case n > bestCount:
		case n == bestCount && len(spelling) < len(best):
		case n == bestCount && len(spelling) == len(best) && spelling < best:
		default:
			continue
		}
		best, bestCount = spelling, n
	}
	return best
}

func init() {
	if err := DefaultRegistry.Register(MethodSimple, NewSimpleExtractor); err != nil {
		panic(fmt.Sprintf("failed to register %s extractor: %v", MethodSimple, err))
	}
}
