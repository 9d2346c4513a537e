package nlp

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
)

// KeyphraseExtractor scores candidate phrases with RAKE and repeats each
// kept phrase once per occurrence so that counting still reflects usage.
//
// Candidates are the runs of words between stopwords and punctuation. A
// word scores degree/frequency, where degree adds up the lengths of the
// candidates it occurs in, and a phrase scores the sum of its words.
type KeyphraseExtractor struct {
	name      string
	minScore  float64
	maxWords  int
	stopwords Stopwords
}

// NewKeyphraseExtractor creates the "keyphrases" extractor. Optional params:
// minScore (float, default 1.0), maxWords (int, default 3),
// extraStopwords ([]string).
func NewKeyphraseExtractor(params map[string]any) (Extractor, error) {
	maxWords := getIntParam(params, "maxWords", 3)
	if maxWords < 1 {
		return nil, fmt.Errorf("maxWords must be at least 1, got %d", maxWords)
	}
	return &KeyphraseExtractor{
		name:      MethodKeyphrases,
		minScore:  getFloatParam(params, "minScore", 1.0),
		maxWords:  maxWords,
		stopwords: NewStopwords(wordCloudStopwords, courseStopwords, getStringSliceParam(params, "extraStopwords")),
	}, nil
}

// Name returns the method name
func (e *KeyphraseExtractor) Name() string {
	return e.name
}

type keyphrase struct {
	text        string
	score       float64
	occurrences int
}

// Extract returns the kept phrases, highest score first.
func (e *KeyphraseExtractor) Extract(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	candidates := e.candidates(text)
	frequency := make(map[string]int)
	degree := make(map[string]int)
	for _, c := range candidates {
		for _, w := range c {
			frequency[w]++
			degree[w] += len(c)
		}
	}

	byText := make(map[string]*keyphrase)
	var ordered []*keyphrase
	for _, c := range candidates {
		phrase := strings.Join(c, " ")
		if kp, ok := byText[phrase]; ok {
			kp.occurrences++
			continue
		}
		score := 0.0
		for _, w := range c {
			score += float64(degree[w]) / float64(frequency[w])
		}
		kp := &keyphrase{text: phrase, score: score, occurrences: 1}
		byText[phrase] = kp
		ordered = append(ordered, kp)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].score > ordered[j].score
	})

	var phrases []string
	for _, kp := range ordered {
		if kp.score < e.minScore || e.skip(kp.text) {
			continue
		}
		for i := 0; i < kp.occurrences; i++ {
			phrases = append(phrases, kp.text)
		}
	}

	slog.Debug("KeyphraseExtractor: extracted phrases", "candidates", len(ordered), "phrases", len(phrases))
	return phrases
}

// candidates splits text at punctuation and stopwords into lower-cased
// word runs.
func (e *KeyphraseExtractor) candidates(text string) [][]string {
	var out [][]string
	var run []string
	flush := func() {
		if len(run) > 0 {
			out = append(out, run)
			run = nil
		}
	}
	for _, tok := range Tokenize(text) {
		word := strings.ToLower(tok.Text)
		if tok.Punct || e.isStopword(word) {
			flush()
			continue
		}
		run = append(run, word)
	}
	flush()
	return out
}

func (e *KeyphraseExtractor) isStopword(word string) bool {
	return e.stopwords.Contains(word) || english.IsStopWord(word)
}

func (e *KeyphraseExtractor) skip(phrase string) bool {
	if len(strings.Fields(phrase)) > e.maxWords {
		return true
	}
	return !hasLetter(phrase)
}

func init() {
	if err := DefaultRegistry.Register(MethodKeyphrases, NewKeyphraseExtractor); err != nil {
		panic(fmt.Sprintf("failed to register %s extractor: %v", MethodKeyphrases, err))
	}
}
