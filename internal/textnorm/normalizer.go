// Package textnorm prepares course text for word extraction: unicode
// normalization, abbreviation substitutions and merging of multi-word
// technical phrases into single tokens.
package textnorm

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type multiwordPattern struct {
	re    *regexp.Regexp
	token string
}

// Normalizer applies the substitution and multi-word tables to text.
type Normalizer struct {
	substitutions []Substitution
	patterns      []multiwordPattern
	// display maps a lower-cased merged token back onto its phrase
	display map[string]string
}

// New creates a Normalizer from explicit tables.
func New(substitutions []Substitution, multiwords []Multiword) *Normalizer {
	n := &Normalizer{
		substitutions: append([]Substitution(nil), substitutions...),
		display:       make(map[string]string, len(multiwords)),
	}

	// Longest phrases first so "natural language processing" wins over any
	// shorter phrase that shares a prefix.
	sorted := append([]Multiword(nil), multiwords...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Phrase) > len(sorted[j].Phrase)
	})

	for _, mw := range sorted {
		words := strings.Fields(mw.Phrase)
		if len(words) == 0 || mw.Token == "" {
			continue
		}
		for i := range words {
			words[i] = regexp.QuoteMeta(words[i])
		}
		re := regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`)
		n.patterns = append(n.patterns, multiwordPattern{re: re, token: strings.ToLower(mw.Token)})
	}

	// The first phrase listed for a token is its display form.
	for _, mw := range multiwords {
		key := strings.ToLower(mw.Token)
		if _, exists := n.display[key]; !exists && key != "" {
			n.display[key] = strings.ToLower(mw.Phrase)
		}
	}

	return n
}

// NewDefault creates a Normalizer using DefaultSubstitutions and DefaultMultiwords.
func NewDefault() *Normalizer {
	return New(DefaultSubstitutions, DefaultMultiwords)
}

// Normalize applies NFKC normalization followed by the substitution table.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFKC.String(text)
	for _, s := range n.substitutions {
		text = strings.ReplaceAll(text, s.From, s.To)
	}
	return text
}

// MergeMultiword replaces each multi-word phrase by its single token. The
// token keeps a leading capital when the matched phrase had one, so that
// capitalization-based extraction still sees it.
func (n *Normalizer) MergeMultiword(text string) string {
	merged := 0
	for _, p := range n.patterns {
		token := p.token
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			merged++
			r, _ := utf8.DecodeRuneInString(match)
			if unicode.IsUpper(r) {
				return capitalize(token)
			}
			return token
		})
	}
	if merged > 0 {
		slog.Debug("textnorm: merged multi-word phrases", "count", merged)
	}
	return text
}

// Prepare runs Normalize and then MergeMultiword.
func (n *Normalizer) Prepare(text string) string {
	return n.MergeMultiword(n.Normalize(text))
}

// IsMerged reports whether word is a merged multi-word token.
func (n *Normalizer) IsMerged(word string) bool {
	_, ok := n.display[strings.ToLower(word)]
	return ok
}

// MergedTokens returns every merged token, sorted.
func (n *Normalizer) MergedTokens() []string {
	tokens := make([]string, 0, len(n.display))
	for token := range n.display {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// Expand maps merged tokens inside word back onto their display phrases.
// Capitalized tokens expand to title case: "Machinelearning" becomes
// "Machine Learning".
func (n *Normalizer) Expand(word string) string {
	fields := strings.Fields(word)
	changed := false
	for i, f := range fields {
		phrase, ok := n.display[strings.ToLower(f)]
		if !ok {
			continue
		}
		r, _ := utf8.DecodeRuneInString(f)
		if unicode.IsUpper(r) {
			// Casers keep state, so one per call.
			phrase = cases.Title(language.English).String(phrase)
		}
		fields[i] = phrase
		changed = true
	}
	if !changed {
		return word
	}
	return strings.Join(fields, " ")
}

// ExpandAll applies Expand to every word.
func (n *Normalizer) ExpandAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = n.Expand(w)
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
