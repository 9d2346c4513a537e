// Package wordcloud counts extracted words and renders them as a word cloud
// image.
package wordcloud

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyFrequencies is returned when there is nothing to draw.
var ErrEmptyFrequencies = errors.New("no words to draw")

// Frequencies maps each word or phrase to its number of occurrences.
type Frequencies map[string]int

// WordCount is one row of a frequency table.
type WordCount struct {
	Word  string
	Count int
}

// Count tallies words. Blank entries are skipped.
func Count(words []string) Frequencies {
	freqs := make(Frequencies)
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		freqs[w]++
	}
	return freqs
}

// Top returns the n most frequent entries, highest count first and ties in
// alphabetical order. n <= 0 returns every entry.
func (f Frequencies) Top(n int) []WordCount {
	out := make([]WordCount, 0, len(f))
	for w, c := range f {
		if c > 0 {
			out = append(out, WordCount{Word: w, Count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Total returns the sum of all counts.
func (f Frequencies) Total() int {
	total := 0
	for _, c := range f {
		total += c
	}
	return total
}
