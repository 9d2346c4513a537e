package nlp

import (
	"reflect"
	"testing"
)

func TestSimpleExtractor_Extract(t *testing.T) {
	e, err := NewSimpleExtractor(nil)
	if err != nil {
		t.Fatalf("NewSimpleExtractor() error = %v", err)
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "drops stopwords and punctuation",
			text: "The art of the data, with Go!",
			want: []string{"art", "data", "go"},
		},
		{
			name: "groups inflections onto the most frequent spelling",
			text: "learning learning learned",
			want: []string{"learning", "learning", "learning"},
		},
		{
			name: "keeps acronyms verbatim",
			text: "SQL and sql",
			want: []string{"SQL", "sql"},
		},
		{
			name: "drops numbers and single letters",
			text: "x 2019 Python 3",
			want: []string{"python"},
		},
		{
			name: "drops course level words",
			text: "Introduction to Advanced Statistics",
			want: []string{"statistics"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestPickSpelling_TieBreak(t *testing.T) {
	got := pickSpelling(map[string]int{"models": 1, "model": 1})
	if got != "model" {
		t.Errorf("pickSpelling() = %q, want shortest spelling", got)
	}
}
