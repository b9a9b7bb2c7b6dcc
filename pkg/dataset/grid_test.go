package dataset

import (
	"testing"
)

func TestGridExpand(t *testing.T) {
	g := Grid{
		BasePath: "/data",
		Entries: []Entry{
			{Name: "europarl", Languages: []string{"es-en", "fr-en"}, Sizes: []Size{{"100k", 100000}, {"original", 0}}},
		},
		Encodings: []Encoding{
			{SubwordModels: []string{"word", "bytes"}, VocabSizes: []int{4000, 8000}},
			{SubwordModels: []string{"bytes", "unigram+bytes"}, VocabSizes: []int{8000}},
		},
	}

	got, err := g.Expand()
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// per (pair, size): word x2, bytes once, unigram+bytes x1
	if want := 2 * 2 * 4; len(got) != want {
		t.Fatalf("datasets: got %d, want %d", len(got), want)
	}

	want := []string{
		"europarl_es-en_100k_word_4000",
		"europarl_es-en_100k_word_8000",
		"europarl_es-en_100k_bytes_none",
		"europarl_es-en_100k_unigram+bytes_8000",
	}
	for i, name := range want {
		if got[i].String() != name {
			t.Errorf("dataset %d: got %q, want %q", i, got[i].String(), name)
		}
	}
	if got[0].Lines() != 100000 {
		t.Errorf("lines: got %d, want 100000", got[0].Lines())
	}
}

func TestGridExpandErrors(t *testing.T) {
	testCases := []struct {
		name string
		grid Grid
	}{
		{
			name: "unknown subword",
			grid: Grid{
				Entries:   []Entry{{Name: "a", Languages: []string{"de-en"}, Sizes: []Size{{"1k", 1000}}}},
				Encodings: []Encoding{{SubwordModels: []string{"sentencepiece"}, VocabSizes: []int{1}}},
			},
		},
		{
			name: "bad pair",
			grid: Grid{
				Entries:   []Entry{{Name: "a", Languages: []string{"deen"}, Sizes: []Size{{"1k", 1000}}}},
				Encodings: []Encoding{{SubwordModels: []string{"word"}, VocabSizes: []int{1}}},
			},
		},
		{
			name: "no sizes",
			grid: Grid{
				Entries:   []Entry{{Name: "a", Languages: []string{"de-en"}}},
				Encodings: []Encoding{{SubwordModels: []string{"word"}, VocabSizes: []int{1}}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.grid.Expand(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
