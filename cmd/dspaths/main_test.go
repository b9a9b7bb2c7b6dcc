package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ha1tch/nmtlab/pkg/dataset"
)

func TestPrintPaths(t *testing.T) {
	testCases := []struct {
		name    string
		subword string
		merge   bool
		run     string
		want    []string
		notWant []string
	}{
		{
			name:    "word",
			subword: "word",
			want: []string{
				"multi30k_de-en_original_word_8000\n",
				"pretok",
				filepath.Join("vocabs", "word", "8000", "de.vocab"),
				filepath.Join("vocabs", "word", "8000", "en.vocab"),
				filepath.Join("plots", "word", "8000"),
			},
			notWant: []string{"checkpoints"},
		},
		{
			name:    "merged bpe with run",
			subword: "bpe",
			merge:   true,
			run:     "transformer",
			want: []string{
				"vocab de-en",
				filepath.Join("vocabs", "bpe", "8000", "de-en.vocab"),
				filepath.Join("runs", "transformer", "checkpoints"),
				filepath.Join("beams", "beam1", "scores"),
			},
			notWant: []string{"pretok", filepath.Join("8000", "en.vocab")},
		},
		{
			name:    "none",
			subword: "none",
			want:    []string{filepath.Join("data", "encoded") + "\n"},
			notWant: []string{"vocab "},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := dataset.New(dataset.Params{
				BasePath:    "/data",
				Name:        "multi30k",
				LangPair:    "de-en",
				SizeName:    "original",
				Subword:     tc.subword,
				VocabSize:   "8000",
				MergeVocabs: tc.merge,
			})
			if err != nil {
				t.Fatal(err)
			}

			var buf bytes.Buffer
			printPaths(&buf, ds, "autonmt", tc.run)
			out := buf.String()

			for _, s := range tc.want {
				if !strings.Contains(out, s) {
					t.Errorf("missing %q in:\n%s", s, out)
				}
			}
			for _, s := range tc.notWant {
				if strings.Contains(out, s) {
					t.Errorf("unexpected %q in:\n%s", s, out)
				}
			}
		})
	}
}
