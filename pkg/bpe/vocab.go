// Package bpe trains subword vocabularies for translation datasets.
//
// It covers the word, char and bpe models used when no sentencepiece
// trainer is available. Words are marked with the sentencepiece boundary
// prefix so the resulting pieces are interchangeable with spm output.
package bpe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Boundary marks the start of a word inside a piece.
const Boundary = "▁"

// Entry is one vocabulary line: a piece and its frequency.
type Entry struct {
	Token string
	Freq  int
}

// FreqString returns the frequency as written to vocabulary files.
func (e Entry) FreqString() string {
	return strconv.Itoa(e.Freq)
}

// sortEntries orders by frequency, most frequent first, then by token so
// the output does not depend on map iteration.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Freq != entries[j].Freq {
			return entries[i].Freq > entries[j].Freq
		}
		return entries[i].Token < entries[j].Token
	})
}

func fromCounts(counts map[string]int, limit int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for tok, n := range counts {
		entries = append(entries, Entry{Token: tok, Freq: n})
	}
	sortEntries(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// CountWords returns the most frequent whitespace tokens, at most limit
// of them (0 keeps all).
func CountWords(lines []string, limit int) []Entry {
	counts := make(map[string]int)
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			counts[w]++
		}
	}
	return fromCounts(counts, limit)
}

// CountChars returns the character inventory of lines plus the word
// boundary piece, at most limit entries (0 keeps all).
func CountChars(lines []string, limit int) []Entry {
	counts := make(map[string]int)
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			counts[Boundary]++
			for _, r := range w {
				counts[string(r)]++
			}
		}
	}
	return fromCounts(counts, limit)
}

// ByteEntries returns the 256 byte-fallback pieces <0x00>..<0xFF>.
func ByteEntries() []Entry {
	entries := make([]Entry, 256)
	for i := range entries {
		entries[i] = Entry{Token: BytePiece(byte(i))}
	}
	return entries
}

// BytePiece formats b the way sentencepiece names byte-fallback pieces.
func BytePiece(b byte) string {
	return fmt.Sprintf("<0x%02X>", b)
}

// ParseBytePiece is the inverse of BytePiece.
func ParseBytePiece(piece string) (byte, bool) {
	if len(piece) != 6 || !strings.HasPrefix(piece, "<0x") || piece[5] != '>' {
		return 0, false
	}
	v, err := strconv.ParseUint(piece[3:5], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

type symbolPair struct {
	left, right string
}

// word is a distinct training word split into its current symbols.
type word struct {
	symbols []string
	count   int
}

// Train learns a byte-pair vocabulary of at most size pieces from lines.
// The result lists the base characters first, then merged pieces in the
// order they were learned. Training stops early when no pair occurs at
// least twice.
func Train(lines []string, size int) []Entry {
	wordCounts := make(map[string]int)
	for _, line := range lines {
		for _, w := range strings.Fields(line) {
			wordCounts[Boundary+w]++
		}
	}

	keys := make([]string, 0, len(wordCounts))
	for w := range wordCounts {
		keys = append(keys, w)
	}
	sort.Strings(keys)

	words := make([]word, 0, len(keys))
	charCounts := make(map[string]int)
	for _, w := range keys {
		n := wordCounts[w]
		syms := make([]string, 0, utf8.RuneCountInString(w))
		if strings.HasPrefix(w, Boundary) {
			syms = append(syms, Boundary)
			w = w[len(Boundary):]
		}
		for _, r := range w {
			syms = append(syms, string(r))
		}
		for _, sym := range syms {
			charCounts[sym] += n
		}
		words = append(words, word{symbols: syms, count: n})
	}

	entries := fromCounts(charCounts, 0)
	if size > 0 && len(entries) >= size {
		return entries[:size]
	}
	have := make(map[string]bool, len(entries))
	for _, e := range entries {
		have[e.Token] = true
	}

	for size <= 0 || len(entries) < size {
		// Count pairs
		pairCounts := make(map[symbolPair]int)
		for _, w := range words {
			for i := 0; i < len(w.symbols)-1; i++ {
				pairCounts[symbolPair{w.symbols[i], w.symbols[i+1]}] += w.count
			}
		}

		// Find most frequent pair
		var best symbolPair
		bestCount := 0
		for p, n := range pairCounts {
			if n > bestCount || (n == bestCount && pairLess(p, best)) {
				best, bestCount = p, n
			}
		}
		if bestCount < 2 {
			break // No more useful merges
		}

		merged := best.left + best.right
		if !have[merged] {
			have[merged] = true
			entries = append(entries, Entry{Token: merged, Freq: bestCount})
		}

		// Merge in every word
		for wi := range words {
			syms := words[wi].symbols
			out := syms[:0]
			for i := 0; i < len(syms); i++ {
				if i < len(syms)-1 && syms[i] == best.left && syms[i+1] == best.right {
					out = append(out, merged)
					i++
				} else {
					out = append(out, syms[i])
				}
			}
			words[wi].symbols = out
		}
	}

	return entries
}

func pairLess(a, b symbolPair) bool {
	if a.left != b.left {
		return a.left < b.left
	}
	return a.right < b.right
}
