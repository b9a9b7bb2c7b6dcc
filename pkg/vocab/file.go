package vocab

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ParseEntries reads "token<TAB>freq" lines in file order. The line is
// split on the first tab only.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, errors.Wrapf(ErrMalformedVocab, "line %d: missing tab", lineNo)
		}
		entries = append(entries, Entry{Token: parts[0], Freq: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read vocabulary")
	}
	return entries, nil
}

// ReadVocab builds the vocabulary from r. Without includesSpecials the
// four special tokens are prepended and take the lowest ids.
func (v *Vocabulary) ReadVocab(r io.Reader, includesSpecials bool) error {
	entries, err := ParseEntries(r)
	if err != nil {
		return err
	}
	if !includesSpecials {
		entries = append(v.base.Entries(), entries...)
	}
	return v.BuildFromTokens(entries)
}

// BuildFromVocab builds the vocabulary from a vocabulary file.
func (v *Vocabulary) BuildFromVocab(path string, includesSpecials bool) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open vocabulary")
	}
	defer f.Close()

	if err := v.ReadVocab(f, includesSpecials); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	return nil
}

// Write writes the vocabulary as "token<TAB>freq" lines in id order.
// With includeSpecials the four special tokens are written first in
// unk, sos, eos, pad order; special tokens are never written twice.
func (v *Vocabulary) Write(w io.Writer, includeSpecials bool) error {
	bw := bufio.NewWriter(w)

	var lines []Entry
	if includeSpecials {
		lines = append(lines, v.specials.Entries()...)
	}
	special := v.specials.pieces()
	for _, tok := range v.Tokens() {
		if special[tok] {
			continue
		}
		freq := v.voc2freq[tok]
		if freq == "" {
			freq = "0"
		}
		lines = append(lines, Entry{Token: tok, Freq: freq})
	}

	for _, e := range lines {
		if _, err := bw.WriteString(e.Token + "\t" + e.Freq + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes the vocabulary to path. See Write.
func (v *Vocabulary) Save(path string, includeSpecials bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create vocabulary")
	}
	if err := v.Write(f, includeSpecials); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}
