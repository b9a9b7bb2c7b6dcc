// Package normalize provides the text normalisers applied to raw
// sentences before they are split and encoded.
package normalize

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Func rewrites one sentence.
type Func func(string) string

// NFKC applies Unicode compatibility composition.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}

// NFC applies Unicode canonical composition.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// Strip removes surrounding whitespace.
func Strip(s string) string {
	return strings.TrimSpace(s)
}

// Lowercase maps s to lower case.
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Collapse replaces runs of whitespace with a single space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Sequence applies fns in order.
func Sequence(fns ...Func) Func {
	return func(s string) string {
		for _, fn := range fns {
			s = fn(s)
		}
		return s
	}
}

var byName = map[string]Func{
	"nfkc":      NFKC,
	"nfc":       NFC,
	"strip":     Strip,
	"lowercase": Lowercase,
	"collapse":  Collapse,
}

// ByName builds a Sequence from normaliser names such as
// ["nfkc", "strip", "lowercase"]. No names yields the identity.
func ByName(names []string) (Func, error) {
	fns := make([]Func, 0, len(names))
	for _, name := range names {
		fn, ok := byName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Errorf("normalize: unknown normaliser %q", name)
		}
		fns = append(fns, fn)
	}
	return Sequence(fns...), nil
}
