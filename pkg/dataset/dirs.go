package dataset

import (
	"os"

	"github.com/pkg/errors"
)

// Dirs returns the data folders a dataset version needs before
// preprocessing starts.
func (d *Dataset) Dirs() []string {
	dirs := []string{
		d.RawPath(""),
		d.SplitPath(""),
		d.EncodedPath(""),
		d.PlotsPath(),
	}
	if d.subword.Pretok() {
		dirs = append(dirs, d.PretokPath(""))
	}
	if !d.subword.IsNone() {
		dirs = append(dirs, d.VocabPath("", false))
	}
	return dirs
}

// MakeDirs creates every folder returned by Dirs.
func MakeDirs(d *Dataset) error {
	for _, dir := range d.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "cannot create %s", dir)
		}
	}
	return nil
}
