package diagfmt

import (
	"fmt"
	"io"

	"impulse/internal/diag"
	"impulse/internal/source"
)

// Short writes one line per diagnostic in the stable
// "severity CODE path:line:col message" form that golden files use.
// Lines are sorted by location, so the output is diff-friendly and
// suitable for CI logs. Notes become extra "note" lines when
// includeNotes is set.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
