package rewrite

import (
	"impulse/internal/analysis"
)

// signalReads rewrites bare reads of signal bindings to .value accesses.
func (r *componentRewriter) signalReads() error {
	return r.rewriteReads(kindNames(r.ca, analysis.KindSignal))
}

// signalWraps wraps every signal declaration's initializer in signal(...).
// Reads were rewritten earlier: a read ending where the initializer ends
// must render before the closing paren, and inserts at one offset render
// in insertion order.
func (r *componentRewriter) signalWraps() error {
	for _, v := range r.ca.Variables {
		if v.Kind != analysis.KindSignal || !v.SimpleDeclarator() {
			continue
		}
		if v.HasInit {
			if err := r.buf.AppendRight(int(v.InitSpan.Start), "signal("); err != nil {
				return err
			}
			if err := r.buf.AppendLeft(int(v.InitSpan.End), ")"); err != nil {
				return err
			}
		} else {
			// let x; carries no initializer node, so the constructor
			// attaches after the name.
			if err := r.buf.AppendLeft(int(v.NameSpan.End), " = signal(undefined)"); err != nil {
				return err
			}
		}
		r.used.Signal = true
	}
	return nil
}
