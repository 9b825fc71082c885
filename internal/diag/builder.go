package diag

import "impulse/internal/source"

func New(sev Severity, code Code, primary source.Span, msg string) *Diagnostic {
	return &Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) *Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d *Diagnostic) WithNote(sp source.Span, msg string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithFix attaches an advisory fix: title only, manual review.
func (d *Diagnostic) WithFix(title string, edits ...TextEdit) *Diagnostic {
	d.Fixes = append(d.Fixes, &Fix{
		Title:         title,
		Applicability: FixApplicabilityManualReview,
		Edits:         edits,
	})
	return d
}

// WithFixSuggestion attaches a fully configured fix.
func (d *Diagnostic) WithFixSuggestion(fix *Fix) *Diagnostic {
	if fix != nil {
		d.Fixes = append(d.Fixes, fix)
	}
	return d
}
