package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"impulse/internal/diag"
	"impulse/internal/source"
)

var (
	sevErrorColor = color.New(color.FgRed, color.Bold)
	sevWarnColor  = color.New(color.FgYellow, color.Bold)
	sevInfoColor  = color.New(color.FgCyan, color.Bold)
	codeColor     = color.New(color.Faint)
	gutterColor   = color.New(color.FgBlue)
	caretColor    = color.New(color.FgGreen, color.Bold)
	removedColor  = color.New(color.FgRed)
	addedColor    = color.New(color.FgGreen)
)

// Pretty renders diagnostics for terminals. Each diagnostic prints a
// <path>:<line>:<col>: <severity> <code>: <message> header, the primary
// source line with a caret underline, then notes and fixes per the
// options. Expects a sorted bag.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.diagnostic(d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	return c.Sprint(s)
}

func (p *prettyPrinter) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.paint(sevErrorColor, s.Label())
	case diag.SevWarning:
		return p.paint(sevWarnColor, s.Label())
	default:
		return p.paint(sevInfoColor, s.Label())
	}
}

func (p *prettyPrinter) path(f *source.File) string {
	switch p.opts.PathMode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", p.fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", p.fs.BaseDir())
	}
}

func (p *prettyPrinter) location(span source.Span) string {
	file := p.fs.Get(span.File)
	pos := p.fs.ResolveStart(span)
	return fmt.Sprintf("%s:%d:%d", p.path(file), pos.Line, pos.Col)
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	fmt.Fprintf(p.w, "%s: %s %s: %s\n",
		p.location(d.Primary),
		p.severity(d.Severity),
		p.paint(codeColor, fmt.Sprintf("%s [%s]", d.Code.ID(), d.Code.Name())),
		d.Message)
	p.context(d.Primary)

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(p.w, "  note: %s\n", n.Msg)
			fmt.Fprintf(p.w, "    --> %s\n", p.location(n.Span))
		}
	}
	if p.opts.ShowFixes {
		ctx := diag.FixBuildContext{FileSet: p.fs}
		for _, f := range d.Fixes {
			if f == nil {
				continue
			}
			resolved, err := f.Resolve(ctx)
			if err != nil {
				fmt.Fprintf(p.w, "  fix: %s (failed to build: %v)\n", f.Title, err)
				continue
			}
			p.fix(resolved)
		}
	}
}

// context prints the span's source lines in a numbered gutter, the
// surrounding Context lines included, with a caret underline on the
// span's first line.
func (p *prettyPrinter) context(span source.Span) {
	file := p.fs.Get(span.File)
	start, end := p.fs.Resolve(span)

	var ctx uint32
	if p.opts.Context > 0 {
		ctx = uint32(p.opts.Context)
	}
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := end.Line + ctx
	if m := maxLine(file); last > m {
		last = m
	}
	if last < start.Line {
		last = start.Line
	}

	gutter := len(fmt.Sprintf("%d", last))
	for line := first; line <= last; line++ {
		text := file.GetLine(line)
		num := fmt.Sprintf("%*d", gutter, line)
		fmt.Fprintf(p.w, "  %s | %s\n", p.paint(gutterColor, num), text)
		if line == start.Line {
			p.underline(text, start, end, gutter)
		}
	}
}

func (p *prettyPrinter) underline(text string, start, end source.LineCol, gutter int) {
	startByte := int(start.Col) - 1
	if startByte > len(text) {
		startByte = len(text)
	}
	endByte := len(text)
	if end.Line == start.Line {
		endByte = int(end.Col) - 1
		if endByte > len(text) {
			endByte = len(text)
		}
	}
	if endByte < startByte {
		endByte = startByte
	}

	// Columns are byte offsets; the caret must line up with what the
	// terminal shows, so pad and measure in display cells.
	pad := runewidth.StringWidth(text[:startByte])
	width := runewidth.StringWidth(text[startByte:endByte])
	marks := "^"
	if width > 1 {
		marks += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(p.w, "  %s | %s%s\n",
		strings.Repeat(" ", gutter),
		strings.Repeat(" ", pad),
		p.paint(caretColor, marks))
}

func (p *prettyPrinter) fix(f diag.Fix) {
	line := fmt.Sprintf("  fix: %s", f.Title)
	if f.ID != "" {
		line += fmt.Sprintf(" [%s]", f.ID)
	}
	line += fmt.Sprintf(" (%s)", f.Applicability)
	fmt.Fprintln(p.w, line)

	if !p.opts.ShowPreview {
		return
	}
	for _, edit := range f.Edits {
		preview, err := buildFixEditPreview(p.fs, edit)
		if err != nil {
			continue
		}
		for _, l := range preview.before {
			fmt.Fprintf(p.w, "    %s\n", p.paint(removedColor, "- "+l))
		}
		for _, l := range preview.after {
			fmt.Fprintf(p.w, "    %s\n", p.paint(addedColor, "+ "+l))
		}
	}
}

// maxLine returns the file's last line number.
func maxLine(f *source.File) uint32 {
	n := uint32(len(f.LineIdx))
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}
