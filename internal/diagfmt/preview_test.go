package diagfmt

import (
	"reflect"
	"testing"

	"impulse/internal/diag"
	"impulse/internal/source"
)

func TestBuildFixEditPreview(t *testing.T) {
	content := "const a = 1;\nconst b = 2;\n"

	tests := []struct {
		name       string
		start, end uint32
		newText    string
		before     []string
		after      []string
	}{
		{
			name:    "single line replacement",
			start:   0,
			end:     5,
			newText: "let",
			before:  []string{"const a = 1;"},
			after:   []string{"let a = 1;"},
		},
		{
			name:    "edit across the line break joins lines",
			start:   12,
			end:     13,
			newText: " ",
			before:  []string{"const a = 1;", "const b = 2;"},
			after:   []string{"const a = 1; const b = 2;"},
		},
		{
			name:    "insertion",
			start:   12,
			end:     12,
			newText: " // end",
			before:  []string{"const a = 1;"},
			after:   []string{"const a = 1; // end"},
		},
		{
			name:    "deletion",
			start:   10,
			end:     11,
			newText: "",
			before:  []string{"const a = 1;"},
			after:   []string{"const a = ;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, id := newVirtualFile(t, content)
			edit := diag.TextEdit{
				Span:    source.Span{File: id, Start: tt.start, End: tt.end},
				NewText: tt.newText,
			}
			preview, err := buildFixEditPreview(fs, edit)
			if err != nil {
				t.Fatalf("buildFixEditPreview: %v", err)
			}
			if !reflect.DeepEqual(preview.before, tt.before) {
				t.Errorf("before = %q, want %q", preview.before, tt.before)
			}
			if !reflect.DeepEqual(preview.after, tt.after) {
				t.Errorf("after = %q, want %q", preview.after, tt.after)
			}
		})
	}
}

func TestBuildFixEditPreviewNoTrailingNewline(t *testing.T) {
	fs, id := newVirtualFile(t, "const a = 1;")
	edit := diag.TextEdit{
		Span:    source.Span{File: id, Start: 0, End: 5},
		NewText: "let",
	}
	preview, err := buildFixEditPreview(fs, edit)
	if err != nil {
		t.Fatalf("buildFixEditPreview: %v", err)
	}
	if len(preview.before) != 1 || preview.before[0] != "const a = 1;" {
		t.Errorf("before = %q", preview.before)
	}
	if len(preview.after) != 1 || preview.after[0] != "let a = 1;" {
		t.Errorf("after = %q", preview.after)
	}
}

func TestBuildFixEditPreviewNilFileSet(t *testing.T) {
	if _, err := buildFixEditPreview(nil, diag.TextEdit{}); err == nil {
		t.Error("expected an error for a nil FileSet")
	}
}
