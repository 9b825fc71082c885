package source

import (
	"os"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("app.tsx", []byte("let count = 0;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("app.tsx")
	if !exists {
		t.Error("Expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("Expected latest ID to be %d, got %d", id1, latestID)
	}

	// Same path again: fresh ID, index points at the new version.
	id2 := fs.Add("app.tsx", []byte("let count = 1;"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists = fs.GetLatest("app.tsx")
	if !exists {
		t.Error("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	file1 := fs.Get(id1)
	if string(file1.Content) != "let count = 0;" {
		t.Errorf("Expected first file content to survive, got %q", string(file1.Content))
	}

	file2 := fs.Get(id2)
	if string(file2.Content) != "let count = 1;" {
		t.Errorf("Expected second file content, got %q", string(file2.Content))
	}

	if file1.Path != "app.tsx" || file2.Path != "app.tsx" {
		t.Error("Expected both versions to share the path")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.tsx", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // offsets of the \n bytes
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}

	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}

	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestCRLFNormalization(t *testing.T) {
	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)

	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}

	expected := []byte("a\nb\n")
	if string(normalized) != string(expected) {
		t.Errorf("Expected normalized content %q, got %q", string(expected), string(normalized))
	}

	if len(normalized) != len(original)-2 {
		t.Errorf("Expected length %d, got %d", len(original)-2, len(normalized))
	}
}

func TestBOMRemoval(t *testing.T) {
	bomContent := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	withoutBOM, hadBOM := removeBOM(bomContent)

	if !hadBOM {
		t.Error("Expected BOM to be detected")
	}

	expected := []byte{'x', '\n'}
	if string(withoutBOM) != string(expected) {
		t.Errorf("Expected content without BOM %q, got %q", string(expected), string(withoutBOM))
	}
}

func TestFileSet_Resolve(t *testing.T) {
	fs := NewFileSet()
	// Offsets:      0123 4567 89
	content := []byte("ab\ncd\nef")
	id := fs.AddVirtual("multi.tsx", content)

	tests := []struct {
		name  string
		span  Span
		start LineCol
		end   LineCol
	}{
		{
			name:  "first line start",
			span:  Span{File: id, Start: 0, End: 2},
			start: LineCol{Line: 1, Col: 1},
			end:   LineCol{Line: 1, Col: 3},
		},
		{
			name:  "newline belongs to the line it ends",
			span:  Span{File: id, Start: 2, End: 3},
			start: LineCol{Line: 1, Col: 3},
			end:   LineCol{Line: 2, Col: 1},
		},
		{
			name:  "second line",
			span:  Span{File: id, Start: 3, End: 5},
			start: LineCol{Line: 2, Col: 1},
			end:   LineCol{Line: 2, Col: 3},
		},
		{
			name:  "third line",
			span:  Span{File: id, Start: 6, End: 8},
			start: LineCol{Line: 3, Col: 1},
			end:   LineCol{Line: 3, Col: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := fs.Resolve(tt.span)
			if start != tt.start {
				t.Errorf("Resolve() start = %+v, want %+v", start, tt.start)
			}
			if end != tt.end {
				t.Errorf("Resolve() end = %+v, want %+v", end, tt.end)
			}
		})
	}
}

func TestFileSet_ResolveUTF8(t *testing.T) {
	fs := NewFileSet()

	content := []byte("α\n") // α is 2 bytes
	id := fs.AddVirtual("utf8.tsx", content)

	span := Span{File: id, Start: 0, End: 1}
	start, end := fs.Resolve(span)

	expectedStart := LineCol{Line: 1, Col: 1}
	expectedEnd := LineCol{Line: 1, Col: 2} // byte column, mid-rune

	if start != expectedStart {
		t.Errorf("Expected start %+v, got %+v", expectedStart, start)
	}

	if end != expectedEnd {
		t.Errorf("Expected end %+v, got %+v", expectedEnd, end)
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.tsx", []byte("first\nsecond\nthird"))
	file := fs.Get(id)

	tests := []struct {
		name    string
		lineNum uint32
		want    string
	}{
		{name: "line 1", lineNum: 1, want: "first"},
		{name: "line 2", lineNum: 2, want: "second"},
		{name: "last line without newline", lineNum: 3, want: "third"},
		{name: "line 0 is empty", lineNum: 0, want: ""},
		{name: "line past end is empty", lineNum: 4, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := file.GetLine(tt.lineNum); got != tt.want {
				t.Errorf("GetLine(%d) = %q, want %q", tt.lineNum, got, tt.want)
			}
		})
	}
}

func TestFileSet_EdgeCases(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.AddVirtual("empty.tsx", []byte{})
	file1 := fs.Get(id1)
	if len(file1.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for empty file, got length %d", len(file1.LineIdx))
	}

	id2 := fs.AddVirtual("no_newlines.tsx", []byte("hello"))
	file2 := fs.Get(id2)
	if len(file2.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for file without newlines, got length %d", len(file2.LineIdx))
	}

	id3 := fs.AddVirtual("only_newline.tsx", []byte("\n"))
	file3 := fs.Get(id3)
	if len(file3.LineIdx) != 1 || file3.LineIdx[0] != 0 {
		t.Errorf("Expected LineIdx [0] for file with only newline, got %v", file3.LineIdx)
	}
}

func TestFileSet_Load(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "impulse-load-*.tsx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("a\nb\n"); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	id, err := fs.Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content 'a\\nb\\n', got %q", string(file.Content))
	}
	if file.LineIdx[0] != 1 || file.LineIdx[1] != 3 {
		t.Errorf("Expected LineIdx [1 3], got %v", file.LineIdx)
	}
}

func TestFileSet_LoadBOM(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "impulse-bom-*.tsx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("\xEF\xBB\xBFa\nb\n"); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	id, err := fs.Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected BOM to be stripped, got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag to be set")
	}
}

func TestFileSet_LoadCRLF(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "impulse-crlf-*.tsx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("a\r\nb\r\n"); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	id, err := fs.Load(tempFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected CRLF to be normalized, got %q", string(file.Content))
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("Expected FileNormalizedCRLF flag to be set")
	}
}
