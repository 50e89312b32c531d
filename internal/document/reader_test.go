package document

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeDOCX(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("[Content_Types].xml")
	w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	w, _ = zw.Create("word/document.xml")
	w.Write([]byte(`<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path
}

func TestReadText(t *testing.T) {
	r := NewReader(time.Minute)
	path := writeFile(t, "notes.md", "# Cells\r\nMitochondria\x00 make ATP.\r\n")

	got, err := r.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "# Cells\nMitochondria make ATP." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestReadDOCX(t *testing.T) {
	r := NewReader(time.Minute)
	path := writeDOCX(t,
		`<w:p><w:r><w:t>Photosynthesis</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Light </w:t></w:r><w:r><w:t>reactions</w:t></w:r></w:p>`)

	got, err := r.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "Photosynthesis\nLight reactions" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestReadUnsupported(t *testing.T) {
	r := NewReader(time.Minute)
	_, err := r.Read(writeFile(t, "sheet.xlsx", "x"))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	r := NewReader(time.Minute)
	if _, err := r.Read(filepath.Join(t.TempDir(), "gone.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadBrokenDOCX(t *testing.T) {
	r := NewReader(time.Minute)
	if _, err := r.Read(writeFile(t, "fake.docx", "plain text, not a zip")); err == nil {
		t.Error("expected error for non-zip docx")
	}
}

func TestReadCaches(t *testing.T) {
	r := NewReader(time.Minute)
	path := writeFile(t, "a.txt", "first")
	if r.Cached(path) {
		t.Fatal("nothing read yet")
	}
	if _, err := r.Read(path); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(path, []byte("second"), 0o600)

	if !r.Cached(path) {
		t.Error("expected path to be cached after Read")
	}
	got, _ := r.Read(path)
	if got != "first" {
		t.Errorf("expected cached text, got %q", got)
	}
	r.Forget(path)
	got, _ = r.Read(path)
	if got != "second" {
		t.Errorf("expected fresh text after Forget, got %q", got)
	}
}
