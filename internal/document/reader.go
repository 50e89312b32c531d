// Package document extracts plain text from uploaded study material.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrUnsupported is returned for file extensions the reader cannot parse.
var ErrUnsupported = errors.New("unsupported file type")

// Extensions lists the accepted file extensions.
var Extensions = []string{".pdf", ".docx", ".txt", ".md"}

// Reader extracts text from files and caches the result per path.
type Reader struct {
	cache *cache.Cache
}

// NewReader returns a Reader whose cached extractions live for ttl.
func NewReader(ttl time.Duration) *Reader {
	return &Reader{cache: cache.New(ttl, 2*ttl)}
}

// Read returns the text of the file at path.
func (r *Reader) Read(path string) (string, error) {
	if v, ok := r.cache.Get(path); ok {
		return v.(string), nil
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = readPDF(path)
	case ".docx":
		text, err = readDOCX(path)
	case ".txt", ".md":
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	text = cleanText(text)
	r.cache.Set(path, text, cache.DefaultExpiration)
	return text, nil
}

// Cached reports whether the text for path is already held in the cache.
func (r *Reader) Cached(path string) bool {
	_, ok := r.cache.Get(path)
	return ok
}

// Forget drops the cached text for path.
func (r *Reader) Forget(path string) {
	r.cache.Delete(path)
}

// cleanText normalizes line endings and strips NUL bytes.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
