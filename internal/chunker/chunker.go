// Package chunker splits extracted document text into sections and trims
// it to prompt-sized excerpts on paragraph boundaries.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultTargetSize = 800
	DefaultMaxSize    = 1200
)

// TruncatedMarker is appended to an excerpt that omits part of the text.
const TruncatedMarker = "\n[... content truncated ...]"

// Options configures section sizes, in bytes.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default splitting options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Section is a contiguous piece of the source text.
type Section struct {
	Text      string
	StartLine int
	EndLine   int
}

// Split breaks text into sections on headings and blank lines, merging
// small paragraphs up to TargetSize and breaking anything over MaxSize on
// line boundaries.
func Split(text string, opts Options) []Section {
	if opts.TargetSize <= 0 || opts.MaxSize <= 0 {
		opts = DefaultOptions()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxSize {
		return []Section{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}
	return merge(paragraphs(text), opts)
}

// Excerpt returns the leading sections of text that fit in budget bytes.
// The bool reports whether anything was left out.
func Excerpt(text string, budget int) (string, bool) {
	text = strings.TrimSpace(text)
	if budget <= 0 || len(text) <= budget {
		return text, false
	}

	opts := Options{TargetSize: budget / 2, MaxSize: budget}
	if opts.TargetSize == 0 {
		opts.TargetSize = budget
	}
	var b strings.Builder
	for _, s := range Split(text, opts) {
		need := len(s.Text)
		if b.Len() > 0 {
			need += 2
		}
		if b.Len()+need > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Text)
	}
	if b.Len() == 0 {
		// A single unbroken line longer than budget; cut at a word boundary.
		cut := Truncate(text, budget)
		if i := strings.LastIndexAny(cut, " \t"); i > budget/2 {
			cut = cut[:i]
		}
		b.WriteString(strings.TrimSpace(cut))
	}
	return b.String() + TruncatedMarker, true
}

// Truncate returns the longest prefix of s that is at most n bytes and
// does not split a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// paragraphs splits text on heading lines and blank lines.
func paragraphs(text string) []Section {
	lines := strings.Split(text, "\n")
	var out []Section
	var current []string
	start := 1

	flush := func(end int) {
		if t := strings.TrimSpace(strings.Join(current, "\n")); t != "" {
			out = append(out, Section{Text: t, StartLine: start, EndLine: end})
		}
		current = nil
		start = end + 1
	}

	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush(n - 1)
			continue
		case strings.HasPrefix(trimmed, "#") && len(current) > 0:
			flush(n - 1)
		}
		if len(current) == 0 {
			start = n
		}
		current = append(current, line)
	}
	flush(len(lines))
	return out
}

// merge combines consecutive paragraphs up to TargetSize.
func merge(paras []Section, opts Options) []Section {
	var out []Section
	var acc Section

	emit := func() {
		if acc.Text == "" {
			return
		}
		if len(acc.Text) > opts.MaxSize {
			out = append(out, splitLines(acc, opts)...)
		} else {
			out = append(out, acc)
		}
		acc = Section{}
	}

	for _, p := range paras {
		if acc.Text == "" {
			acc = p
			continue
		}
		if len(acc.Text)+2+len(p.Text) <= opts.TargetSize {
			acc.Text += "\n\n" + p.Text
			acc.EndLine = p.EndLine
			continue
		}
		emit()
		acc = p
	}
	emit()
	return out
}

// splitLines breaks an oversized section on line boundaries.
func splitLines(s Section, opts Options) []Section {
	lines := strings.Split(s.Text, "\n")
	var out []Section
	var current []string
	start := s.StartLine
	size := 0

	flush := func(end int) {
		if t := strings.TrimSpace(strings.Join(current, "\n")); t != "" {
			out = append(out, Section{Text: t, StartLine: start, EndLine: end})
		}
		current = nil
		size = 0
	}

	for i, line := range lines {
		if size+len(line) > opts.TargetSize && len(current) > 0 {
			flush(s.StartLine + i - 1)
			start = s.StartLine + i
		}
		current = append(current, line)
		size += len(line) + 1
	}
	flush(s.StartLine + len(lines) - 1)
	return out
}
