// Package scan enumerates candidate raw files in a source directory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// Entry is a matched regular file.
type Entry struct {
	Name string
	Path string
	Size int64
}

// Result holds the matched entries in directory enumeration order.
type Result struct {
	Entries []Entry
	// Total counts every non-directory entry seen.
	Total int
}

// Matcher reports whether a file name carries one of a set of extensions,
// comparing with Unicode case folding.
type Matcher struct {
	folder cases.Caser
	exts   map[string]struct{}
}

// NewMatcher builds a matcher for extensions given with or without a leading dot.
func NewMatcher(extensions []string) *Matcher {
	m := &Matcher{folder: cases.Fold(), exts: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		m.exts[m.folder.String(ext)] = struct{}{}
	}
	return m
}

// Match reports whether name has a configured extension.
func (m *Matcher) Match(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	_, ok := m.exts[m.folder.String(ext)]
	return ok
}

// Dir lists dir without recursing and returns the regular files whose
// extension matches. Only failing to read dir itself is an error.
func Dir(dir string, extensions []string) (Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("read source directory: %w", err)
	}

	matcher := NewMatcher(extensions)
	var result Result
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result.Total++
		if !matcher.Match(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		result.Entries = append(result.Entries, Entry{
			Name: entry.Name(),
			Path: path,
			Size: info.Size(),
		})
	}
	return result, nil
}
