// Package loader reads the FAQ corpus from disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"faqrag/internal/domain"
)

// Loader discovers and reads FAQ documents from a single directory.
type Loader struct {
	dir     string
	include []string
}

// New returns a Loader over dir. A file is included when its base name
// matches any of the include patterns.
func New(dir string, include []string) *Loader {
	return &Loader{dir: dir, include: include}
}

// Dir returns the corpus directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads every matching file in the top level of the directory, in
// name order. A missing or unreadable directory is an error; a directory
// with no matching files yields an empty slice.
func (l *Loader) Load() ([]domain.Document, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read faq dir: %w", err)
	}
	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !l.matches(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read faq file: %w", err)
		}
		docs = append(docs, domain.Document{Name: entry.Name(), Content: string(data)})
	}
	return docs, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.include {
		ok, err := doublestar.Match(pattern, name)
		if err == nil && ok {
			return true
		}
	}
	return false
}
