// Package search locates and queries markdown files beneath a directory.
package search

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MarkdownFile is one discovered document. Content is loaded lazily.
type MarkdownFile struct {
	Path    string
	Name    string
	ModTime time.Time

	content string
	loaded  bool
}

// NewMarkdownFile builds the display name relative to the working
// directory when the path is beneath it.
func NewMarkdownFile(path string) MarkdownFile {
	name := path
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
	}
	f := MarkdownFile{Path: path, Name: name}
	if info, err := os.Stat(path); err == nil {
		f.ModTime = info.ModTime()
	}
	return f
}

// Content reads the file on first use and caches it.
func (f *MarkdownFile) Content() (string, error) {
	if f.loaded {
		return f.content, nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	f.content = string(data)
	f.loaded = true
	return f.content, nil
}

// Options controls which files the walker reports.
type Options struct {
	// ShowHidden includes files under dot-directories.
	ShowHidden bool
	// ShowAll disables both the hidden and ignored filters.
	ShowAll bool
	// IgnoredDirs are directory names skipped entirely.
	IgnoredDirs []string
}

func (o Options) skipDir(name string) bool {
	if o.ShowAll {
		return false
	}
	if !o.ShowHidden && strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	for _, d := range o.IgnoredDirs {
		if name == d {
			return true
		}
	}
	return false
}

// ExpandTilde resolves a leading ~ against $HOME.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Find walks root and returns every markdown file that passes the
// filters, sorted by name. Unreadable entries below the root are skipped,
// not fatal; a missing or unreadable root is an error.
func Find(root string, opts Options) ([]MarkdownFile, error) {
	root = ExpandTilde(root)
	var files []MarkdownFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && opts.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, NewMarkdownFile(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FilterByName returns the files whose display name contains the query,
// case-insensitively. An empty query matches everything.
func FilterByName(files []MarkdownFile, query string) []MarkdownFile {
	if query == "" {
		return files
	}
	q := strings.ToLower(query)
	var out []MarkdownFile
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}
