package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func names(files []MarkdownFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestFind(t *testing.T) {
	root := writeTree(t, map[string]string{
		"readme.md":          "# Readme",
		"docs/guide.md":      "# Guide",
		"docs/notes.txt":     "not markdown",
		"UPPER.MD":           "# Case insensitive extension",
		".hidden/secret.md":  "# Hidden",
		"vendor/dep.md":      "# Vendored",
		"docs/deep/inner.md": "# Deep",
	})

	files, err := Find(root, Options{IgnoredDirs: []string{"vendor"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got := map[string]bool{}
	for _, name := range names(files) {
		got[name] = true
	}
	for _, want := range []string{"readme.md", "guide.md", "UPPER.MD", "inner.md"} {
		if !got[want] {
			t.Errorf("missing %s in %v", want, names(files))
		}
	}
	if got["notes.txt"] || got["secret.md"] || got["dep.md"] {
		t.Errorf("filtered file leaked: %v", names(files))
	}
}

func TestFindShowHidden(t *testing.T) {
	root := writeTree(t, map[string]string{
		".hidden/secret.md": "# Hidden",
		"visible.md":        "# Visible",
	})
	files, err := Find(root, Options{ShowHidden: true})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("want 2 files, got %v", names(files))
	}
}

func TestFindShowAllOverridesFilters(t *testing.T) {
	root := writeTree(t, map[string]string{
		".hidden/secret.md": "# Hidden",
		"vendor/dep.md":     "# Vendored",
	})
	files, err := Find(root, Options{ShowAll: true, IgnoredDirs: []string{"vendor"}})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("want 2 files, got %v", names(files))
	}
}

func TestFindMissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "absent"), Options{})
	if err == nil {
		t.Fatal("missing root reported no error")
	}
	if !os.IsNotExist(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindSorted(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.md": "b",
		"a.md": "a",
		"c.md": "c",
	})
	files, err := Find(root, Options{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Name > files[i].Name {
			t.Fatalf("not sorted: %v", names(files))
		}
	}
}

func TestFilterByName(t *testing.T) {
	files := []MarkdownFile{
		{Name: "docs/guide.md"},
		{Name: "README.md"},
		{Name: "notes/todo.md"},
	}
	if got := FilterByName(files, ""); len(got) != 3 {
		t.Fatalf("empty query: %d", len(got))
	}
	got := FilterByName(files, "readme")
	if len(got) != 1 || got[0].Name != "README.md" {
		t.Fatalf("case-insensitive filter: %v", got)
	}
	if got := FilterByName(files, "md"); len(got) != 3 {
		t.Fatalf("substring filter: %d", len(got))
	}
}

func TestContentLazyLoad(t *testing.T) {
	root := writeTree(t, map[string]string{"doc.md": "# Title\nbody text\n"})
	f := NewMarkdownFile(filepath.Join(root, "doc.md"))
	content, err := f.Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if content != "# Title\nbody text\n" {
		t.Fatalf("content: %q", content)
	}
	// Cached after first read.
	if err := os.Remove(f.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	again, err := f.Content()
	if err != nil || again != content {
		t.Fatalf("cached content: %q %v", again, err)
	}
}

func TestSearchContent(t *testing.T) {
	source := "# Intro\n\nsome text here\n\n## Details\n\nmore TEXT below\nunrelated line\n"
	matches := SearchContent("doc.md", source, "text")
	if len(matches) != 2 {
		t.Fatalf("matches: %+v", matches)
	}
	if matches[0].Heading != "Intro" {
		t.Fatalf("first heading: %q", matches[0].Heading)
	}
	if matches[0].Line != 3 {
		t.Fatalf("first line: %d", matches[0].Line)
	}
	if matches[1].Heading != "Details" {
		t.Fatalf("second heading: %q", matches[1].Heading)
	}
	if matches[1].Text != "more TEXT below" {
		t.Fatalf("match text: %q", matches[1].Text)
	}
}

func TestSearchContentEmptyQuery(t *testing.T) {
	if matches := SearchContent("doc.md", "anything", ""); matches != nil {
		t.Fatalf("empty query: %+v", matches)
	}
}

func TestBackgroundSearcher(t *testing.T) {
	root := writeTree(t, map[string]string{
		"one.md":      "1",
		"two.md":      "2",
		"sub/tri.md":  "3",
		"skip/no.txt": "x",
	})
	s := NewSearcher(context.Background(), root, Options{})
	defer s.Stop()

	var found []MarkdownFile
	done := false
	timeout := time.After(5 * time.Second)
	for !done {
		select {
		case msg, ok := <-s.Messages():
			if !ok {
				done = true
				break
			}
			if msg.Err != nil {
				t.Fatalf("walk error: %v", msg.Err)
			}
			if msg.Done {
				done = true
				break
			}
			found = append(found, msg.File)
		case <-timeout:
			t.Fatal("searcher did not finish")
		}
	}
	if len(found) != 3 {
		t.Fatalf("found %d files: %v", len(found), names(found))
	}
}

func TestBackgroundSearcherMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "absent")
	s := NewSearcher(context.Background(), root, Options{})
	defer s.Stop()

	sawErr := false
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, ok := <-s.Messages():
			if !ok || msg.Done {
				if !sawErr {
					t.Fatal("missing root reported no error")
				}
				return
			}
			if msg.Err != nil {
				sawErr = true
			}
		case <-timeout:
			t.Fatal("searcher did not finish")
		}
	}
}

func TestBackgroundSearcherStop(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": "a"})
	ctx := context.Background()
	s := NewSearcher(ctx, root, Options{})
	s.Stop()
	// The channel must close rather than leak the goroutine.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-s.Messages():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("messages channel never closed")
		}
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := ExpandTilde("~"); got != home {
		t.Fatalf("~: %q", got)
	}
	if got := ExpandTilde("~/docs"); got != filepath.Join(home, "docs") {
		t.Fatalf("~/docs: %q", got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute: %q", got)
	}
}
