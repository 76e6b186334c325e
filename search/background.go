package search

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// Message is one event from a background walk.
type Message struct {
	File MarkdownFile
	Err  error
	Done bool
}

// Searcher streams discovery results so the UI can render files as they
// are found instead of blocking on the full walk.
type Searcher struct {
	msgs   chan Message
	cancel context.CancelFunc
}

// NewSearcher starts walking root in a goroutine. The caller drains
// Messages until a Done message arrives, and must call Stop when
// abandoning the walk early.
func NewSearcher(ctx context.Context, root string, opts Options) *Searcher {
	ctx, cancel := context.WithCancel(ctx)
	s := &Searcher{
		msgs:   make(chan Message, 64),
		cancel: cancel,
	}
	go s.walk(ctx, ExpandTilde(root), opts)
	return s
}

// Messages is the result stream. Closed after Done is sent.
func (s *Searcher) Messages() <-chan Message { return s.msgs }

// Stop cancels the walk. Safe to call more than once.
func (s *Searcher) Stop() { s.cancel() }

func (s *Searcher) walk(ctx context.Context, root string, opts Options) {
	defer close(s.msgs)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// A bad root must surface; errors below it are skipped.
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
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		select {
		case s.msgs <- Message{File: NewMarkdownFile(path)}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.send(ctx, Message{Err: err})
	}
	s.send(ctx, Message{Done: true})
}

func (s *Searcher) send(ctx context.Context, m Message) {
	select {
	case s.msgs <- m:
	case <-ctx.Done():
	}
}
