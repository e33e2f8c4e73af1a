package jsonfile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joshuapare/vtree/internal/logger"
)

// DefaultDebounce coalesces bursts of writes into one reload.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the graph whenever its file is written and calls onChange
// with the new root or the reload error. It returns once the watcher is
// running; watching stops when ctx is cancelled. onChange runs on the
// watcher goroutine.
func (g *Graph) Watch(ctx context.Context, debounce time.Duration, onChange func(root *Node, err error)) error {
	if g.path == "" {
		return fmt.Errorf("jsonfile watch: graph has no backing file")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	dir := filepath.Dir(g.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(g.path)

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				root, err := g.Reload(ctx)
				if ctx.Err() != nil {
					return
				}
				onChange(root, err)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("jsonfile: watch error", "path", g.path, "error", err)
			}
		}
	}()
	return nil
}
