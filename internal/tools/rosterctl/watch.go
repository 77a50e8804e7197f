package rosterctl

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	watchTick   = 100 * time.Millisecond
	watchSettle = 200 * time.Millisecond
)

// watchFile calls onChange once writes to path (or its SQLite journal files)
// have settled. It blocks until ctx is done.
func watchFile(ctx context.Context, path string, logger *log.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory: SQLite may replace or recreate journal files.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Printf("Watching %s ...", abs)

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(abs, ev) {
				continue
			}
			pending = time.Now()
		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) > watchSettle {
				pending = time.Time{}
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watch error: %v", err)
		}
	}
}

func relevant(abs string, ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return name == abs || strings.HasPrefix(name, abs+"-")
}
