// Package watch delivers the contents of a shader file whenever it changes
// on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Settle is how long a file must stay quiet before it is re-read. Editors
// often save in several writes or by renaming a temporary file.
var Settle = 50 * time.Millisecond

// File calls onChange with the new contents of path each time it changes,
// until ctx is done. The directory is watched rather than the file so that
// atomic saves are seen. onChange runs on the watcher goroutine.
func File(ctx context.Context, path string, onChange func(src string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var (
		mu    sync.Mutex
		last  string
		timer *time.Timer
	)
	if data, err := os.ReadFile(abs); err == nil {
		last = string(data)
	}
	reload := func() {
		data, err := os.ReadFile(abs)
		if err != nil {
			log.Printf("Warning: failed to reload %s: %v", path, err)
			return
		}
		mu.Lock()
		changed := string(data) != last
		last = string(data)
		mu.Unlock()
		if changed && ctx.Err() == nil {
			onChange(string(data))
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(Settle, reload)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: file watcher error: %v", err)
			}
		}
	}()
	return nil
}
