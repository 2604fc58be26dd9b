package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dixieflatline76/Cheese/util/log"
)

type cached struct {
	modTime time.Time
	size    int64
	frame   *Frame
}

// Library discovers frames in a directory and caches decoded frames by path.
// A cached frame is reused only while the file's modification time and size are unchanged,
// so the preview loop does not decode the PNG thirty times a second.
type Library struct {
	dir string

	mu    sync.Mutex
	cache map[string]cached
}

// NewLibrary creates a library over dir.
func NewLibrary(dir string) *Library {
	return &Library{
		dir:   dir,
		cache: make(map[string]cached),
	}
}

// Dir returns the directory scanned by List.
func (l *Library) Dir() string {
	return l.dir
}

// List returns the PNG frames in the library directory sorted by name.
// A missing directory is an empty library.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing frames: %w", err)
	}

	paths := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		paths = append(paths, filepath.Join(l.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Get returns the decoded frame at path. The path does not need to be inside the library directory.
func (l *Library) Get(path string) (*Frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		l.Evict(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	l.mu.Lock()
	c, ok := l.cache[path]
	l.mu.Unlock()
	if ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.frame, nil
	}

	f, err := Load(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[path] = cached{modTime: info.ModTime(), size: info.Size(), frame: f}
	l.mu.Unlock()
	return f, nil
}

// Evict drops path from the cache.
func (l *Library) Evict(path string) {
	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

// Watch evicts changed frames and calls onChange until ctx is done.
// It blocks, so run it in its own goroutine.
func (l *Library) Watch(ctx context.Context, onChange func()) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("creating frames directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(l.dir); err != nil {
		return fmt.Errorf("watching %s: %w", l.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".png") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				log.Debugf("frame change: %s", event)
				l.Evict(event.Name)
				if onChange != nil {
					onChange()
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Println("frame watcher error:", err)
		}
	}
}
