package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Holder is the explicit configuration handle shared by the booth components.
// Readers take a snapshot with Get; an admin save replaces the whole struct with Swap,
// so a component holding an older snapshot never sees it change underneath it.
type Holder struct {
	path      string
	current   atomic.Pointer[Config]
	mu        sync.Mutex
	listeners []func(*Config)
}

// NewHolder loads the configuration at path. A malformed file still yields a usable
// holder with defaults; the parse error is returned alongside it.
func NewHolder(path string) (*Holder, error) {
	cfg, err := Load(path)
	h := &Holder{path: path}
	h.current.Store(cfg)
	return h, err
}

// NewHolderWith wraps an in-memory configuration. Swap still persists to path when it is not empty.
func NewHolderWith(path string, cfg *Config) *Holder {
	h := &Holder{path: path}
	h.current.Store(cfg)
	return h
}

// Path returns the file backing the holder.
func (h *Holder) Path() string {
	return h.path
}

// Get returns the current configuration snapshot. Callers must not mutate it; use Clone and Swap.
func (h *Holder) Get() *Config {
	return h.current.Load()
}

// Swap persists cfg and makes it the current snapshot, then notifies listeners.
func (h *Holder) Swap(cfg *Config) error {
	h.mu.Lock()
	if h.path != "" {
		if err := cfg.Save(h.path); err != nil {
			h.mu.Unlock()
			return fmt.Errorf("saving config: %w", err)
		}
	}
	h.current.Store(cfg)
	listeners := append([]func(*Config){}, h.listeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l(cfg)
	}
	return nil
}

// Update clones the current snapshot, applies fn and swaps the result in.
func (h *Holder) Update(fn func(*Config)) error {
	next := h.Get().Clone()
	fn(next)
	return h.Swap(next)
}

// OnChange registers fn to run after every successful Swap.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}
