//go:build !darwin && !windows

package hotkey

import (
	"context"

	"github.com/dixieflatline76/Cheese/util/log"
)

// Start logs that the shortcut is unavailable; use the API's /capture endpoint instead.
func (l *Listener) Start(context.Context) error {
	log.Printf("Hotkey %s is not available on this platform", Name)
	return ErrUnsupported
}

func HasAccessibility() bool {
	return true
}
