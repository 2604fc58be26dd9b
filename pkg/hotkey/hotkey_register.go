//go:build windows || darwin

package hotkey

import (
	"context"

	"golang.design/x/hotkey"

	"github.com/dixieflatline76/Cheese/util/log"
)

// Start registers the shortcut and dispatches presses until ctx is done.
func (l *Listener) Start(ctx context.Context) error {
	if !HasAccessibility() {
		log.Printf("Hotkey %s may not fire: accessibility permission is missing", Name)
	}
	hk := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keySpace)
	if err := hk.Register(); err != nil {
		return err
	}
	log.Printf("Registered hotkey: %s", Name)

	go func() {
		defer func() {
			if err := hk.Unregister(); err != nil {
				log.Printf("Failed to unregister hotkey %s: %v", Name, err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hk.Keydown():
				l.press()
			}
		}
	}()
	return nil
}
