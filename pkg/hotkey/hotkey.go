// Package hotkey registers the global capture shortcut, Ctrl+Alt+Space, so an operator
// can fire the booth from a remote keyboard or presenter clicker.
package hotkey

import (
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/dixieflatline76/Cheese/util/log"
)

// Name is the human readable shortcut.
const Name = "Ctrl+Alt+Space"

// ErrUnsupported is returned on platforms without global hotkeys.
var ErrUnsupported = errors.New("global hotkeys are not supported on this platform")

// Listener turns key presses into rate limited triggers.
type Listener struct {
	action  func()
	limiter *rate.Limiter
}

// NewListener calls action for presses at most once every interval.
func NewListener(action func(), interval time.Duration) *Listener {
	return &Listener{
		action:  action,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// press handles one keydown and reports whether the action ran.
func (l *Listener) press() bool {
	if !l.limiter.Allow() {
		log.Debugf("Hotkey %s ignored, pressed too quickly", Name)
		return false
	}
	log.Debugf("Hotkey pressed: %s", Name)
	l.action()
	return true
}
