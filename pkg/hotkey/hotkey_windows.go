//go:build windows

package hotkey

import "golang.design/x/hotkey"

const (
	modCtrl  = hotkey.ModCtrl
	modAlt   = hotkey.ModAlt
	keySpace = hotkey.KeySpace
)

func HasAccessibility() bool {
	return true
}
