package log

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dixieflatline76/Cheese/config"
)

// Dir returns the per-user directory release builds write their rotating log to.
// Booth PCs are often locked down kiosks, so it never points next to the executable.
func Dir() (string, error) {
	if runtime.GOOS == "windows" {
		cache, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cache, config.LogWinSubDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, config.LogSubDir), nil
}
