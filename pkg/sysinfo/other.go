//go:build !linux && !darwin && !windows

package sysinfo

func screenSize() (int, int, error) {
	return 0, 0, ErrUnsupported
}
