//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

// IsRaw reports whether the terminal on fd is already in raw mode, which is
// the case when canonical (line-buffered) input processing is disabled.
func IsRaw(fd int) (bool, error) {
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return false, err
	}
	return t.Lflag&unix.ICANON == 0, nil
}
