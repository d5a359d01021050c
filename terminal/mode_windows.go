//go:build windows

package terminal

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// IsRaw reports whether the console on fd is already in raw mode. The
// console counts as raw once line input is disabled, since that is the
// flag that makes the OS hand over bytes without waiting for Enter.
func IsRaw(fd int) (bool, error) {
	handle := windows.Handle(fd)
	if handle == windows.InvalidHandle {
		return false, fmt.Errorf("invalid console handle")
	}
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return false, fmt.Errorf("failed to get console mode: %w", err)
	}
	return mode&windows.ENABLE_LINE_INPUT == 0, nil
}
