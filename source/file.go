package source

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/bulga138/renglon/terminal"
)

// File is a Stream over an *os.File that additionally exposes terminal
// capability when the file is an interactive terminal, so a reader can
// switch it into raw mode for the duration of one acquisition.
type File struct {
	*Stream
	file  *os.File
	tty   bool
	saved *terminal.State
}

// NewFile starts a stream over f. Terminal capability is detected from the
// file descriptor.
func NewFile(f *os.File) (*File, error) {
	s, err := NewStream(f)
	if err != nil {
		return nil, err
	}
	return &File{
		Stream: s,
		file:   f,
		// Cygwin/MSYS ptys surface as pipes; their mode cannot be
		// switched from here, so only real terminals count.
		tty: isatty.IsTerminal(f.Fd()),
	}, nil
}

// IsTerminal reports whether the underlying file is an interactive
// terminal whose raw mode can be controlled.
func (f *File) IsTerminal() bool {
	return f.tty
}

// IsRaw reports whether the terminal is already in raw mode.
func (f *File) IsRaw() (bool, error) {
	if !f.tty {
		return false, errors.New("not a terminal")
	}
	return terminal.IsRaw(int(f.file.Fd()))
}

// SetRaw switches the terminal into raw mode, or back to the settings that
// were in effect before the first switch.
func (f *File) SetRaw(raw bool) error {
	fd := int(f.file.Fd())
	if raw {
		st, err := terminal.MakeRaw(fd)
		if err != nil {
			return err
		}
		f.saved = st
		return nil
	}
	if f.saved == nil {
		return nil
	}
	st := f.saved
	f.saved = nil
	return terminal.Restore(fd, st)
}
