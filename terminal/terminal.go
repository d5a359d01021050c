// Package terminal controls raw mode on interactive terminals and provides
// the scoped guard the line reader uses to borrow and return that mode.
package terminal

import "golang.org/x/term"

// RawModer is implemented by input sources that are backed by a terminal
// and can report and switch their raw-mode setting.
type RawModer interface {
	IsTerminal() bool
	IsRaw() (bool, error)
	SetRaw(raw bool) error
}

// Guard switches a terminal-capable source into raw mode and remembers
// whether it is the one responsible for switching back. The zero value is
// ready to use.
type Guard struct {
	t           RawModer
	responsible bool
}

// Engage puts v into raw mode if it is a terminal-capable source that is
// not already raw. For anything else it is a no-op and the guard records
// that it is not responsible for restoring.
func (g *Guard) Engage(v any) error {
	t, ok := v.(RawModer)
	if !ok || !t.IsTerminal() {
		return nil
	}
	raw, err := t.IsRaw()
	if err != nil {
		return err
	}
	if raw {
		return nil
	}
	if err := t.SetRaw(true); err != nil {
		return err
	}
	g.t = t
	g.responsible = true
	return nil
}

// Release returns the terminal to cooked mode if this guard enabled raw
// mode. Safe to call when the guard never engaged; never acts twice.
func (g *Guard) Release() error {
	if !g.responsible {
		return nil
	}
	g.responsible = false
	return g.t.SetRaw(false)
}

// State holds the terminal settings that were in effect before MakeRaw.
type State struct {
	prev *term.State
}

// MakeRaw switches the terminal on fd into raw mode and returns the prior
// state for Restore.
func MakeRaw(fd int) (*State, error) {
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &State{prev: prev}, nil
}

// Restore puts the terminal on fd back into the given prior state.
func Restore(fd int, st *State) error {
	if st == nil {
		return nil
	}
	return term.Restore(fd, st.prev)
}
