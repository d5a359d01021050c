package reader

import "github.com/bulga138/renglon/source"

// snapshot is the observable state of a source captured at engine entry:
// the consumers that were attached and whether delivery was paused. It is
// consumed exactly once, at restoration.
type snapshot struct {
	consumers []source.Consumer
	paused    bool
}

// capture detaches every existing consumer from src and records the prior
// delivery state. Detached consumers observe nothing until restore puts
// them back.
func capture(src source.Source) snapshot {
	paused := src.Paused()
	return snapshot{
		consumers: src.DetachAll(),
		paused:    paused,
	}
}

// restore hands src back: the engine's consumer is removed, unconsumed
// trailing bytes are re-injected so the next consumer sees them first, the
// original consumers are reattached in order, and the prior paused/flowing
// state is reinstated.
func (s snapshot) restore(src source.Source, self source.Consumer, leftover []byte) {
	src.Pause()
	src.Detach(self)
	if len(leftover) > 0 {
		src.Unshift(leftover)
	}
	for _, c := range s.consumers {
		src.Attach(c)
	}
	if !s.paused {
		src.Resume()
	}
}
