package source

import (
	"io"
	"sync"

	"github.com/muesli/cancelreader"
	"github.com/pkg/errors"
)

const chunkSize = 4096

// Stream is a Source fed by a background pump reading from an io.Reader.
// Data arriving while the stream is paused, or while no consumer is
// attached, is buffered and delivered once both conditions clear.
//
// All methods are safe for concurrent use. Consumer callbacks run without
// the stream lock held, so a consumer may call back into the stream.
type Stream struct {
	mu          sync.Mutex
	consumers   []Consumer
	pending     [][]byte
	paused      bool
	ended       bool
	closed      bool
	closeErr    error
	dispatching bool
	textMode    bool
	cr          cancelreader.CancelReader
}

// NewStream starts a pump over r and returns the stream it feeds. The
// stream begins flowing but holds data until a consumer attaches.
func NewStream(r io.Reader) (*Stream, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, errors.WithMessage(err, "wrapping input reader")
	}
	s := &Stream{cr: cr}
	go s.pump()
	return s, nil
}

func (s *Stream) pump() {
	buf := make([]byte, chunkSize)
	for {
		n, err := s.cr.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.push(chunk)
		}
		if err != nil {
			switch {
			case err == io.EOF:
				s.finish()
			case errors.Is(err, cancelreader.ErrCanceled):
				s.fail(nil)
			default:
				s.fail(err)
			}
			return
		}
	}
}

// Close forcibly shuts the stream down. Consumers observe Closed(nil);
// data still buffered is discarded together with the pump.
func (s *Stream) Close() error {
	if s.cr != nil && s.cr.Cancel() {
		return nil
	}
	// The underlying reader does not support cancellation; report the
	// close directly and let the stuck pump drain into a closed stream.
	s.fail(nil)
	return nil
}

// SetTextMode selects how lines read from this stream should be
// serialized: decoded text when true, raw bytes when false.
func (s *Stream) SetTextMode(text bool) {
	s.mu.Lock()
	s.textMode = text
	s.mu.Unlock()
}

// TextMode implements Source.
func (s *Stream) TextMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textMode
}

// Attach implements Source.
func (s *Stream) Attach(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers = append(s.consumers, c)
	if !s.paused {
		s.flushLocked()
	}
}

// Detach implements Source.
func (s *Stream) Detach(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, have := range s.consumers {
		if have == c {
			s.consumers = append(s.consumers[:i], s.consumers[i+1:]...)
			return
		}
	}
}

// DetachAll implements Source.
func (s *Stream) DetachAll() []Consumer {
	s.mu.Lock()
	defer s.mu.Unlock()
	detached := s.consumers
	s.consumers = nil
	return detached
}

// Paused implements Source.
func (s *Stream) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Pause implements Source.
func (s *Stream) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume implements Source.
func (s *Stream) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.flushLocked()
}

// Unshift implements Source.
func (s *Stream) Unshift(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append([][]byte{chunk}, s.pending...)
	if !s.paused {
		s.flushLocked()
	}
}

// push queues one arrived chunk and delivers it if the stream is flowing.
func (s *Stream) push(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.closed {
		return
	}
	s.pending = append(s.pending, chunk)
	if !s.paused {
		s.flushLocked()
	}
}

// finish records a graceful end of input.
func (s *Stream) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.closed {
		return
	}
	s.ended = true
	if !s.paused {
		s.flushLocked()
	}
}

// fail records a forcible close, with err as the cause when one exists.
func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	if !s.paused {
		s.flushLocked()
	}
}

// flushLocked delivers queued chunks, then End or Closed, to the attached
// consumers. A terminal notification detaches the consumers it reached, so
// every consumer observes it at most once and one attached later still
// learns the stream's fate. Called with s.mu held; the lock is dropped
// around each callback. Reentrant calls (a callback attaching, resuming or
// unshifting) return immediately and leave delivery to the outer call.
func (s *Stream) flushLocked() {
	if s.dispatching {
		return
	}
	s.dispatching = true
	for !s.paused && len(s.consumers) > 0 {
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			targets := append([]Consumer(nil), s.consumers...)
			s.mu.Unlock()
			for _, c := range targets {
				c.Data(chunk)
			}
			s.mu.Lock()
			continue
		}
		if !s.ended && !s.closed {
			break
		}
		targets := s.consumers
		s.consumers = nil
		ended, cause := s.ended, s.closeErr
		s.mu.Unlock()
		for _, c := range targets {
			if ended {
				c.End()
			} else {
				c.Closed(cause)
			}
		}
		s.mu.Lock()
	}
	s.dispatching = false
}
