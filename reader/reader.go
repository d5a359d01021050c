// Package reader acquires exactly one line from a shared input source. For
// the duration of a read it takes exclusive ownership of the source's data
// delivery and, when the source is an interactive terminal, of its raw-mode
// setting; both are handed back unchanged on every exit path, with any
// bytes that followed the line re-injected for the next consumer.
package reader

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/bulga138/renglon/linebuffer"
	"github.com/bulga138/renglon/source"
	"github.com/bulga138/renglon/terminal"
)

const (
	codeCancel = 0x03 // ^C
	codeBS     = 0x08 // ^H, sent as backspace by some terminals
	codeDEL    = 0x7f
)

var (
	// ErrCancelled is returned when the interrupt byte is read.
	ErrCancelled = errors.New("read cancelled")

	// ErrSourceClosed is returned when the source is closed, without a
	// reported error, before a line could be completed.
	ErrSourceClosed = errors.New("stream closed before a line could be read")
)

type state int

const (
	stateIdle state = iota
	stateIntercepting
	stateReading
	stateCompleting
	stateResolved
	stateRejected
)

// Read acquires one line from src and blocks until a delimiter ('\r' or
// '\n', interchangeably), a graceful end of input, a cancellation byte, or
// a source failure settles the outcome. The returned line excludes the
// delimiter; whatever followed it in the same chunk is re-injected into src
// so the next consumer observes it first.
//
// Read is single-shot: each call performs one acquisition. Concurrent
// reads against the same source are a usage error.
func Read(src source.Source) (linebuffer.Line, error) {
	a := &acquisition{
		src:  src,
		buf:  linebuffer.New(src.TextMode()),
		done: make(chan struct{}),
	}
	return a.run()
}

// acquisition is the engine for one read: a state machine driven by the
// source's delivery events. It is itself the consumer installed on the
// source while the read is in flight.
type acquisition struct {
	mu    sync.Mutex
	src   source.Source
	buf   *linebuffer.Buffer
	dec   linebuffer.Decoder
	guard terminal.Guard
	snap  snapshot
	state state
	line  linebuffer.Line
	err   error
	done  chan struct{}
}

func (a *acquisition) run() (linebuffer.Line, error) {
	a.mu.Lock()
	a.state = stateIntercepting
	a.snap = capture(a.src)
	if err := a.guard.Engage(a.src); err != nil {
		a.complete(linebuffer.Line{}, nil, errors.WithMessage(err, "enabling raw mode"))
		a.mu.Unlock()
		return a.line, a.err
	}
	a.state = stateReading
	a.mu.Unlock()

	// Lift any pause first: with every consumer detached nothing can be
	// delivered yet, and the engine must see data even on a source that
	// was paused at entry. Attaching then starts the flow.
	a.src.Resume()
	a.src.Attach(a)

	<-a.done
	return a.line, a.err
}

// Data implements source.Consumer. Bytes are decoded into code points one
// at a time, strictly in arrival order.
func (a *acquisition) Data(chunk []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != stateReading {
		return
	}
	a.scan(chunk)
}

// End implements source.Consumer. A graceful end completes the line with
// whatever was accumulated, exactly as a delimiter would.
func (a *acquisition) End() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != stateReading {
		return
	}
	// Drain code points the decoder may still be carrying before taking
	// the line.
	if a.scan(nil) {
		return
	}
	a.complete(a.buf.TakeLine(), nil, nil)
}

// scan decodes and dispatches code points from chunk, consuming any bytes
// carried over from earlier chunks first. A nil chunk drains only the
// carried-over bytes. Reports whether the acquisition completed. Called
// with a.mu held.
func (a *acquisition) scan(chunk []byte) bool {
	off := 0
	for {
		r, n, ok := a.dec.Next(chunk[off:])
		off += n
		if !ok {
			// Ended inside a multi-byte sequence; the decoder keeps
			// the prefix until the next chunk.
			return false
		}
		switch {
		case r == codeCancel:
			a.complete(linebuffer.Line{}, nil, ErrCancelled)
			return true
		case r == codeDEL || r == codeBS:
			a.buf.EraseLast()
		case r == '\r' || r == '\n':
			leftover := append([]byte(nil), chunk[off:]...)
			a.complete(a.buf.TakeLine(), leftover, nil)
			return true
		default:
			a.buf.Append(r)
		}
	}
}

// Closed implements source.Consumer. A forcible close discards any partial
// line and rejects the read.
func (a *acquisition) Closed(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != stateReading {
		return
	}
	if err == nil {
		err = ErrSourceClosed
	}
	a.complete(linebuffer.Line{}, nil, err)
}

// complete settles the outcome. The source is restored and raw mode
// released before the outcome becomes observable, on every path. Called
// with a.mu held.
func (a *acquisition) complete(line linebuffer.Line, leftover []byte, err error) {
	a.state = stateCompleting
	a.snap.restore(a.src, a, leftover)
	if relErr := a.guard.Release(); relErr != nil && err == nil {
		err = errors.WithMessage(relErr, "restoring terminal mode")
	}
	a.line, a.err = line, err
	if err != nil {
		a.state = stateRejected
	} else {
		a.state = stateResolved
	}
	close(a.done)
}
