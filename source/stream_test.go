package source

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// collector is a test Consumer that records everything it observes.
type collector struct {
	chunks   [][]byte
	ends     int
	closes   int
	closeErr error
}

func (c *collector) Data(chunk []byte) {
	c.chunks = append(c.chunks, append([]byte(nil), chunk...))
}

func (c *collector) End() { c.ends++ }

func (c *collector) Closed(err error) {
	c.closes++
	c.closeErr = err
}

func (c *collector) joined() string {
	var sb strings.Builder
	for _, chunk := range c.chunks {
		sb.Write(chunk)
	}
	return sb.String()
}

func TestStream_DeliversWhileFlowing(t *testing.T) {
	s := &Stream{}
	c := &collector{}
	s.Attach(c)
	s.push([]byte("hello "))
	s.push([]byte("world"))
	if got := c.joined(); got != "hello world" {
		t.Errorf("delivered %q, want %q", got, "hello world")
	}
}

func TestStream_BuffersWhilePaused(t *testing.T) {
	s := &Stream{}
	c := &collector{}
	s.Attach(c)
	s.Pause()
	if !s.Paused() {
		t.Fatal("Paused() = false after Pause")
	}
	s.push([]byte("a"))
	s.push([]byte("b"))
	if len(c.chunks) != 0 {
		t.Fatalf("paused stream delivered %v", c.chunks)
	}
	s.Resume()
	want := [][]byte{[]byte("a"), []byte("b")}
	if diff := cmp.Diff(want, c.chunks); diff != "" {
		t.Errorf("chunks after resume mismatch (-want +got):\n%s", diff)
	}
}

func TestStream_BuffersWithoutConsumer(t *testing.T) {
	s := &Stream{}
	s.push([]byte("early"))
	c := &collector{}
	s.Attach(c)
	if got := c.joined(); got != "early" {
		t.Errorf("attach delivered %q, want %q", got, "early")
	}
}

func TestStream_UnshiftIsObservedFirst(t *testing.T) {
	s := &Stream{}
	s.Pause()
	s.push([]byte("second"))
	s.Unshift([]byte("first"))
	c := &collector{}
	s.Attach(c)
	s.Resume()
	want := [][]byte{[]byte("first"), []byte("second")}
	if diff := cmp.Diff(want, c.chunks); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestStream_DetachAllReturnsInOrder(t *testing.T) {
	s := &Stream{}
	c1, c2 := &collector{}, &collector{}
	s.Attach(c1)
	s.Attach(c2)
	detached := s.DetachAll()
	if len(detached) != 2 || detached[0] != Consumer(c1) || detached[1] != Consumer(c2) {
		t.Fatalf("DetachAll() returned %d consumers in wrong order", len(detached))
	}
	s.push([]byte("nobody home"))
	if len(c1.chunks)+len(c2.chunks) != 0 {
		t.Error("detached consumers observed data")
	}
}

func TestStream_EndAfterPendingData(t *testing.T) {
	s := &Stream{}
	s.push([]byte("tail"))
	s.finish()
	c := &collector{}
	s.Attach(c)
	if got := c.joined(); got != "tail" {
		t.Errorf("delivered %q before end, want %q", got, "tail")
	}
	if c.ends != 1 {
		t.Errorf("ends = %d, want 1", c.ends)
	}
}

func TestStream_CloseNotifiesEachConsumerOnce(t *testing.T) {
	cause := errors.New("device gone")
	s := &Stream{}
	c1 := &collector{}
	s.Attach(c1)
	s.fail(cause)
	if c1.closes != 1 || !errors.Is(c1.closeErr, cause) {
		t.Fatalf("closes = %d, err = %v", c1.closes, c1.closeErr)
	}
	// A consumer attached after the close still learns the fate.
	c2 := &collector{}
	s.Attach(c2)
	if c2.closes != 1 || !errors.Is(c2.closeErr, cause) {
		t.Errorf("late consumer: closes = %d, err = %v", c2.closes, c2.closeErr)
	}
	if c1.closes != 1 {
		t.Errorf("first consumer re-notified: closes = %d", c1.closes)
	}
}

func TestStream_EndAndCloseDoNotConflate(t *testing.T) {
	s := &Stream{}
	c := &collector{}
	s.Attach(c)
	s.finish()
	s.fail(errors.New("late"))
	if c.ends != 1 || c.closes != 0 {
		t.Errorf("ends = %d, closes = %d, want 1, 0", c.ends, c.closes)
	}

	s2 := &Stream{}
	c2 := &collector{}
	s2.Attach(c2)
	s2.fail(nil)
	s2.finish()
	if c2.ends != 0 || c2.closes != 1 {
		t.Errorf("ends = %d, closes = %d, want 0, 1", c2.ends, c2.closes)
	}
	if c2.closeErr != nil {
		t.Errorf("closeErr = %v, want nil for a plain close", c2.closeErr)
	}
}

func TestStream_DataAfterEndIsDropped(t *testing.T) {
	s := &Stream{}
	c := &collector{}
	s.Attach(c)
	s.finish()
	s.push([]byte("straggler"))
	if len(c.chunks) != 0 {
		t.Errorf("post-end data delivered: %v", c.chunks)
	}
}

// chanConsumer exposes deliveries as channels for pump-driven tests.
type chanConsumer struct {
	data  chan []byte
	ended chan struct{}
}

func newChanConsumer() *chanConsumer {
	return &chanConsumer{
		data:  make(chan []byte, 8),
		ended: make(chan struct{}, 1),
	}
}

func (c *chanConsumer) Data(chunk []byte) {
	c.data <- append([]byte(nil), chunk...)
}

func (c *chanConsumer) End() { c.ended <- struct{}{} }

func (c *chanConsumer) Closed(error) {}

func TestNewStream_PumpsReaderToEnd(t *testing.T) {
	s, err := NewStream(strings.NewReader("pumped"))
	if err != nil {
		t.Fatal(err)
	}
	c := newChanConsumer()
	s.Attach(c)

	select {
	case chunk := <-c.data:
		if string(chunk) != "pumped" {
			t.Errorf("chunk = %q, want %q", chunk, "pumped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for data")
	}
	select {
	case <-c.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for graceful end")
	}
}

func TestStream_TextMode(t *testing.T) {
	s := &Stream{}
	if s.TextMode() {
		t.Error("TextMode() = true by default")
	}
	s.SetTextMode(true)
	if !s.TextMode() {
		t.Error("TextMode() = false after SetTextMode(true)")
	}
}
