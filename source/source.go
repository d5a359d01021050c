// Package source models chunked input delivery with attachable consumers,
// pause/flow control, and re-injection of unconsumed data. It is the
// collaborator the line reader borrows a source through.
package source

// Consumer receives deliveries from a Source. Exactly one of End or Closed
// is observed after the last Data call; methods are invoked in arrival
// order and never concurrently.
type Consumer interface {
	// Data delivers one chunk. The chunk must not be retained past the
	// call without copying.
	Data(chunk []byte)

	// End signals that no more data will ever arrive, without an error.
	End()

	// Closed signals the source became unusable before a graceful end.
	// err is the underlying cause, or nil when the source was simply
	// closed.
	Closed(err error)
}

// Source delivers chunks to attached consumers.
type Source interface {
	// Attach registers a consumer. If the source is flowing, any data
	// buffered so far is delivered before Attach returns.
	Attach(c Consumer)

	// Detach removes a previously attached consumer. Unknown consumers
	// are ignored.
	Detach(c Consumer)

	// DetachAll atomically removes every attached consumer and returns
	// them in attachment order.
	DetachAll() []Consumer

	// Paused reports whether delivery is currently suspended.
	Paused() bool

	// Pause suspends delivery; arriving data is buffered.
	Pause()

	// Resume lifts a pause and delivers any buffered data in order.
	Resume()

	// Unshift puts chunk at the front of the delivery queue so it is the
	// next data any consumer observes.
	Unshift(chunk []byte)

	// TextMode reports whether results read from this source should be
	// consumed as decoded text rather than raw bytes.
	TextMode() bool
}
