// Package linebuffer accumulates decoded Unicode code points for a single
// line and serializes them on demand. It knows nothing about where the
// bytes came from.
package linebuffer

// Buffer is an ordered sequence of code points with a serialization mode
// fixed at construction. Editing granularity is always one code point,
// regardless of mode.
type Buffer struct {
	runes []rune
	text  bool
}

// New returns an empty buffer. When text is true the final line is meant to
// be consumed as a decoded string, otherwise as raw bytes.
func New(text bool) *Buffer {
	return &Buffer{text: text}
}

// Append adds one decoded code point to the end of the buffer.
func (b *Buffer) Append(r rune) {
	b.runes = append(b.runes, r)
}

// EraseLast removes the most recently appended code point.
// A multi-byte code point is removed as a single unit.
// Erasing an empty buffer is a no-op.
func (b *Buffer) EraseLast() {
	if len(b.runes) == 0 {
		return
	}
	b.runes = b.runes[:len(b.runes)-1]
}

// Len returns the number of code points currently buffered.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// TakeLine returns the buffered content as a Line and clears the buffer.
func (b *Buffer) TakeLine() Line {
	line := Line{runes: b.runes, text: b.text}
	b.runes = nil
	return line
}

// Line is the serialized result of one acquisition.
type Line struct {
	runes []rune
	text  bool
}

// Text reports whether the caller asked for decoded-text output.
func (l Line) Text() bool {
	return l.text
}

// String returns the line as decoded text.
func (l Line) String() string {
	return string(l.runes)
}

// Bytes returns the line in its byte encoding (UTF-8).
func (l Line) Bytes() []byte {
	return []byte(string(l.runes))
}

// Len returns the number of code points in the line.
func (l Line) Len() int {
	return len(l.runes)
}
