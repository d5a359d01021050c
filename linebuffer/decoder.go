package linebuffer

import "unicode/utf8"

// Decoder decodes a byte stream into code points one at a time, carrying an
// incomplete trailing sequence over to the next chunk. The zero value is
// ready to use.
type Decoder struct {
	partial []byte
}

// Next decodes the next code point from p, consuming any bytes carried over
// from a previous chunk first. It returns the code point, the number of
// bytes consumed from p, and ok=false when p ended inside a multi-byte
// sequence (the partial bytes are retained for the next call).
//
// Bytes that are not valid UTF-8 decode as utf8.RuneError with a width of
// one byte, matching the standard library's convention.
func (d *Decoder) Next(p []byte) (r rune, n int, ok bool) {
	if len(d.partial) > 0 {
		// An earlier invalid sequence can leave already-complete bytes
		// behind; drain those before consuming from p.
		if utf8.FullRune(d.partial) {
			return d.takePartial(), 0, true
		}
		for n < len(p) {
			d.partial = append(d.partial, p[n])
			n++
			if utf8.FullRune(d.partial) {
				return d.takePartial(), n, true
			}
		}
		return 0, n, false
	}
	if len(p) == 0 {
		return 0, 0, false
	}
	if !utf8.FullRune(p) {
		d.partial = append(d.partial, p...)
		return 0, len(p), false
	}
	r, n = utf8.DecodeRune(p)
	return r, n, true
}

// takePartial decodes one code point from the carried-over bytes and keeps
// whatever the decode did not consume.
func (d *Decoder) takePartial() rune {
	r, size := utf8.DecodeRune(d.partial)
	d.partial = append(d.partial[:0], d.partial[size:]...)
	return r
}

// Pending reports whether the decoder is holding an incomplete sequence.
func (d *Decoder) Pending() bool {
	return len(d.partial) > 0
}
