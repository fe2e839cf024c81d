// Package frame accumulates a byte stream into newline-terminated lines.
//
// The framer is the receive half of the relay's line protocol: one byte in,
// at most one completed line out, O(1) work per byte, never blocking. CR
// bytes are discarded outright; LF completes a line. A line that would reach
// the buffer capacity before its terminator is discarded in full — the rest
// of the oversized segment, terminator included, is swallowed so recovery is
// clean for the next line.
package frame

// DefaultCap matches the 256-byte line buffers of the deployed boards.
const DefaultCap = 256

type Framer struct {
	buf        []byte
	pos        int
	discarding bool
	overflows  uint32
}

// New creates a framer holding lines of up to capacity-1 payload bytes.
func New(capacity int) *Framer {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Framer{buf: make([]byte, capacity)}
}

// Feed consumes one byte. ok reports a completed line; the returned slice
// aliases the internal buffer and is only valid until the next Feed, so
// callers that keep it must copy. Zero-length lines are reported — dropping
// empties is the relay core's call, not the framer's.
func (f *Framer) Feed(b byte) (line []byte, ok bool) {
	switch b {
	case '\r':
		return nil, false
	case '\n':
		if f.discarding {
			f.discarding = false
			return nil, false
		}
		line = f.buf[:f.pos]
		f.pos = 0
		return line, true
	default:
		if f.discarding {
			return nil, false
		}
		if f.pos >= len(f.buf)-1 {
			// Overflow: drop the whole in-progress line, swallow the rest
			// of the segment, recover at the next terminator.
			f.pos = 0
			f.discarding = true
			f.overflows++
			return nil, false
		}
		f.buf[f.pos] = b
		f.pos++
		return nil, false
	}
}

// Overflows counts discarded oversized lines since creation.
func (f *Framer) Overflows() uint32 { return f.overflows }

// Pending reports buffered bytes of the current unterminated line.
func (f *Framer) Pending() int { return f.pos }

// Reset drops any in-progress line.
func (f *Framer) Reset() {
	f.pos = 0
	f.discarding = false
}

// Cap reports the buffer capacity (max payload is Cap-1).
func (f *Framer) Cap() int { return len(f.buf) }
