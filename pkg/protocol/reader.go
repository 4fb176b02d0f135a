package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// maxPrealloc caps slice pre-allocation for count-prefixed sequences.
// Counts come off the wire untrusted; decoding still proceeds element by
// element so an honest large count succeeds, but a corrupt count cannot
// claim unbounded memory up front.
const maxPrealloc = 4096

// reader provides sequential, forward-only little-endian reads over an
// io.Reader. A short read surfaces as ErrTruncated; any other I/O failure
// wraps ErrTransport.
type reader struct {
	src io.Reader
	buf [8]byte
}

func newReader(src io.Reader) *reader {
	return &reader{src: src}
}

// read fills the scratch buffer with exactly n bytes.
func (r *reader) read(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.src, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return b, nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) int16() (int16, error) {
	v, err := r.uint16()
	return int16(v), err
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) int32() (int32, error) {
	v, err := r.uint32()
	return int32(v), err
}

func (r *reader) float32() (float32, error) {
	v, err := r.uint32()
	return math.Float32frombits(v), err
}

func (r *reader) float64() (float64, error) {
	b, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// cstring reads bytes up to and including the first nul and returns the
// text before it. The bytes must form valid UTF-8.
func (r *reader) cstring() (string, error) {
	raw := make([]byte, 0, 32)
	for {
		b, err := r.byte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		raw = append(raw, b)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: %q", ErrTextDecoding, raw)
	}
	return string(raw), nil
}

// discard consumes and drops n bytes.
func (r *reader) discard(n int) error {
	for n > 0 {
		step := n
		if step > len(r.buf) {
			step = len(r.buf)
		}
		if _, err := r.read(step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// count reads a count-prefixed sequence length and validates it as a
// decode-time bound. Negative counts are structural garbage; the returned
// capacity is clamped so pre-allocation stays bounded.
func (r *reader) count() (n int, capacity int, err error) {
	c, err := r.int32()
	if err != nil {
		return 0, 0, err
	}
	if c < 0 {
		return 0, 0, fmt.Errorf("%w: negative sequence count %d", ErrStructuralMismatch, c)
	}
	capacity = int(c)
	if capacity > maxPrealloc {
		capacity = maxPrealloc
	}
	return int(c), capacity, nil
}
