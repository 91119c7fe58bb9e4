package lingua

import (
	"bytes"
	"errors"
	"sync/atomic"
)

// ErrStreamClosed is returned by reads on a closed Stream.
var ErrStreamClosed = errors.New("stream closed")

// Stream is a caller owned, read-only view over a resolved resource. Streams
// are independent of each other and of the cache: closing one never affects
// another handle or the cached entry.
type Stream struct {
	reader *bytes.Reader
	closed atomic.Bool
}

func newStream(data []byte) *Stream {
	return &Stream{reader: bytes.NewReader(data)}
}

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrStreamClosed
	}
	return s.reader.Read(p)
}

func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if s.closed.Load() {
		return 0, ErrStreamClosed
	}
	return s.reader.ReadAt(p, off)
}

func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed.Load() {
		return 0, ErrStreamClosed
	}
	return s.reader.Seek(offset, whence)
}

// Size returns the total resource length.
func (s *Stream) Size() int64 {
	return s.reader.Size()
}

// Close releases the handle. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closed.Store(true)
	return nil
}
