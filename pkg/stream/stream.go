package stream

import (
	"io"
)

// ByteSource is the sequential reader the decoder pulls from. Nested
// containers are decoded through a BufferSource over the parent payload,
// the top level through a FileSource over the stream handle.
type ByteSource interface {
	// Read reads up to len(p) bytes into p. It returns the number of bytes
	// read and io.EOF once the source is exhausted. Short reads are not an
	// error at this layer.
	Read(p []byte) (n int, err error)

	// EOF reports whether the source has no further bytes.
	EOF() bool
}

// FileSource adapts an io.Reader (typically an *os.File) to a ByteSource.
type FileSource struct {
	r   io.Reader
	eof bool
}

// NewFileSource wraps r in a FileSource.
func NewFileSource(r io.Reader) *FileSource {
	return &FileSource{r: r}
}

// Read reads from the underlying reader and latches EOF when it is reached.
func (s *FileSource) Read(p []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	n, err := s.r.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

// EOF reports whether a previous Read already hit the end of the reader.
func (s *FileSource) EOF() bool {
	return s.eof
}

// BufferSource reads sequentially from a borrowed byte slice. The slice is
// not copied; the caller must keep it alive for the lifetime of the source.
type BufferSource struct {
	data []byte
	pos  int
}

// NewBufferSource wraps data in a BufferSource positioned at the start.
func NewBufferSource(data []byte) *BufferSource {
	return &BufferSource{data: data}
}

// Read copies up to len(p) bytes from the current position, clamping the
// request to the bytes remaining, and advances the cursor by the amount read.
func (s *BufferSource) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

// EOF reports whether the cursor has reached the end of the slice.
func (s *BufferSource) EOF() bool {
	return s.pos >= len(s.data)
}

// Remaining returns the number of unread bytes in the buffer.
func (s *BufferSource) Remaining() int {
	return len(s.data) - s.pos
}
