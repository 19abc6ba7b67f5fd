package media

import "io"

// Section returns a reader over length bytes starting at offset. The reader
// shares r and must not outlive it.
func Section(r io.ReaderAt, offset, length int64) *io.SectionReader {
	return io.NewSectionReader(r, offset, length)
}

// CountingReader reports cumulative bytes read through onRead.
type CountingReader struct {
	r      io.Reader
	n      int64
	onRead func(total int64)
}

// NewCountingReader wraps r; onRead may be nil.
func NewCountingReader(r io.Reader, onRead func(total int64)) *CountingReader {
	return &CountingReader{r: r, onRead: onRead}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.onRead != nil {
			c.onRead(c.n)
		}
	}
	return n, err
}

// Count returns the bytes read so far.
func (c *CountingReader) Count() int64 { return c.n }
