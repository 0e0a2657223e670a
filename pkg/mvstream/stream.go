package mvstream

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// streamBufSize is the fixed buffer the body copy loop hands to the
// response writer. Memory stays bounded no matter how large the requested
// range is.
const streamBufSize = 8 * 1024

// ErrInvalidRange reports unparseable or unsatisfiable Range headers.
var ErrInvalidRange = errors.New("invalid range")

// ReadChunk seeks to offset and reads up to length bytes for a client-paced
// chunk-pull download. When the offset is at or past the end of the file
// the read comes back empty and io.EOF is returned: that is the terminal
// "done" signal, distinct from a broken read.
func ReadChunk(path string, offset uint64, length int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	n, err := f.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}

	if err == nil || err == io.EOF {
		return nil, io.EOF
	}

	return nil, err
}

// ByteRange is a closed interval of a file of the given total size.
type ByteRange struct {
	Start int64
	End   int64
	Total int64
}

func (r ByteRange) ChunkSize() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range response header value. An empty
// range (a zero-byte file) has no first-last byte pair to report, so it
// renders in the unsatisfied "bytes */N" form.
func (r ByteRange) ContentRange() string {
	if r.ChunkSize() == 0 {
		return fmt.Sprintf("bytes */%d", r.Total)
	}

	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Total)
}

// ParseRange handles the bytes=<start>-<end> subset of RFC 7233, with an
// open end meaning "through the last byte". An absent header means the full
// file; the response is still served as a range response so clients learn
// the endpoint is seekable.
func ParseRange(header string, size int64) (ByteRange, error) {
	full := ByteRange{Start: 0, End: size - 1, Total: size}

	if header == "" {
		return full, nil
	}

	if size == 0 {
		// Nothing in an empty file satisfies an explicit byte range.
		return ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q of an empty file", header)
	}

	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q", header)
	}

	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q", header)
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q", header)
	}

	end := size - 1
	if s := strings.TrimSpace(endStr); s != "" {
		if end, err = strconv.ParseInt(s, 10, 64); err != nil || end < start {
			return ByteRange{}, errors.Wrapf(ErrInvalidRange, "%q", header)
		}
	}

	if start >= size {
		return ByteRange{}, errors.Wrapf(ErrInvalidRange, "start %d beyond size %d", start, size)
	}

	if end > size-1 {
		end = size - 1
	}

	return ByteRange{Start: start, End: end, Total: size}, nil
}

// WriteRange streams the requested slice of the file to w in fixed-size
// buffers. The copy loop watches ctx so a disconnecting client tears the
// stream down promptly, and the file handle is released on every exit
// path.
func WriteRange(ctx context.Context, w io.Writer, path string, r ByteRange) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(r.Start, io.SeekStart); err != nil {
		return err
	}

	reader := io.LimitReader(f, r.ChunkSize())
	buf := make([]byte, streamBufSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := reader.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
		}

		switch {
		case readErr == io.EOF:
			return nil
		case readErr != nil:
			return readErr
		}
	}
}
