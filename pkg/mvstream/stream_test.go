package mvstream

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestArtifact(t *testing.T, size int) string {
	t.Helper()

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := filepath.Join(t.TempDir(), "artifact.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))

	return path
}

func TestReadChunkPacedPull(t *testing.T) {
	path := writeTestArtifact(t, 1000)

	chunk, err := ReadChunk(path, 0, 400)
	require.NoError(t, err)
	require.Len(t, chunk, 400)
	require.Equal(t, byte(0), chunk[0])

	chunk, err = ReadChunk(path, 400, 400)
	require.NoError(t, err)
	require.Len(t, chunk, 400)
	require.Equal(t, byte(400%251), chunk[0])

	// The tail read is short.
	chunk, err = ReadChunk(path, 800, 400)
	require.NoError(t, err)
	require.Len(t, chunk, 200)
}

func TestReadChunkPastEndSignalsEOF(t *testing.T) {
	path := writeTestArtifact(t, 100)

	_, err := ReadChunk(path, 100, 50)
	require.Equal(t, io.EOF, err)

	_, err = ReadChunk(path, 5000, 50)
	require.Equal(t, io.EOF, err)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		size     int64
		expected ByteRange
	}{
		{name: "absent header means full file", header: "", size: 1000, expected: ByteRange{Start: 0, End: 999, Total: 1000}},
		{name: "closed range", header: "bytes=100-199", size: 1000, expected: ByteRange{Start: 100, End: 199, Total: 1000}},
		{name: "open ended range", header: "bytes=500-", size: 1000, expected: ByteRange{Start: 500, End: 999, Total: 1000}},
		{name: "end clamped to size", header: "bytes=900-5000", size: 1000, expected: ByteRange{Start: 900, End: 999, Total: 1000}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := ParseRange(test.header, test.size)
			require.NoError(t, err)
			require.Equal(t, test.expected, r)
		})
	}
}

func TestParseRangeInvalid(t *testing.T) {
	invalid := []string{
		"chunks=0-100",
		"bytes=abc-100",
		"bytes=100",
		"bytes=-100--50",
		"bytes=200-100",
	}

	for _, header := range invalid {
		_, err := ParseRange(header, 1000)
		require.ErrorIs(t, err, ErrInvalidRange, "header %q", header)
	}

	// Start at or past the end is unsatisfiable.
	_, err := ParseRange("bytes=1000-", 1000)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseRangeEmptyFile(t *testing.T) {
	// No Range header on a zero-byte file serves the empty body with an
	// unsatisfied Content-Range instead of "bytes 0--1/0".
	r, err := ParseRange("", 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), r.ChunkSize())
	require.Equal(t, "bytes */0", r.ContentRange())

	// An explicit range can never be satisfied by an empty file.
	_, err = ParseRange("bytes=0-", 0)
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = ParseRange("bytes=0-99", 0)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestWriteRangeEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	r, err := ParseRange("", 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRange(context.Background(), &buf, path, r))
	require.Zero(t, buf.Len())
}

func TestContentRange(t *testing.T) {
	r := ByteRange{Start: 100, End: 199, Total: 1000}
	require.Equal(t, "bytes 100-199/1000", r.ContentRange())
	require.Equal(t, int64(100), r.ChunkSize())
}

func TestWriteRange(t *testing.T) {
	path := writeTestArtifact(t, 1000)

	r, err := ParseRange("bytes=100-199", 1000)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRange(context.Background(), &buf, path, r))
	require.Equal(t, 100, buf.Len())
	require.Equal(t, byte(100%251), buf.Bytes()[0])
}

func TestWriteRangeCanceledContext(t *testing.T) {
	path := writeTestArtifact(t, 100000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := WriteRange(ctx, &buf, path, ByteRange{Start: 0, End: 99999, Total: 100000})
	require.ErrorIs(t, err, context.Canceled)
}
