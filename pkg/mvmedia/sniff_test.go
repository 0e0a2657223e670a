package mvmedia

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestSniffMimeTypeMagicBytesWin(t *testing.T) {
	// PNG magic with a lying extension: content wins.
	path := writeTestFile(t, "notatext.txt", append(pngMagic, make([]byte, 64)...))
	require.Equal(t, "image/png", SniffMimeType(path))
}

func TestSniffMimeTypeExtensionFallback(t *testing.T) {
	// Truncated jpeg bytes sniff as octet-stream, the extension breaks
	// the tie.
	path := writeTestFile(t, "photo.jpg", []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe})
	require.Equal(t, "image/jpeg", SniffMimeType(path))
}

func TestSniffMimeTypeUnknownEverything(t *testing.T) {
	path := writeTestFile(t, "mystery.zzz", []byte{0x00, 0x01, 0x02, 0x03})
	require.Equal(t, "application/octet-stream", SniffMimeType(path))
}

func TestSniffMimeTypeMissingFile(t *testing.T) {
	require.Equal(t, "application/octet-stream", SniffMimeType("/no/such/file"))
}

func TestSniffBytes(t *testing.T) {
	require.Equal(t, "image/png", SniffBytes(append(pngMagic, make([]byte, 64)...)))
	require.Equal(t, "image/jpeg", SniffBytes([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}))
}
