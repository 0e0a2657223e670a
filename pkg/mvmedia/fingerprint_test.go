package mvmedia

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileChecksum(t *testing.T) {
	path := writeTestFile(t, "content.bin", []byte("hello media vault"))

	sum, err := FileChecksum(path)
	require.NoError(t, err)
	require.Len(t, sum, 64)

	again, err := FileChecksum(path)
	require.NoError(t, err)
	require.Equal(t, sum, again)
}

func TestFileChecksumDetectsOneByteChange(t *testing.T) {
	first := writeTestFile(t, "a.bin", []byte("hello media vault"))
	second := writeTestFile(t, "b.bin", []byte("hello media vaulT"))

	sumFirst, err := FileChecksum(first)
	require.NoError(t, err)

	sumSecond, err := FileChecksum(second)
	require.NoError(t, err)

	require.NotEqual(t, sumFirst, sumSecond)
}

func TestFileChecksumKnownVector(t *testing.T) {
	path := writeTestFile(t, "empty.bin", []byte{})

	sum, err := FileChecksum(path)
	require.NoError(t, err)

	// SHA-256 of the empty string.
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)
}

func TestFileChecksumMissingFile(t *testing.T) {
	_, err := FileChecksum("/no/such/file")
	require.Error(t, err)
}
