package mvmedia

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// fingerprintBufSize is the read buffer used while digesting a file, so
// arbitrarily large artifacts never get pulled into memory whole.
const fingerprintBufSize = 8 * 1024

// FileChecksum streams the file through SHA-256 and returns the hex digest.
// The digest is the artifact's content fingerprint stored on its metadata
// row.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, fingerprintBufSize)

	if _, err := io.CopyBuffer(hasher, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
