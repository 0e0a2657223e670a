package mvmedia

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// sniffLen is how many leading bytes the sniffer looks at, which matches
// what http.DetectContentType considers.
const sniffLen = 512

// SniffMimeType classifies a file by its magic bytes, not its name. When
// the content is ambiguous (octet-stream or bare text) it falls back to the
// extension, and when everything fails it reports application/octet-stream.
func SniffMimeType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)

	mimeType := stripMimeParams(http.DetectContentType(buf[:n]))

	switch mimeType {
	case "application/octet-stream", "text/plain":
		// Ambiguous sniff, see if the extension is more specific.
		if byExt := mimeTypeByExtension(path); byExt != "" {
			return byExt
		}
		return mimeType
	default:
		return mimeType
	}
}

// SniffBytes classifies an in-memory prefix of a stream.
func SniffBytes(b []byte) string {
	if len(b) > sniffLen {
		b = b[:sniffLen]
	}

	return stripMimeParams(http.DetectContentType(b))
}

// mimeTypeByExtension resolves a mime type from the filename extension,
// with any parameters (such as charset) stripped. Returns "" when the
// extension is unknown.
func mimeTypeByExtension(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		return ""
	}

	return stripMimeParams(mimeType)
}

func stripMimeParams(mimeType string) string {
	semicolon := strings.Index(mimeType, ";")
	if semicolon == -1 {
		return strings.TrimSpace(mimeType)
	}

	return strings.TrimSpace(mimeType[:semicolon])
}
