package mvingest

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/go-uuid"
)

// unsafeFilenameChars are characters that are either path-meaningful or
// refused by common filesystems.
const unsafeFilenameChars = `<>:"/\|?*` + "\x00"

const fallbackFilename = "unnamed"

// SanitizeFilename replaces path-unsafe and control characters with
// underscores. A name that sanitizes away entirely becomes a fixed
// placeholder, the upload still has to land somewhere.
func SanitizeFilename(filename string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFilenameChars, r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, filename)

	sanitized = strings.TrimSpace(sanitized)

	if sanitized == "" || strings.Trim(sanitized, "._") == "" {
		return fallbackFilename
	}

	return sanitized
}

// StoredFilename builds the collision-resistant on-disk name for an
// artifact: a random token plus a millisecond timestamp in front of the
// sanitized original name, so re-uploading the same file never clobbers a
// prior artifact.
func StoredFilename(originalName string) string {
	token, err := uuid.GenerateUUID()
	if err != nil {
		// GenerateUUID only fails when the system entropy source is
		// broken; timestamp alone still keeps names unique enough.
		token = "00000000"
	}

	return fmt.Sprintf("%s_%d_%s", token[:8], time.Now().UnixMilli(), SanitizeFilename(originalName))
}
