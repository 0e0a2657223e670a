package mvingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "clean name untouched", in: "vacation_2024.jpg", expected: "vacation_2024.jpg"},
		{name: "path separators replaced", in: "a/b\\c.jpg", expected: "a_b_c.jpg"},
		{name: "shell-hostile chars replaced", in: `<movie>:"clip"|?.mp4`, expected: "_movie___clip___.mp4"},
		{name: "control chars replaced", in: "pic\x00\x1f.png", expected: "pic__.png"},
		{name: "surrounding whitespace trimmed", in: "  photo.jpg  ", expected: "photo.jpg"},
		{name: "empty name falls back", in: "", expected: "unnamed"},
		{name: "only dots and underscores falls back", in: "..__", expected: "unnamed"},
		{name: "unicode preserved", in: "日本語の写真.jpg", expected: "日本語の写真.jpg"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, SanitizeFilename(test.in))
		})
	}
}

func TestStoredFilenameIsUniqueAndKeepsName(t *testing.T) {
	first := StoredFilename("cat.jpg")
	second := StoredFilename("cat.jpg")

	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(first, "_cat.jpg"))
	require.True(t, strings.HasSuffix(second, "_cat.jpg"))
}

func TestStoredFilenameSanitizes(t *testing.T) {
	stored := StoredFilename("my/evil\\name.jpg")
	require.True(t, strings.HasSuffix(stored, "_my_evil_name.jpg"))
	require.NotContains(t, stored, "/")
	require.NotContains(t, stored, "\\")
}
