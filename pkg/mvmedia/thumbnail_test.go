package mvmedia

import (
	"os"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

func TestGeneratePhotoThumbnailBoundsDimensions(t *testing.T) {
	vaultDir := t.TempDir()
	gen := NewThumbnailGenerator(vaultDir)

	owner := &mvmodel.User{ID: 1, UUID: "owner-uuid"}
	media := &mvmodel.Media{
		ID:        1,
		Filename:  "big.png",
		Filepath:  writeTestPNG(t, "big.png", 1600, 900),
		MediaKind: mvmodel.MediaKindPhoto,
	}

	thumbPath, err := gen.Generate(owner, media)
	require.NoError(t, err)
	require.Equal(t, gen.Path(owner, media), thumbPath)

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)

	bounds := thumb.Bounds()
	require.LessOrEqual(t, bounds.Dx(), DefaultThumbnailDimension)
	require.LessOrEqual(t, bounds.Dy(), DefaultThumbnailDimension)

	// Aspect ratio preserved: the wide side hits the bound.
	require.Equal(t, DefaultThumbnailDimension, bounds.Dx())
}

func TestGenerateReturnsCachedThumbnail(t *testing.T) {
	vaultDir := t.TempDir()
	gen := NewThumbnailGenerator(vaultDir)

	owner := &mvmodel.User{ID: 1, UUID: "owner-uuid"}
	media := &mvmodel.Media{
		ID:        1,
		Filename:  "pic.png",
		Filepath:  writeTestPNG(t, "pic.png", 800, 600),
		MediaKind: mvmodel.MediaKindPhoto,
	}

	thumbPath, err := gen.Generate(owner, media)
	require.NoError(t, err)

	firstInfo, err := os.Stat(thumbPath)
	require.NoError(t, err)

	// The source disappearing doesn't matter once the thumbnail is cached.
	require.NoError(t, os.Remove(media.Filepath))

	again, err := gen.Generate(owner, media)
	require.NoError(t, err)
	require.Equal(t, thumbPath, again)

	secondInfo, err := os.Stat(thumbPath)
	require.NoError(t, err)
	require.Equal(t, firstInfo.ModTime(), secondInfo.ModTime())
}

func TestGenerateUnknownKindFails(t *testing.T) {
	gen := NewThumbnailGenerator(t.TempDir())

	owner := &mvmodel.User{ID: 1, UUID: "owner-uuid"}
	media := &mvmodel.Media{
		ID:        1,
		Filename:  "blob.bin",
		Filepath:  "/nowhere/blob.bin",
		MediaKind: mvmodel.MediaKindUnknown,
	}

	_, err := gen.Generate(owner, media)
	require.Error(t, err)
}

func TestVideoThumbnailName(t *testing.T) {
	media := mvmodel.Media{Filename: "abc_123_clip.mp4", MediaKind: mvmodel.MediaKindVideo}
	require.Equal(t, "abc_123_clip.webp", media.ThumbnailName())

	photo := mvmodel.Media{Filename: "pic.jpg", MediaKind: mvmodel.MediaKindPhoto}
	require.Equal(t, "pic.jpg", photo.ThumbnailName())
}
