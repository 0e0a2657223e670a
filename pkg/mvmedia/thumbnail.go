package mvmedia

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// DefaultThumbnailDimension bounds both sides of a generated preview.
const DefaultThumbnailDimension = 400

// videoPreviewSeekSeconds and videoPreviewWindowSeconds control where the
// animated video preview is sampled from: skip the first second (often
// black), then grab a short window.
const (
	videoPreviewSeekSeconds   = 1
	videoPreviewWindowSeconds = 3
)

// ThumbnailGenerator produces bounded-dimension previews and caches them on
// disk under {owner}/thumbnails. Photos are resized in process, videos go
// through ffmpeg and come back as an animated webp.
type ThumbnailGenerator struct {
	VaultDir     string
	MaxDimension int
	Timeout      time.Duration

	// FFMpegPath overrides the binary looked up on PATH. Used by tests.
	FFMpegPath string
}

func NewThumbnailGenerator(vaultDir string) *ThumbnailGenerator {
	return &ThumbnailGenerator{
		VaultDir:     vaultDir,
		MaxDimension: DefaultThumbnailDimension,
		Timeout:      subprocessTimeout,
	}
}

// Path returns where the thumbnail for media lives, whether or not it has
// been generated yet.
func (g *ThumbnailGenerator) Path(owner *mvmodel.User, media *mvmodel.Media) string {
	return filepath.Join(g.VaultDir, owner.UUID, "thumbnails", media.ThumbnailName())
}

// Generate returns the path of the cached thumbnail, creating it on first
// request. No partial file is ever left at the final path: generation
// writes to a temp name and renames into place.
func (g *ThumbnailGenerator) Generate(owner *mvmodel.User, media *mvmodel.Media) (string, error) {
	thumbPath := g.Path(owner, media)

	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		return "", errors.Wrap(err, "unable to create thumbnails directory")
	}

	switch media.MediaKind {
	case mvmodel.MediaKindPhoto:
		if err := g.generatePhotoThumbnail(media.Filepath, thumbPath); err != nil {
			return "", err
		}
	case mvmodel.MediaKindVideo:
		if err := g.generateVideoThumbnail(media.Filepath, thumbPath); err != nil {
			return "", err
		}
	default:
		return "", errors.Errorf("media kind %s has no thumbnail", media.MediaKind)
	}

	return thumbPath, nil
}

func (g *ThumbnailGenerator) generatePhotoThumbnail(artifactPath, thumbPath string) error {
	img, err := imaging.Open(artifactPath, imaging.AutoOrientation(true))
	if err != nil {
		return errors.Wrapf(err, "unable to decode %s", artifactPath)
	}

	thumb := imaging.Fit(img, g.MaxDimension, g.MaxDimension, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(thumbPath)
	if err != nil {
		// The stored name has an extension imaging can't encode, fall
		// back to jpeg rather than failing the preview.
		format = imaging.JPEG
	}

	tmpPath := thumbPath + ".partial"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "unable to create thumbnail file")
	}

	if err := imaging.Encode(f, thumb, format); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "unable to encode thumbnail for %s", artifactPath)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, thumbPath)
}

func (g *ThumbnailGenerator) generateVideoThumbnail(artifactPath, thumbPath string) error {
	timeout := g.Timeout
	if timeout == 0 {
		timeout = subprocessTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ffmpeg := g.FFMpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	tmpPath := thumbPath + ".partial"

	// Sample a short window early in the video and emit an animated webp
	// scaled to the bound width, height following the aspect ratio.
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-ss", fmt.Sprintf("%d", videoPreviewSeekSeconds),
		"-t", fmt.Sprintf("%d", videoPreviewWindowSeconds),
		"-i", artifactPath,
		"-vf", fmt.Sprintf("scale=%d:-1", g.MaxDimension),
		"-loop", "0",
		"-f", "webp",
		"-y", tmpPath)

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "ffmpeg failed for %s", artifactPath)
	}

	return os.Rename(tmpPath, thumbPath)
}
