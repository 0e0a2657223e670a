package mvmedia

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	// Register the decoders the dimension pass can run into.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// PhotoExtractor reads image attributes in two passes. The first pass pulls
// pixel dimensions straight out of the container headers, the second walks
// the EXIF block for camera fields. The second pass only fills fields the
// first one left empty.
type PhotoExtractor struct{}

func (e *PhotoExtractor) Extract(path string, attrs *mvmodel.MediaMetadata) {
	e.extractImageInfo(path, attrs)
	e.extractExif(path, attrs)
}

func (e *PhotoExtractor) extractImageInfo(path string, attrs *mvmodel.MediaMetadata) {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("extract photo: unable to open %s: %s", path, err)
		return
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		// Unreadable container. Not fatal, EXIF may still know the size.
		log.Infof("extract photo: no decodable image header in %s: %s", path, err)
		return
	}

	attrs.Width = intPtr(cfg.Width)
	attrs.Height = intPtr(cfg.Height)
}

func (e *PhotoExtractor) extractExif(path string, attrs *mvmodel.MediaMetadata) {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("extract photo: unable to open %s: %s", path, err)
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		// Plenty of images carry no EXIF block at all.
		log.Infof("extract photo: no exif in %s: %s", path, err)
		return
	}

	if make_, err := tagString(x, exif.Make); err == nil {
		attrs.CameraMake = &make_
	}

	if model, err := tagString(x, exif.Model); err == nil {
		attrs.CameraModel = &model
	}

	if lens, err := tagString(x, exif.LensModel); err == nil {
		attrs.LensModel = &lens
	}

	if focal, err := tagRat(x, exif.FocalLength); err == nil {
		s := fmt.Sprintf("%g mm", focal)
		attrs.FocalLength = &s
	}

	if fnum, err := tagRat(x, exif.FNumber); err == nil {
		s := fmt.Sprintf("f/%.1f", fnum)
		attrs.Aperture = &s
	}

	if attrs.Width == nil {
		if w, err := tagInt(x, exif.PixelXDimension); err == nil {
			attrs.Width = &w
		}
	}

	if attrs.Height == nil {
		if h, err := tagInt(x, exif.PixelYDimension); err == nil {
			attrs.Height = &h
		}
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		raw, err := tagString(x, field)
		if err != nil {
			continue
		}
		if taken, ok := parseExifDateTime(raw); ok {
			attrs.TakenAt = &taken
			break
		}
	}
}

func tagString(x *exif.Exif, name exif.FieldName) (string, error) {
	tag, err := x.Get(name)
	if err != nil {
		return "", err
	}

	val, err := tag.StringVal()
	if err != nil {
		return "", err
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return "", fmt.Errorf("empty %s tag", name)
	}

	return val, nil
}

func tagRat(x *exif.Exif, name exif.FieldName) (float64, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}

	num, den, err := tag.Rat2(0)
	if err != nil {
		return 0, err
	}

	if den == 0 {
		return 0, fmt.Errorf("%s has zero denominator", name)
	}

	return float64(num) / float64(den), nil
}

func tagInt(x *exif.Exif, name exif.FieldName) (int, error) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, err
	}

	return tag.Int(0)
}

// exifDateTimeFormats are the capture timestamp renderings seen in the
// wild, tried in order.
var exifDateTimeFormats = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
}

func parseExifDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range exifDateTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func intPtr(v int) *int {
	return &v
}
