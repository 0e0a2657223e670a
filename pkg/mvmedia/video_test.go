package mvmedia

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// fakeFFProbe writes a shell script that prints canned ffprobe JSON, so the
// extractor can be exercised without ffprobe installed.
func fakeFFProbe(t *testing.T, output string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\ncat <<'EOF'\n" + output + "\nEOF\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))

	return path
}

func TestVideoExtractorFillsStreamAttributes(t *testing.T) {
	probeJSON := `{
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "bit_rate": "4000000", "r_frame_rate": "30000/1001"},
    {"codec_type": "audio", "codec_name": "aac", "bit_rate": "128000", "sample_rate": "44100"}
  ],
  "format": {"duration": "12.5", "tags": {"creation_time": "2024-06-15T10:30:00Z"}}
}`

	extractor := &VideoExtractor{FFProbePath: fakeFFProbe(t, probeJSON)}

	var attrs mvmodel.MediaMetadata
	extractor.Extract("/ignored/by/fake.mp4", &attrs)

	require.NotNil(t, attrs.Duration)
	require.InDelta(t, 12.5, *attrs.Duration, 0.001)

	require.NotNil(t, attrs.VideoCodec)
	require.Equal(t, "h264", *attrs.VideoCodec)
	require.NotNil(t, attrs.Width)
	require.Equal(t, 1920, *attrs.Width)
	require.NotNil(t, attrs.Height)
	require.Equal(t, 1080, *attrs.Height)
	require.NotNil(t, attrs.VideoBitrate)
	require.Equal(t, int64(4000000), *attrs.VideoBitrate)
	require.NotNil(t, attrs.FrameRate)
	require.InDelta(t, 29.97, *attrs.FrameRate, 0.01)

	require.NotNil(t, attrs.AudioCodec)
	require.Equal(t, "aac", *attrs.AudioCodec)
	require.NotNil(t, attrs.AudioBitrate)
	require.Equal(t, int64(128000), *attrs.AudioBitrate)
	require.NotNil(t, attrs.SampleRate)
	require.Equal(t, 44100, *attrs.SampleRate)

	require.NotNil(t, attrs.TakenAt)
	require.True(t, attrs.TakenAt.Equal(time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)))
}

func TestVideoExtractorSparseProbeOutput(t *testing.T) {
	extractor := &VideoExtractor{FFProbePath: fakeFFProbe(t, `{"streams": [], "format": {}}`)}

	var attrs mvmodel.MediaMetadata
	extractor.Extract("/ignored.mp4", &attrs)

	require.Nil(t, attrs.Duration)
	require.Nil(t, attrs.VideoCodec)
	require.Nil(t, attrs.TakenAt)
}

func TestVideoExtractorProbeFailure(t *testing.T) {
	extractor := &VideoExtractor{FFProbePath: "/no/such/ffprobe"}

	var attrs mvmodel.MediaMetadata
	extractor.Extract("/ignored.mp4", &attrs)

	require.Nil(t, attrs.Duration)
	require.Nil(t, attrs.VideoCodec)
}

func TestParseFrameRate(t *testing.T) {
	fps, ok := parseFrameRate("30/1")
	require.True(t, ok)
	require.InDelta(t, 30.0, fps, 0.001)

	fps, ok = parseFrameRate("30000/1001")
	require.True(t, ok)
	require.InDelta(t, 29.97, fps, 0.01)

	_, ok = parseFrameRate("0/0")
	require.False(t, ok)

	_, ok = parseFrameRate("not-a-rate")
	require.False(t, ok)
}
