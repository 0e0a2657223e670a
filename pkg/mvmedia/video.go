package mvmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
)

// VideoExtractor shells out to ffprobe for stream and container info. Probe
// failures are non-fatal: the artifact is still cataloged, its metadata row
// just stays sparse.
type VideoExtractor struct {
	// Timeout bounds the ffprobe invocation.
	Timeout time.Duration

	// FFProbePath overrides the binary looked up on PATH. Used by tests.
	FFProbePath string
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BitRate    string `json:"bit_rate"`
	RFrameRate string `json:"r_frame_rate"`
	SampleRate string `json:"sample_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	Tags     struct {
		CreationTime string `json:"creation_time"`
	} `json:"tags"`
}

func (e *VideoExtractor) Extract(path string, attrs *mvmodel.MediaMetadata) {
	probe, err := e.probe(path)
	if err != nil {
		log.Errorf("extract video: ffprobe failed for %s: %s", path, err)
		return
	}

	if seconds, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		attrs.Duration = &seconds
	}

	if created, err := time.Parse(time.RFC3339, probe.Format.Tags.CreationTime); err == nil {
		attrs.TakenAt = &created
	}

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if stream.CodecName != "" {
				codec := stream.CodecName
				attrs.VideoCodec = &codec
			}
			if stream.Width > 0 {
				attrs.Width = intPtr(stream.Width)
			}
			if stream.Height > 0 {
				attrs.Height = intPtr(stream.Height)
			}
			if rate, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				attrs.VideoBitrate = &rate
			}
			if fps, ok := parseFrameRate(stream.RFrameRate); ok {
				attrs.FrameRate = &fps
			}
		case "audio":
			if stream.CodecName != "" {
				codec := stream.CodecName
				attrs.AudioCodec = &codec
			}
			if rate, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
				attrs.AudioBitrate = &rate
			}
			if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
				attrs.SampleRate = &rate
			}
		}
	}
}

func (e *VideoExtractor) probe(path string) (*ffprobeOutput, error) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = subprocessTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ffprobe := e.FFProbePath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}

	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return nil, err
	}

	return &probe, nil
}

// parseFrameRate turns ffprobe's rational "num/den" rendering into frames
// per second, guarding against a zero denominator.
func parseFrameRate(s string) (float64, bool) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return 0, false
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, false
	}

	return n / d, true
}
