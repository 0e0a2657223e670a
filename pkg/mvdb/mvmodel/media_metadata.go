package mvmodel

import "time"

// MediaMetadata is the one-to-one attribute row for a Media entry. Every
// attribute is optional: an extractor only fills in what it could determine,
// and a nil field just means the probe couldn't tell. Checksum is the
// SHA-256 fingerprint of the artifact's full content.
type MediaMetadata struct {
	ID               int        `json:"id"`
	MediaID          int        `json:"media_id"`
	OriginalFilename *string    `json:"original_filename"`
	MimeType         *string    `json:"mime_type"`
	Size             *int64     `json:"size"`
	Width            *int       `json:"width"`
	Height           *int       `json:"height"`
	Checksum         *string    `json:"checksum"`
	CameraMake       *string    `json:"camera_make"`
	CameraModel      *string    `json:"camera_model"`
	LensModel        *string    `json:"lens_model"`
	FocalLength      *string    `json:"focal_length"`
	Aperture         *string    `json:"aperture"`
	TakenAt          *time.Time `json:"taken_at"`
	Duration         *float64   `json:"duration"`
	FrameRate        *float64   `json:"frame_rate"`
	VideoCodec       *string    `json:"video_codec"`
	AudioCodec       *string    `json:"audio_codec"`
	VideoBitrate     *int64     `json:"video_bitrate"`
	AudioBitrate     *int64     `json:"audio_bitrate"`
	SampleRate       *int       `json:"sample_rate"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CreatedBy        int        `json:"created_by"`
	UpdatedBy        int        `json:"updated_by"`
}

func (MediaMetadata) TableName() string {
	return "media_metadata"
}
