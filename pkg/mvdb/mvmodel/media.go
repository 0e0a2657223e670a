package mvmodel

import (
	"path/filepath"
	"strings"
	"time"
)

// MediaKind is the coarse classification of an artifact derived from its
// sniffed mime type.
type MediaKind int

const (
	MediaKindUnknown MediaKind = iota
	MediaKindPhoto
	MediaKindVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaKindPhoto:
		return "photo"
	case MediaKindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// MediaKindFromMime maps a mime type to a MediaKind using the type's
// top-level category.
func MediaKindFromMime(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaKindPhoto
	case strings.HasPrefix(mimeType, "video/"):
		return MediaKindVideo
	default:
		return MediaKindUnknown
	}
}

// Media is one finished artifact in a user's vault. Filename is the stored,
// sanitized name which is unique within the owner's directory. Filepath is
// where the assembled artifact lives on disk.
type Media struct {
	ID        int        `json:"id"`
	UUID      string     `json:"uuid"`
	OwnerID   int        `json:"owner_id"`
	Filename  string     `json:"filename"`
	Filepath  string     `json:"filepath"`
	MediaKind MediaKind  `json:"media_kind"`
	Checksum  string     `json:"checksum"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedBy int        `json:"created_by"`
	UpdatedBy int        `json:"updated_by"`
}

func (Media) TableName() string {
	return "media"
}

// HasThumbnail tells whether this kind of media has a thumbnail concept.
func (m Media) HasThumbnail() bool {
	return m.MediaKind == MediaKindPhoto || m.MediaKind == MediaKindVideo
}

// ThumbnailName returns the name the thumbnail is stored under in the
// owner's thumbnails directory. Photos keep the stored filename, videos get
// an animated webp preview named after the filename stem.
func (m Media) ThumbnailName() string {
	if m.MediaKind == MediaKindVideo {
		stem := strings.TrimSuffix(m.Filename, filepath.Ext(m.Filename))
		return stem + ".webp"
	}

	return m.Filename
}
