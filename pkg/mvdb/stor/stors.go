package stor

import (
	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"gorm.io/gorm"
)

type MediaStor interface {
	CreateMedia(owner *mvmodel.User, filename, filepath string, kind mvmodel.MediaKind, checksum string) (*mvmodel.Media, error)
	GetMediaByID(mediaID int) (*mvmodel.Media, error)
	GetMediaForOwner(mediaID, ownerID int) (*mvmodel.Media, error)
	ListMediaForOwner(ownerID int, limit, offset int) ([]mvmodel.Media, int64, error)
	SoftDeleteMedia(media *mvmodel.Media, actorID int) error
}

type MediaMetadataStor interface {
	CreateMetadata(media *mvmodel.Media, attrs *mvmodel.MediaMetadata, actorID int) (*mvmodel.MediaMetadata, error)
	GetMetadataForMedia(mediaID int) (*mvmodel.MediaMetadata, error)
}

type UserStor interface {
	CreateUser(user *mvmodel.User) (*mvmodel.User, error)
	GetUserByEmail(email string) (*mvmodel.User, error)
	GetUserByAPIToken(apitoken string) (*mvmodel.User, error)
}

// Stors is a convenience bundle so callers that need multiple stores can
// take one dependency.
type Stors struct {
	MediaStor         MediaStor
	MediaMetadataStor MediaMetadataStor
	UserStor          UserStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		MediaStor:         NewGormMediaStor(db),
		MediaMetadataStor: NewGormMediaMetadataStor(db),
		UserStor:          NewGormUserStor(db),
	}
}
