package stor

import (
	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"gorm.io/gorm"
)

type GormMediaMetadataStor struct {
	db *gorm.DB
}

func NewGormMediaMetadataStor(db *gorm.DB) *GormMediaMetadataStor {
	return &GormMediaMetadataStor{db: db}
}

// CreateMetadata persists the attribute row for a media entry. attrs comes
// out of the extractors with only the fields they could determine set.
func (s *GormMediaMetadataStor) CreateMetadata(media *mvmodel.Media, attrs *mvmodel.MediaMetadata, actorID int) (*mvmodel.MediaMetadata, error) {
	attrs.MediaID = media.ID
	attrs.CreatedBy = actorID
	attrs.UpdatedBy = actorID

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(attrs).Error
	})

	if err != nil {
		return nil, err
	}

	return attrs, nil
}

func (s *GormMediaMetadataStor) GetMetadataForMedia(mediaID int) (*mvmodel.MediaMetadata, error) {
	var metadata mvmodel.MediaMetadata
	if err := s.db.Where("media_id = ?", mediaID).First(&metadata).Error; err != nil {
		return nil, err
	}

	return &metadata, nil
}
