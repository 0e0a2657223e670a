package stor

import (
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"gorm.io/gorm"
)

type GormMediaStor struct {
	db *gorm.DB
}

func NewGormMediaStor(db *gorm.DB) *GormMediaStor {
	return &GormMediaStor{db: db}
}

func (s *GormMediaStor) CreateMedia(owner *mvmodel.User, filename, filepath string, kind mvmodel.MediaKind, checksum string) (*mvmodel.Media, error) {
	media := &mvmodel.Media{
		OwnerID:   owner.ID,
		Filename:  filename,
		Filepath:  filepath,
		MediaKind: kind,
		Checksum:  checksum,
		CreatedBy: owner.ID,
		UpdatedBy: owner.ID,
	}

	var err error

	if media.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(media).Error
	})

	return media, err
}

func (s *GormMediaStor) GetMediaByID(mediaID int) (*mvmodel.Media, error) {
	var media mvmodel.Media
	err := s.db.Where("deleted_at IS NULL").
		Where("id = ?", mediaID).
		First(&media).Error
	if err != nil {
		return nil, err
	}

	return &media, nil
}

// GetMediaForOwner is the access check for retrieval. It filters on both the
// media id and the owner id, so a row owned by someone else looks exactly
// like a row that doesn't exist.
func (s *GormMediaStor) GetMediaForOwner(mediaID, ownerID int) (*mvmodel.Media, error) {
	var media mvmodel.Media
	err := s.db.Where("deleted_at IS NULL").
		Where("id = ?", mediaID).
		Where("owner_id = ?", ownerID).
		First(&media).Error
	if err != nil {
		return nil, err
	}

	return &media, nil
}

// ListMediaForOwner returns a page of the owner's media, newest first, plus
// the total count of non-deleted rows. The count is a separate query, so it
// can drift from the page if rows mutate in between.
func (s *GormMediaStor) ListMediaForOwner(ownerID int, limit, offset int) ([]mvmodel.Media, int64, error) {
	var media []mvmodel.Media

	err := s.db.Where("deleted_at IS NULL").
		Where("owner_id = ?", ownerID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&media).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = s.db.Model(&mvmodel.Media{}).
		Where("deleted_at IS NULL").
		Where("owner_id = ?", ownerID).
		Count(&total).Error

	return media, total, err
}

// SoftDeleteMedia stamps deleted_at. The artifact on disk is left alone,
// cleanup of orphaned artifacts is not the catalog's job.
func (s *GormMediaStor) SoftDeleteMedia(media *mvmodel.Media, actorID int) error {
	now := time.Now()

	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Model(media).Updates(map[string]interface{}{
			"deleted_at": &now,
			"updated_by": actorID,
		}).Error
	})
}
