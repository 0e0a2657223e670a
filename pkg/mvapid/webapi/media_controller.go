package webapi

import (
	"net/http"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mediavault/vault/pkg/mvdb/mvmodel"
	"github.com/mediavault/vault/pkg/mvdb/stor"
)

const (
	defaultListLimit  = 20
	defaultListOffset = 0
)

// MediaController handles catalog reads and deletes. Everything is scoped
// to the authenticated owner; other users' media behaves as if it doesn't
// exist.
type MediaController struct {
	mediaStor    stor.MediaStor
	metadataStor stor.MediaMetadataStor
}

func NewMediaController(mediaStor stor.MediaStor, metadataStor stor.MediaMetadataStor) *MediaController {
	return &MediaController{
		mediaStor:    mediaStor,
		metadataStor: metadataStor,
	}
}

// ListRequest carries optional pagination. Absent fields fall back to the
// defaults, which is why they are pointers.
type ListRequest struct {
	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

type ListResponse struct {
	Data       []mvmodel.Media `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// List returns a page of the owner's media, newest first.
func (c *MediaController) List(ctx echo.Context) error {
	user, ok := getUser(ctx)
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
	}

	var req ListRequest
	if err := ctx.Bind(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	limit := defaultListLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}

	offset := defaultListOffset
	if req.Offset != nil && *req.Offset >= 0 {
		offset = *req.Offset
	}

	media, total, err := c.mediaStor.ListMediaForOwner(user.ID, limit, offset)
	if err != nil {
		log.Errorf("media list failed for user %d: %s", user.ID, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to list media")
	}

	return ctx.JSON(http.StatusOK, ListResponse{
		Data: media,
		Pagination: Pagination{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	})
}

// DetailResponse pairs a media row with its metadata. Metadata is null when
// the extraction row never made it in.
type DetailResponse struct {
	Media    *mvmodel.Media         `json:"media"`
	Metadata *mvmodel.MediaMetadata `json:"metadata"`
}

// Detail returns one media row plus whatever metadata extraction produced.
func (c *MediaController) Detail(ctx echo.Context) error {
	user, ok := getUser(ctx)
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
	}

	mediaID, err := mediaIDParam(ctx)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	media, err := c.mediaStor.GetMediaForOwner(mediaID, user.ID)
	if err != nil {
		return errorResponseFromErr(ctx, err)
	}

	metadata, err := c.metadataStor.GetMetadataForMedia(media.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("metadata lookup failed for media %d: %s", media.ID, err)
		}
		metadata = nil
	}

	return ctx.JSON(http.StatusOK, DetailResponse{
		Media:    media,
		Metadata: metadata,
	})
}

// Delete soft deletes the media row. The artifact stays on disk; only the
// catalog entry disappears from the owner's views.
func (c *MediaController) Delete(ctx echo.Context) error {
	user, ok := getUser(ctx)
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
	}

	mediaID, err := mediaIDParam(ctx)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	media, err := c.mediaStor.GetMediaForOwner(mediaID, user.ID)
	if err != nil {
		return errorResponseFromErr(ctx, err)
	}

	if err := c.mediaStor.SoftDeleteMedia(media, user.ID); err != nil {
		log.Errorf("soft delete failed for media %d: %s", media.ID, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to delete media")
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"success": true})
}
