package webapi

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"

	"github.com/mediavault/vault/pkg/mvdb/stor"
	"github.com/mediavault/vault/pkg/mvmedia"
	"github.com/mediavault/vault/pkg/mvstream"
)

// DownloadController serves artifact bytes three ways: client-paced chunk
// pulls, HTTP range streaming, and cached thumbnails.
type DownloadController struct {
	mediaStor    stor.MediaStor
	metadataStor stor.MediaMetadataStor
	thumbnails   *mvmedia.ThumbnailGenerator
}

func NewDownloadController(mediaStor stor.MediaStor, metadataStor stor.MediaMetadataStor, thumbnails *mvmedia.ThumbnailGenerator) *DownloadController {
	return &DownloadController{
		mediaStor:    mediaStor,
		metadataStor: metadataStor,
		thumbnails:   thumbnails,
	}
}

// DownloadChunkRequest describes one client-paced pull: read chunk_size
// bytes starting at offset.
type DownloadChunkRequest struct {
	ChunkSize int    `json:"chunk_size"`
	Offset    uint64 `json:"offset"`
}

// maxDownloadChunkSize bounds a single pull. The chunk buffer is allocated
// from the requested size, so an unbounded chunk_size would let one request
// demand an arbitrarily large allocation.
const maxDownloadChunkSize = 8 * 1024 * 1024

// DownloadChunk returns the requested slice of the artifact, or 204 once the
// offset is at or past the end of the file. The Content-Range total is left
// unspecified: the client paces itself by offset and stops on 204.
func (c *DownloadController) DownloadChunk(ctx echo.Context) error {
	user, ok := getUser(ctx)
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
	}

	mediaID, err := mediaIDParam(ctx)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	var req DownloadChunkRequest
	if err := ctx.Bind(&req); err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if req.ChunkSize <= 0 {
		return errorResponse(ctx, http.StatusBadRequest, "chunk_size must be positive")
	}

	if req.ChunkSize > maxDownloadChunkSize {
		return errorResponse(ctx, http.StatusBadRequest, fmt.Sprintf("chunk_size must be at most %d", maxDownloadChunkSize))
	}

	media, err := c.mediaStor.GetMediaForOwner(mediaID, user.ID)
	if err != nil {
		return errorResponseFromErr(ctx, err)
	}

	data, err := mvstream.ReadChunk(media.Filepath, req.Offset, req.ChunkSize)
	switch {
	case err == io.EOF:
		return ctx.NoContent(http.StatusNoContent)
	case os.IsNotExist(err):
		return errorResponse(ctx, http.StatusNotFound, "artifact missing")
	case err != nil:
		log.Errorf("chunk read failed for media %d: %s", media.ID, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to read artifact")
	}

	end := req.Offset + uint64(len(data)) - 1
	ctx.Response().Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/?", req.Offset, end))

	return ctx.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

// Stream serves the artifact with RFC 7233 byte ranges so video elements
// can seek. Requests without a Range header get the whole file, still as a
// 206 so clients learn ranges are accepted.
func (c *DownloadController) Stream(ctx echo.Context) error {
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

	finfo, err := os.Stat(media.Filepath)
	if err != nil {
		return errorResponse(ctx, http.StatusNotFound, "artifact missing")
	}

	byteRange, err := mvstream.ParseRange(ctx.Request().Header.Get("Range"), finfo.Size())
	if err != nil {
		return errorResponseFromErr(ctx, err)
	}

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, c.contentTypeFor(media.ID))
	resp.Header().Set("Accept-Ranges", "bytes")
	resp.Header().Set("Content-Range", byteRange.ContentRange())
	resp.Header().Set(echo.HeaderContentLength, fmt.Sprintf("%d", byteRange.ChunkSize()))
	resp.WriteHeader(http.StatusPartialContent)

	if err := mvstream.WriteRange(ctx.Request().Context(), resp, media.Filepath, byteRange); err != nil {
		// The status line is already on the wire, all that's left is to
		// log the broken stream.
		log.Errorf("stream aborted for media %d: %s", media.ID, err)
	}

	return nil
}

// Thumbnail serves the cached preview for a photo or video, generating it
// on first request.
func (c *DownloadController) Thumbnail(ctx echo.Context) error {
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

	if !media.HasThumbnail() {
		return errorResponse(ctx, http.StatusNotFound, "no thumbnail for this media kind")
	}

	thumbPath, err := c.thumbnails.Generate(user, media)
	if err != nil {
		log.Errorf("thumbnail generation failed for media %d: %s", media.ID, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to generate thumbnail")
	}

	return ctx.File(thumbPath)
}

// contentTypeFor looks up the sniffed mime type recorded at ingest; a
// missing metadata row degrades to a generic binary type.
func (c *DownloadController) contentTypeFor(mediaID int) string {
	metadata, err := c.metadataStor.GetMetadataForMedia(mediaID)
	if err == nil && metadata.MimeType != nil {
		return *metadata.MimeType
	}

	return echo.MIMEOctetStream
}
