package webapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mediavault/vault/pkg/mvingest"
)

// UploadController accepts multipart chunk submissions and, once an upload
// completes, hands the assembled artifact to the ingestion pipeline.
type UploadController struct {
	assembler *mvingest.ChunkAssembler
	pipeline  *mvingest.Pipeline
}

func NewUploadController(assembler *mvingest.ChunkAssembler, pipeline *mvingest.Pipeline) *UploadController {
	return &UploadController{
		assembler: assembler,
		pipeline:  pipeline,
	}
}

// UploadResponse is returned for every chunk submission. FileID is only set
// on the completing chunk, once the artifact has been cataloged.
type UploadResponse struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	ChunkReceived int     `json:"chunk_received"`
	FileID        *string `json:"file_id"`
}

// UploadChunk handles one multipart chunk. Form fields: fileName,
// chunkNumber, totalChunks, and the chunk bytes as the "chunk" file part.
func (c *UploadController) UploadChunk(ctx echo.Context) error {
	user, ok := getUser(ctx)
	if !ok {
		return errorResponse(ctx, http.StatusUnauthorized, "user not authenticated")
	}

	fileName := ctx.FormValue("fileName")

	chunkNumber, err := strconv.Atoi(ctx.FormValue("chunkNumber"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid chunkNumber")
	}

	totalChunks, err := strconv.Atoi(ctx.FormValue("totalChunks"))
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "invalid totalChunks")
	}

	data, err := readChunkPart(ctx)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, "missing chunk part")
	}

	outcome, err := c.assembler.SubmitChunk(user, fileName, chunkNumber, totalChunks, data)
	if err != nil {
		if errors.Is(err, mvingest.ErrBadRequest) {
			return errorResponse(ctx, http.StatusBadRequest, err.Error())
		}

		log.Errorf("chunk submission failed for %s/%s: %s", user.UUID, fileName, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to store chunk")
	}

	resp := UploadResponse{
		Success:       true,
		Message:       "chunk received",
		ChunkReceived: outcome.ChunkReceived,
	}

	if !outcome.Completed {
		return ctx.JSON(http.StatusOK, resp)
	}

	media, err := c.pipeline.Finalize(user, fileName, outcome)
	if err != nil {
		log.Errorf("ingestion failed for %s: %s", outcome.Path, err)
		return errorResponse(ctx, http.StatusInternalServerError, "unable to catalog upload")
	}

	resp.Message = "upload complete"
	resp.FileID = &media.UUID

	return ctx.JSON(http.StatusOK, resp)
}

func readChunkPart(ctx echo.Context) ([]byte, error) {
	fileHeader, err := ctx.FormFile("chunk")
	if err != nil {
		return nil, err
	}

	part, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer part.Close()

	return io.ReadAll(part)
}
