package cmd

import (
	"github.com/labstack/echo/v4"

	"github.com/mediavault/vault/pkg/mvapid/webapi"
	"github.com/mediavault/vault/pkg/mvapid/webapi/apimiddleware"
	"github.com/mediavault/vault/pkg/mvdb/stor"
	"github.com/mediavault/vault/pkg/mvingest"
	"github.com/mediavault/vault/pkg/mvmedia"
)

type RouteOpts struct {
	stors      *stor.Stors
	assembler  *mvingest.ChunkAssembler
	pipeline   *mvingest.Pipeline
	thumbnails *mvmedia.ThumbnailGenerator
}

func setupRoutes(e *echo.Echo, opts RouteOpts) {
	apikeyCache := apimiddleware.NewAPIKeyCache(opts.stors.UserStor)

	g := e.Group("/api")
	g.Use(apimiddleware.APIKeyAuth(apimiddleware.APIKeyConfig{
		Keyname:         "apikey",
		GetUserByAPIKey: apikeyCache.GetUserByAPIKey,
	}))

	uploadController := webapi.NewUploadController(opts.assembler, opts.pipeline)
	g.POST("/media/upload", uploadController.UploadChunk)

	downloadController := webapi.NewDownloadController(opts.stors.MediaStor, opts.stors.MediaMetadataStor, opts.thumbnails)
	g.POST("/media/:id/download", downloadController.DownloadChunk)
	g.GET("/media/:id/stream", downloadController.Stream)
	g.GET("/media/:id/thumbnail", downloadController.Thumbnail)

	mediaController := webapi.NewMediaController(opts.stors.MediaStor, opts.stors.MediaMetadataStor)
	g.POST("/media/list", mediaController.List)
	g.GET("/media/:id", mediaController.Detail)
	g.DELETE("/media/:id", mediaController.Delete)
}
