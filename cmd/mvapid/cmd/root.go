/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/mediavault/vault/pkg/clog"
	"github.com/mediavault/vault/pkg/config"
	"github.com/mediavault/vault/pkg/mvdb"
	"github.com/mediavault/vault/pkg/mvdb/stor"
	"github.com/mediavault/vault/pkg/mvingest"
	"github.com/mediavault/vault/pkg/mvmedia"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mvapid",
	Short: "Run the mvapid media vault API server",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())

		c := config.MustLoadFromVaultDotenv()

		clog.Setup(c.GetKey("MVAULT_LOG_FILE"), c.GetKeyWithDefault("MVAULT_LOG_LEVEL", "info"))

		vaultDir := mustExpandPath(c.GetKeyWithDefault("MVAULT_DIR", "~/.mediavault/vault"))
		log.Infof("Vault Dir: %s", vaultDir)

		if err := os.MkdirAll(vaultDir, 0755); err != nil {
			log.Fatalf("Unable to create vault dir %s: %s", vaultDir, err)
		}

		db := mvdb.MustConnectToDB()
		stors := stor.NewGormStors(db)

		assembler := mvingest.NewChunkAssembler(vaultDir)
		pipeline := mvingest.NewPipeline(stors.MediaStor, stors.MediaMetadataStor)
		thumbnails := mvmedia.NewThumbnailGenerator(vaultDir)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go mvingest.NewStagingSweeper(assembler).Run(ctx)

		setupRoutes(e, RouteOpts{
			stors:      stors,
			assembler:  assembler,
			pipeline:   pipeline,
			thumbnails: thumbnails,
		})

		if err := e.Start(":" + c.GetKeyWithDefault("MVAPID_PORT", "1390")); err != nil {
			log.Fatalf("Unable to start server: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func mustExpandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Fatalf("Unable to expand path %s: %s", path, err)
	}

	return filepath.Clean(expanded)
}
