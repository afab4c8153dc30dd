package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/server"
	"github.com/energy-tools/glow-atlas/pkg/services/archive"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/services/registry"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
	duckdbcheckpoint "github.com/energy-tools/glow-atlas/pkg/store/duckdb/checkpoint"
	duckdbreadings "github.com/energy-tools/glow-atlas/pkg/store/duckdb/readings"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the archive API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file (default: built-in defaults)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: settings.Archive.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	readingStore, err := duckdbreadings.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create readings store: %w", err)
	}
	checkpointStore, err := duckdbcheckpoint.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	// The web API only reads the archive, so no Glowmarkt session is wired.
	archiveService, err := archive.NewService(nil, nil, db, readingStore, checkpointStore, archive.Config{})
	if err != nil {
		return fmt.Errorf("failed to create archive service: %w", err)
	}

	logger.Info().Msgf("Serving archive `%s`.", settings.Archive.Path)

	reg := registry.NewRegistry(settings.Api)
	if profiles, err := reg.GetProfiles(ctx); err == nil && len(profiles) > 0 {
		logger.Info().Msgf("Found the following profiles:")
		for _, profile := range profiles {
			logger.Info().Msgf("Name: `%s`, Type: `%s`", profile.Name, profile.Type)
		}
	}

	addr := settings.Server.Addr
	if host, port := os.Getenv("SERVER_HOST"), os.Getenv("SERVER_PORT"); host != "" && port != "" {
		addr = net.JoinHostPort(host, port)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Archive: archiveService,
			Logger:  logger,
		},
	})

	return api.Start()
}
