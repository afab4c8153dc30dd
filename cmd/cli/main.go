package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/runtime/terminal"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/services/registry"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	settings, err := config.LoadSettings(os.Getenv("GLOW_ATLAS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cli := terminal.NewCLI(terminal.Options{
		Settings: settings,
		Registry: registry.NewRegistry(settings.Api),
		Output:   os.Stdout,
	})

	ctx := logger.WithContext(context.Background())
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
