package terminal

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/runtime/terminal/commands"
	"github.com/energy-tools/glow-atlas/pkg/runtime/terminal/export"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/services/registry"
)

// CLI represents the command-line interface
type CLI struct {
	settings *config.Settings
	registry registry.Registry
	reporter *export.Reporter
	catalog  *Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Settings *config.Settings
	Registry registry.Registry
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		settings: opts.Settings,
		registry: opts.Registry,
		reporter: export.NewReporter(opts.Output),
		catalog:  NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glow",
		Short: "Smart meter readings archive tool",
	}

	cmd.AddCommand(commands.NewEntitiesCmd(cli.registry, cli.catalog))
	cmd.AddCommand(commands.NewFetchCmd(cli.settings, cli.registry, cli.reporter))
	cmd.AddCommand(commands.NewExportCmd(cli.settings))
	cmd.AddCommand(commands.NewChartCmd(cli.settings))
	cmd.AddCommand(commands.NewProfilesCmd(cli.registry))

	return cmd
}
