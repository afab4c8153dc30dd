package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/registry"
)

// CatalogReporter renders discovered entities for the console.
type CatalogReporter interface {
	Handle(entities []domain.VirtualEntity) error
}

type EntitiesCmd struct {
	profile  string
	registry registry.Registry
	reporter CatalogReporter
}

func NewEntitiesCmd(reg registry.Registry, reporter CatalogReporter) *cobra.Command {
	ec := &EntitiesCmd{registry: reg, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the account's virtual entities and their resources",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.profile, "profile", "", "Credential profile from ~/.glowmarktcfg (default: environment)")

	return cmd
}

func (ec *EntitiesCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gateway, err := ec.registry.Connect(ctx, ec.profile)
	if err != nil {
		return err
	}

	entities, err := gateway.Catalog.Discover(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover the catalog: %w", err)
	}

	if len(entities) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No virtual entities visible for this account")
		return nil
	}

	return ec.reporter.Handle(entities)
}
