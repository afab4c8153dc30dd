package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/services/registry"
)

type ProfilesCmd struct {
	registry registry.Registry
}

func NewProfilesCmd(reg registry.Registry) *cobra.Command {
	pc := &ProfilesCmd{registry: reg}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List credential profiles from ~/.glowmarktcfg",
		RunE:  pc.run,
	}

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	profiles, err := pc.registry.GetProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to read profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles found in ~/.glowmarktcfg")
		return nil
	}

	lines := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		lines = append(lines, profile.String())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Available profiles:\n%s\n", strings.Join(lines, "\n"))
	return nil
}
