package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/runtime/terminal/export"
	"github.com/energy-tools/glow-atlas/pkg/services/archive"
	"github.com/energy-tools/glow-atlas/pkg/services/catalog"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	exportsvc "github.com/energy-tools/glow-atlas/pkg/services/export"
	"github.com/energy-tools/glow-atlas/pkg/services/readings"
	"github.com/energy-tools/glow-atlas/pkg/services/registry"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb/checkpoint"
	readingstore "github.com/energy-tools/glow-atlas/pkg/store/duckdb/readings"
)

type FetchCmd struct {
	profile        string
	resourceID     string
	allConsumption bool
	from           string
	to             string
	month          string
	lastDays       int
	period         time.Duration
	dbPath         string
	rawDir         string
	resume         bool

	settings *config.Settings
	registry registry.Registry
	reporter *export.Reporter
}

func NewFetchCmd(settings *config.Settings, reg registry.Registry, reporter *export.Reporter) *cobra.Command {
	fc := &FetchCmd{settings: settings, registry: reg, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Retrieve readings into the local archive",
		RunE:  fc.run,
	}

	cmd.Flags().StringVar(&fc.profile, "profile", "", "Credential profile from ~/.glowmarktcfg (default: environment)")
	cmd.Flags().StringVar(&fc.resourceID, "resource", "", "Resource id to fetch")
	cmd.Flags().BoolVar(&fc.allConsumption, "all-consumption", false, "Fetch every consumption resource in the account")
	cmd.Flags().StringVar(&fc.from, "from", "", "Window start (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS, UTC)")
	cmd.Flags().StringVar(&fc.to, "to", "", "Window end, exclusive (defaults to now)")
	cmd.Flags().StringVar(&fc.month, "month", "", "Whole calendar month to fetch (YYYY-MM, current or previous)")
	cmd.Flags().IntVar(&fc.lastDays, "last-days", 1, "Trailing days to fetch when no window is given")
	cmd.Flags().DurationVar(&fc.period, "period", settings.Fetch.Period, "Bucket width (30m, 1h, 24h or 168h)")
	cmd.Flags().StringVar(&fc.dbPath, "db", settings.Archive.Path, "Path to the archive database")
	cmd.Flags().StringVar(&fc.rawDir, "raw-dir", "", "Directory for raw pre-normalization snapshots, one JSON file per resource")
	cmd.Flags().BoolVar(&fc.resume, "resume", false, "Continue from each resource's checkpoint instead of a fixed window")

	return cmd
}

func (fc *FetchCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if fc.resourceID == "" && !fc.allConsumption {
		return fmt.Errorf("pass --resource or --all-consumption")
	}
	if fc.resourceID != "" && fc.allConsumption {
		return fmt.Errorf("--resource and --all-consumption are mutually exclusive")
	}

	gateway, err := fc.registry.Connect(ctx, fc.profile)
	if err != nil {
		return err
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: fc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", fc.dbPath, err)
	}
	defer db.Close()

	readingStore, err := readingstore.NewStore(db)
	if err != nil {
		return err
	}
	checkpointStore, err := checkpoint.NewStore(db)
	if err != nil {
		return err
	}

	fetchCfg := readings.Config{
		ChunkSpan:      fc.settings.Fetch.ChunkSpan(),
		MaxAttempts:    fc.settings.Fetch.MaxAttempts,
		InitialBackoff: fc.settings.Fetch.InitialBackoff,
		MaxBackoff:     fc.settings.Fetch.MaxBackoff,
	}

	var snapshots *exportsvc.SnapshotCollector
	if fc.rawDir != "" {
		snapshots = exportsvc.NewSnapshotCollector(fc.rawDir)
		fetchCfg.OnRaw = snapshots.Collect
	}

	svc, err := archive.NewService(gateway.Client, gateway.Auth, db, readingStore, checkpointStore, archive.Config{
		Fetch: fetchCfg,
	})
	if err != nil {
		return err
	}

	resources, err := fc.selectResources(ctx, gateway.Catalog)
	if err != nil {
		return err
	}

	incomplete := 0
	for _, resource := range resources {
		started := time.Now()

		var result *readings.FetchResult
		window := domain.TimeRange{Period: fc.period}
		if fc.resume {
			result, err = svc.CatchUp(ctx, resource, fc.period)
		} else {
			window, err = resolveWindow(time.Now(), fc.from, fc.to, fc.month, fc.lastDays, fc.period)
			if err != nil {
				return err
			}
			result, err = svc.ArchiveRange(ctx, resource, window)
		}
		if err != nil {
			return fmt.Errorf("fetching %s: %w", resource.ID, err)
		}

		if fc.resume {
			window = coveredRange(result.Outcome, fc.period)
		}
		if !result.Outcome.Complete() {
			incomplete++
		}

		if snapshots != nil {
			path, err := snapshots.Flush(resource, window)
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Raw snapshot saved to %s\n", path)
			}
		}

		report := &domain.FetchReport{
			Resource: resource,
			Range:    window,
			Outcome:  result.Outcome,
			Records:  len(result.Readings),
			Skipped:  result.Skipped,
			Elapsed:  time.Since(started),
		}
		if err := fc.reporter.Handle(report); err != nil {
			return err
		}
	}

	if incomplete > 0 {
		return fmt.Errorf("%d of %d resources have failed chunks, rerun with --resume to fill the gaps", incomplete, len(resources))
	}
	return nil
}

func (fc *FetchCmd) selectResources(ctx context.Context, explorer catalog.Explorer) ([]domain.Resource, error) {
	entities, err := explorer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover the catalog: %w", err)
	}

	if fc.allConsumption {
		var selected []domain.Resource
		for _, entity := range entities {
			selected = append(selected, domain.ConsumptionOnly(entity.Resources)...)
		}
		if len(selected) == 0 {
			return nil, fmt.Errorf("no consumption resources found in the account")
		}
		return selected, nil
	}

	for _, entity := range entities {
		for _, resource := range entity.Resources {
			if resource.ID == fc.resourceID {
				return []domain.Resource{resource}, nil
			}
		}
	}
	return nil, fmt.Errorf("resource %q not found in the account catalog", fc.resourceID)
}

// coveredRange is the hull of every chunk the run touched, for reporting
// resumed windows whose bounds the checkpoint decided.
func coveredRange(outcome domain.FetchOutcome, period time.Duration) domain.TimeRange {
	tr := domain.TimeRange{Period: period}

	expand := func(chunk domain.TimeRange) {
		if tr.From.IsZero() || chunk.From.Before(tr.From) {
			tr.From = chunk.From
		}
		if chunk.To.After(tr.To) {
			tr.To = chunk.To
		}
	}

	for _, chunk := range outcome.Succeeded {
		expand(chunk)
	}
	for _, failed := range outcome.Failed {
		expand(failed.Range)
	}
	return tr
}
