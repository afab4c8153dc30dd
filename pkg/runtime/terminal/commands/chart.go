package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/charts"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
	readingstore "github.com/energy-tools/glow-atlas/pkg/store/duckdb/readings"
)

type ChartCmd struct {
	resourceID string
	from       string
	to         string
	month      string
	lastDays   int
	out        string
	daily      bool
	dbPath     string

	settings *config.Settings
}

func NewChartCmd(settings *config.Settings) *cobra.Command {
	cc := &ChartCmd{settings: settings}
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render archived readings as a PNG chart",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.resourceID, "resource", "", "Resource id to chart")
	cmd.Flags().StringVar(&cc.from, "from", "", "Window start (YYYY-MM-DD, UTC; default: whole archive)")
	cmd.Flags().StringVar(&cc.to, "to", "", "Window end, exclusive")
	cmd.Flags().StringVar(&cc.month, "month", "", "Whole calendar month to chart (YYYY-MM)")
	cmd.Flags().IntVar(&cc.lastDays, "last-days", 0, "Trailing days to chart")
	cmd.Flags().StringVar(&cc.out, "out", "", "Output PNG file")
	cmd.Flags().BoolVar(&cc.daily, "daily", false, "Chart per-day total bars instead of the raw series")
	cmd.Flags().StringVar(&cc.dbPath, "db", settings.Archive.Path, "Path to the archive database")

	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (cc *ChartCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cc.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", cc.dbPath, err)
	}
	defer db.Close()

	store, err := readingstore.NewStore(db)
	if err != nil {
		return err
	}

	record, err := store.GetResource(ctx, cc.resourceID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("resource %q is not in the archive, fetch it first", cc.resourceID)
	}
	resource := adapters.MapStoreResourceToDomain(*record)

	window, bounded, err := cc.window()
	if err != nil {
		return err
	}

	f, err := os.Create(cc.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cc.out, err)
	}
	defer f.Close()

	var points int
	if cc.daily {
		points, err = cc.chartDaily(cmd, store, resource, window, bounded, f)
	} else {
		points, err = cc.chartSeries(cmd, store, resource, window, bounded, f)
	}
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d points to %s\n", points, cc.out)
	return nil
}

func (cc *ChartCmd) chartSeries(cmd *cobra.Command, store readingstore.Store, resource domain.Resource, window domain.TimeRange, bounded bool, f *os.File) (int, error) {
	ctx := cmd.Context()

	from, to := window.From, window.To
	if !bounded {
		from = time.Unix(0, 0).UTC()
		to = time.Now().UTC().Add(24 * time.Hour)
	}

	records, err := store.GetReadings(ctx, cc.resourceID, from, to)
	if err != nil {
		return 0, err
	}

	series := make([]domain.Reading, 0, len(records))
	for _, rec := range records {
		series = append(series, adapters.MapStoreRecordToDomainReading(rec))
	}

	return len(series), charts.RenderSeries(f, resource, series)
}

func (cc *ChartCmd) chartDaily(cmd *cobra.Command, store readingstore.Store, resource domain.Resource, window domain.TimeRange, bounded bool, f *os.File) (int, error) {
	ctx := cmd.Context()

	var from, to *time.Time
	if bounded {
		from, to = &window.From, &window.To
	}

	aggregates, err := store.GetDailyAggregates(ctx, cc.resourceID, from, to)
	if err != nil {
		return 0, err
	}

	totals := make([]domain.DailyTotal, 0, len(aggregates))
	for _, agg := range aggregates {
		totals = append(totals, adapters.MapStoreDailyAggregateToDomain(agg))
	}

	return len(totals), charts.RenderDailyTotals(f, resource, totals)
}

// window resolves the selection flags. bounded is false when no window flag
// was given at all, meaning the whole archive.
func (cc *ChartCmd) window() (domain.TimeRange, bool, error) {
	if cc.from == "" && cc.to == "" && cc.month == "" && cc.lastDays <= 0 {
		return domain.TimeRange{}, false, nil
	}

	window, err := resolveWindow(time.Now(), cc.from, cc.to, cc.month, cc.lastDays, cc.settings.Fetch.Period)
	if err != nil {
		return domain.TimeRange{}, false, err
	}
	return window, true, nil
}
