package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/services/export"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
	readingstore "github.com/energy-tools/glow-atlas/pkg/store/duckdb/readings"
)

type ExportCmd struct {
	resourceID string
	from       string
	to         string
	month      string
	lastDays   int
	out        string
	format     string
	daily      bool
	dbPath     string

	settings *config.Settings
}

func NewExportCmd(settings *config.Settings) *cobra.Command {
	ec := &ExportCmd{settings: settings}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write archived readings to a file",
		RunE:  ec.run,
	}

	cmd.Flags().StringVar(&ec.resourceID, "resource", "", "Resource id to export")
	cmd.Flags().StringVar(&ec.from, "from", "", "Window start (YYYY-MM-DD, UTC; default: whole archive)")
	cmd.Flags().StringVar(&ec.to, "to", "", "Window end, exclusive")
	cmd.Flags().StringVar(&ec.month, "month", "", "Whole calendar month to export (YYYY-MM)")
	cmd.Flags().IntVar(&ec.lastDays, "last-days", 0, "Trailing days to export")
	cmd.Flags().StringVar(&ec.out, "out", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&ec.format, "format", "", "Output format: jsonl, csv or parquet (default: by extension)")
	cmd.Flags().BoolVar(&ec.daily, "daily", false, "Export per-day totals instead of raw readings")
	cmd.Flags().StringVar(&ec.dbPath, "db", settings.Archive.Path, "Path to the archive database")

	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ec.dbPath})
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", ec.dbPath, err)
	}
	defer db.Close()

	store, err := readingstore.NewStore(db)
	if err != nil {
		return err
	}

	record, err := store.GetResource(ctx, ec.resourceID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("resource %q is not in the archive, fetch it first", ec.resourceID)
	}

	window, bounded, err := ec.window()
	if err != nil {
		return err
	}

	out := io.Writer(cmd.OutOrStdout())
	if ec.out != "" {
		f, err := os.Create(ec.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", ec.out, err)
		}
		defer f.Close()
		out = f
	}

	if ec.daily {
		return ec.exportDaily(cmd, store, window, bounded, out)
	}
	return ec.exportReadings(cmd, store, window, bounded, out)
}

func (ec *ExportCmd) exportReadings(cmd *cobra.Command, store readingstore.Store, window domain.TimeRange, bounded bool, out io.Writer) error {
	ctx := cmd.Context()

	from, to := window.From, window.To
	if !bounded {
		from = time.Unix(0, 0).UTC()
		to = time.Now().UTC().Add(24 * time.Hour)
	}

	records, err := store.GetReadings(ctx, ec.resourceID, from, to)
	if err != nil {
		return err
	}

	series := make([]domain.Reading, 0, len(records))
	for _, rec := range records {
		series = append(series, adapters.MapStoreRecordToDomainReading(rec))
	}

	encoder, err := export.NewEncoder(export.ResolveFormat(ec.out, ec.format))
	if err != nil {
		return err
	}
	if err := encoder.Encode(out, series); err != nil {
		return fmt.Errorf("failed to export readings: %w", err)
	}

	if ec.out != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d readings to %s\n", len(series), ec.out)
	}
	return nil
}

func (ec *ExportCmd) exportDaily(cmd *cobra.Command, store readingstore.Store, window domain.TimeRange, bounded bool, out io.Writer) error {
	ctx := cmd.Context()

	if format := export.ResolveFormat(ec.out, ec.format); format != export.FormatJSONL {
		return fmt.Errorf("daily totals only export as jsonl, not %s", format)
	}

	var from, to *time.Time
	if bounded {
		from, to = &window.From, &window.To
	}

	aggregates, err := store.GetDailyAggregates(ctx, ec.resourceID, from, to)
	if err != nil {
		return err
	}

	totals := make([]domain.DailyTotal, 0, len(aggregates))
	for _, agg := range aggregates {
		totals = append(totals, adapters.MapStoreDailyAggregateToDomain(agg))
	}

	if err := export.EncodeDailyTotals(out, totals); err != nil {
		return fmt.Errorf("failed to export daily totals: %w", err)
	}

	if ec.out != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d daily totals to %s\n", len(totals), ec.out)
	}
	return nil
}

// window resolves the selection flags. bounded is false when no window flag
// was given at all, meaning the whole archive.
func (ec *ExportCmd) window() (domain.TimeRange, bool, error) {
	if ec.from == "" && ec.to == "" && ec.month == "" && ec.lastDays <= 0 {
		return domain.TimeRange{}, false, nil
	}

	window, err := resolveWindow(time.Now(), ec.from, ec.to, ec.month, ec.lastDays, ec.settings.Fetch.Period)
	if err != nil {
		return domain.TimeRange{}, false, err
	}
	return window, true, nil
}
