// Package archive runs the retrieval pipeline end to end: it pulls readings
// from Glowmarkt, lands them in DuckDB chunk by chunk and keeps per-resource
// checkpoints so interrupted runs resume where they stopped.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	storemodels "github.com/energy-tools/glow-atlas/pkg/models/store"
	"github.com/energy-tools/glow-atlas/pkg/services/auth"
	"github.com/energy-tools/glow-atlas/pkg/services/readings"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb/checkpoint"
	readingstore "github.com/energy-tools/glow-atlas/pkg/store/duckdb/readings"
)

// DefaultBackfill bounds the first pull of a resource that has no
// checkpoint yet.
const DefaultBackfill = 30 * 24 * time.Hour

type Config struct {
	Fetch    readings.Config
	Backfill time.Duration
}

type Service interface {
	// ArchiveRange pulls one window into the archive. Chunks land in their
	// own transactions, so a crash keeps every fully stored chunk.
	ArchiveRange(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (*readings.FetchResult, error)
	// CatchUp pulls from the resource's checkpoint (or the backfill bound on
	// first contact) up to now.
	CatchUp(ctx context.Context, resource domain.Resource, period time.Duration) (*readings.FetchResult, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	GetResource(ctx context.Context, resourceID string) (*domain.Resource, error)
	GetReadings(ctx context.Context, resourceID string, from, to time.Time) ([]domain.Reading, error)
	GetDailyTotals(ctx context.Context, resourceID string, from, to *time.Time) ([]domain.DailyTotal, error)
	GetStats(ctx context.Context, resourceID string) (*domain.ResourceStats, error)
}

type service struct {
	client      readings.GatewayClient
	auth        auth.Manager
	db          *sql.DB
	readings    readingstore.Store
	checkpoints checkpoint.Store
	cfg         Config
	now         func() time.Time
}

func NewService(
	client readings.GatewayClient,
	authManager auth.Manager,
	db *sql.DB,
	readingStore readingstore.Store,
	checkpointStore checkpoint.Store,
	cfg Config,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if cfg.Backfill <= 0 {
		cfg.Backfill = DefaultBackfill
	}

	return &service{
		client:      client,
		auth:        authManager,
		db:          db,
		readings:    readingStore,
		checkpoints: checkpointStore,
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

func (s *service) ArchiveRange(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (*readings.FetchResult, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	if err := s.readings.UpsertResource(ctx, adapters.MapDomainResourceToStoreRecord(resource)); err != nil {
		return nil, err
	}

	// The checkpoint only advances while every chunk since the window start
	// has landed; a hole stops it so the next catch-up re-covers the gap.
	contiguousTo := tr.From

	cfg := s.cfg.Fetch
	cfg.OnChunk = func(ctx context.Context, chunk domain.TimeRange, recs []domain.Reading) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin chunk transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		txCtx := duckdb.WithTransaction(ctx, tx)

		records := make([]storemodels.ReadingRecord, 0, len(recs))
		for _, r := range recs {
			records = append(records, adapters.MapDomainReadingToStoreRecord(r))
		}
		if err := s.readings.Add(txCtx, records); err != nil {
			return err
		}

		if chunk.From.Equal(contiguousTo) {
			if err := s.checkpoints.Advance(txCtx, resource.ID, chunk.To); err != nil {
				return err
			}
			contiguousTo = chunk.To
		}

		return tx.Commit()
	}

	fetcher := readings.NewFetcher(s.client, s.auth, cfg)
	result, err := fetcher.FetchAll(ctx, resource, tr)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	if !result.Outcome.Complete() {
		first := result.Outcome.Failed[0]
		if cpErr := s.checkpoints.RecordError(ctx, resource.ID, first.Err.Error()); cpErr != nil {
			logger.Warn().Err(cpErr).Str("resource_id", resource.ID).Msg("failed to record checkpoint error")
		}
	}

	logger.Info().
		Str("resource_id", resource.ID).
		Stringer("range", tr).
		Int("records", len(result.Readings)).
		Int("skipped", result.Skipped).
		Int("failed_chunks", len(result.Outcome.Failed)).
		Msg("archived readings window")

	return result, nil
}

func (s *service) CatchUp(ctx context.Context, resource domain.Resource, period time.Duration) (*readings.FetchResult, error) {
	now := s.now().UTC().Truncate(period)

	from := now.Add(-s.cfg.Backfill)
	cp, err := s.checkpoints.Get(ctx, resource.ID)
	if err != nil {
		return nil, err
	}
	if cp != nil && cp.LastFetchedTo.After(from) {
		from = cp.LastFetchedTo
	}

	if !from.Before(now) {
		zerolog.Ctx(ctx).Debug().Str("resource_id", resource.ID).Msg("archive already up to date")
		return &readings.FetchResult{Outcome: domain.FetchOutcome{ResourceID: resource.ID}}, nil
	}

	return s.ArchiveRange(ctx, resource, domain.TimeRange{From: from, To: now, Period: period})
}

func (s *service) ListResources(ctx context.Context) ([]domain.Resource, error) {
	records, err := s.readings.GetResources(ctx)
	if err != nil {
		return nil, err
	}

	resources := make([]domain.Resource, 0, len(records))
	for _, rec := range records {
		resources = append(resources, adapters.MapStoreResourceToDomain(rec))
	}
	return resources, nil
}

func (s *service) GetResource(ctx context.Context, resourceID string) (*domain.Resource, error) {
	rec, err := s.readings.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	resource := adapters.MapStoreResourceToDomain(*rec)
	return &resource, nil
}

func (s *service) GetReadings(ctx context.Context, resourceID string, from, to time.Time) ([]domain.Reading, error) {
	records, err := s.readings.GetReadings(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Reading, 0, len(records))
	for _, rec := range records {
		out = append(out, adapters.MapStoreRecordToDomainReading(rec))
	}
	return out, nil
}

func (s *service) GetDailyTotals(ctx context.Context, resourceID string, from, to *time.Time) ([]domain.DailyTotal, error) {
	aggregates, err := s.readings.GetDailyAggregates(ctx, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make([]domain.DailyTotal, 0, len(aggregates))
	for _, agg := range aggregates {
		totals = append(totals, adapters.MapStoreDailyAggregateToDomain(agg))
	}
	return totals, nil
}

func (s *service) GetStats(ctx context.Context, resourceID string) (*domain.ResourceStats, error) {
	stats, err := s.readings.GetStats(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return adapters.MapReadingStatsStoreToDomain(stats), nil
}
