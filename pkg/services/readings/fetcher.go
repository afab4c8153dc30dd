package readings

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/auth"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

const (
	DefaultChunkSpan      = 10 * 24 * time.Hour
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 30 * time.Second
)

// GatewayClient is the slice of the Glowmarkt client the fetcher needs.
type GatewayClient interface {
	GetReadings(ctx context.Context, token string, req glowmarkt.ReadingsRequest) (*api.ReadingsResponse, error)
}

// ChunkFunc receives each chunk's records as soon as the chunk succeeds.
// Returning an error marks the chunk failed without stopping the run.
type ChunkFunc func(ctx context.Context, chunk domain.TimeRange, readings []domain.Reading) error

// RawFunc observes a chunk's response before normalization. Returning an
// error marks the chunk failed without stopping the run.
type RawFunc func(ctx context.Context, resource domain.Resource, chunk domain.TimeRange, resp *api.ReadingsResponse) error

type Config struct {
	// ChunkSpan caps how much time one readings request may cover.
	ChunkSpan time.Duration
	// MaxAttempts bounds tries per chunk when failures are transient.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// OnChunk, when set, streams each chunk's records out as it lands.
	OnChunk ChunkFunc
	// OnRaw, when set, sees every fetched payload as the server sent it.
	OnRaw RawFunc
}

func (c Config) withDefaults() Config {
	if c.ChunkSpan <= 0 {
		c.ChunkSpan = DefaultChunkSpan
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	return c
}

// FetchResult is the aggregate of one windowed retrieval. Readings holds the
// merged records of every chunk that succeeded, sorted ascending; Outcome
// records which sub-ranges made it and which did not.
type FetchResult struct {
	Readings []domain.Reading
	Skipped  int
	Outcome  domain.FetchOutcome
}

type Fetcher interface {
	// Fetch retrieves and normalizes a single window, retrying transient
	// failures and refreshing a rejected token once.
	Fetch(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (NormalizedSeries, error)
	// FetchAll splits the window into chunks and fetches them oldest first.
	// A chunk exhausting its retries is recorded in the outcome and does not
	// stop the remaining chunks. A token rejection that survives a refresh
	// aborts the run instead, since every later chunk would fail the same way.
	FetchAll(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (*FetchResult, error)
}

type fetcher struct {
	client GatewayClient
	auth   auth.Manager
	cfg    Config
}

func NewFetcher(client GatewayClient, authManager auth.Manager, cfg Config) Fetcher {
	return &fetcher{
		client: client,
		auth:   authManager,
		cfg:    cfg.withDefaults(),
	}
}

func (f *fetcher) Fetch(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (NormalizedSeries, error) {
	if err := tr.Validate(); err != nil {
		return NormalizedSeries{}, err
	}
	return f.fetchChunk(ctx, resource, tr)
}

func (f *fetcher) FetchAll(ctx context.Context, resource domain.Resource, tr domain.TimeRange) (*FetchResult, error) {
	chunks, err := SplitRange(tr, f.cfg.ChunkSpan)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	result := &FetchResult{
		Outcome: domain.FetchOutcome{ResourceID: resource.ID},
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series, err := f.fetchChunk(ctx, resource, chunk)
		if err == nil && f.cfg.OnChunk != nil {
			err = f.cfg.OnChunk(ctx, chunk, series.Readings)
		}

		if err != nil {
			if glowmarkt.IsAuthError(err) {
				return nil, fmt.Errorf("chunk %s: %w", chunk, err)
			}
			logger.Warn().
				Str("resource_id", resource.ID).
				Stringer("chunk", chunk).
				Err(err).
				Msg("chunk failed, continuing with the rest of the window")
			result.Outcome.Failed = append(result.Outcome.Failed, domain.FailedRange{Range: chunk, Err: err})
			continue
		}

		result.Readings = append(result.Readings, series.Readings...)
		result.Skipped += series.Skipped
		result.Outcome.Succeeded = append(result.Outcome.Succeeded, chunk)
	}

	// Adjacent chunks can both carry the bucket at their shared bound, so
	// merge with the same first-wins rule normalization uses.
	result.Readings = sortAndDedupe(result.Readings)

	return result, nil
}

// fetchChunk runs the retry state machine for one chunk: transient failures
// back off exponentially within the attempt budget, a token rejection earns
// exactly one refresh and one extra try, and anything else is terminal.
func (f *fetcher) fetchChunk(ctx context.Context, resource domain.Resource, chunk domain.TimeRange) (NormalizedSeries, error) {
	logger := zerolog.Ctx(ctx)

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = f.cfg.InitialBackoff
	schedule.MaxInterval = f.cfg.MaxBackoff
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	transientTries := 0
	authRetried := false

	for {
		session, err := f.auth.EnsureValid(ctx)
		if err != nil {
			return NormalizedSeries{}, err
		}

		series, err := f.fetchOnce(ctx, session.Token, resource, chunk)
		if err == nil {
			return series, nil
		}

		switch {
		case glowmarkt.IsAuthError(err):
			if authRetried {
				return NormalizedSeries{}, err
			}
			authRetried = true
			if _, refreshErr := f.auth.Refresh(ctx, session); refreshErr != nil {
				return NormalizedSeries{}, refreshErr
			}
			logger.Debug().
				Str("resource_id", resource.ID).
				Stringer("chunk", chunk).
				Msg("token refreshed, retrying chunk")

		case glowmarkt.IsTransientError(err):
			transientTries++
			if transientTries >= f.cfg.MaxAttempts {
				return NormalizedSeries{}, fmt.Errorf("chunk %s failed after %d attempts: %w", chunk, transientTries, err)
			}
			wait := schedule.NextBackOff()
			logger.Debug().
				Str("resource_id", resource.ID).
				Stringer("chunk", chunk).
				Int("attempt", transientTries).
				Dur("backoff", wait).
				Err(err).
				Msg("transient failure, backing off")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return NormalizedSeries{}, ctx.Err()
			}

		default:
			return NormalizedSeries{}, err
		}
	}
}

func (f *fetcher) fetchOnce(ctx context.Context, token string, resource domain.Resource, chunk domain.TimeRange) (NormalizedSeries, error) {
	resp, err := f.client.GetReadings(ctx, token, glowmarkt.ReadingsRequest{
		ResourceID: resource.ID,
		From:       chunk.From,
		To:         chunk.To,
		Period:     chunk.Period,
	})
	if err != nil {
		return NormalizedSeries{}, err
	}

	if f.cfg.OnRaw != nil {
		if err := f.cfg.OnRaw(ctx, resource, chunk, resp); err != nil {
			return NormalizedSeries{}, err
		}
	}

	return Normalize(resource, resp)
}
