package readings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

func TestSplitRange(t *testing.T) {
	day := 24 * time.Hour
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("splits an exact multiple into equal chunks", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start.Add(3 * day), Period: 30 * time.Minute}

		chunks, err := SplitRange(tr, day)

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			assert.Equal(t, day, chunk.Span(), "chunk %d", i)
			assert.Equal(t, tr.Period, chunk.Period, "chunk %d", i)
		}
	})

	t.Run("trailing remainder becomes its own short chunk", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start.Add(10 * day), Period: time.Hour}

		chunks, err := SplitRange(tr, 3*day)

		require.NoError(t, err)
		require.Len(t, chunks, 4)
		assert.Equal(t, day, chunks[3].Span())
	})

	t.Run("chunks are contiguous, ascending and cover the window", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start.Add(7*day + 5*time.Hour), Period: time.Hour}

		chunks, err := SplitRange(tr, 2*day)

		require.NoError(t, err)
		assert.Equal(t, tr.From, chunks[0].From)
		assert.Equal(t, tr.To, chunks[len(chunks)-1].To)
		for i := 1; i < len(chunks); i++ {
			assert.Equal(t, chunks[i-1].To, chunks[i].From, "gap before chunk %d", i)
			assert.True(t, chunks[i-1].From.Before(chunks[i].From), "chunks out of order at %d", i)
		}
	})

	t.Run("window shorter than the chunk span stays whole", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start.Add(6 * time.Hour), Period: 30 * time.Minute}

		chunks, err := SplitRange(tr, day)

		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, tr.From, chunks[0].From)
		assert.Equal(t, tr.To, chunks[0].To)
	})

	t.Run("rejects an empty window", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start, Period: time.Hour}

		_, err := SplitRange(tr, day)
		require.Error(t, err)
	})

	t.Run("rejects a non-positive chunk span", func(t *testing.T) {
		tr := domain.TimeRange{From: start, To: start.Add(day), Period: time.Hour}

		_, err := SplitRange(tr, 0)
		require.Error(t, err)
	})
}
