package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func chartResource() domain.Resource {
	return domain.Resource{
		ID:         "res-1",
		Name:       "electricity consumption",
		Classifier: "electricity.consumption",
		BaseUnit:   "kWh",
	}
}

func TestRenderSeries(t *testing.T) {
	t.Run("produces a png", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		series := make([]domain.Reading, 0, 2*48)
		for i := 0; i < 2*48; i++ {
			series = append(series, domain.Reading{
				ResourceID: "res-1",
				Timestamp:  start.Add(time.Duration(i) * 30 * time.Minute),
				Value:      0.1 + float64(i%7)*0.05,
				Unit:       "kWh",
			})
		}

		var buf bytes.Buffer
		require.NoError(t, RenderSeries(&buf, chartResource(), series))

		require.Greater(t, buf.Len(), len(pngMagic))
		assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
	})

	t.Run("refuses an empty series", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderSeries(&buf, chartResource(), nil)
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})
}

func TestRenderDailyTotals(t *testing.T) {
	t.Run("produces a png", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		totals := make([]domain.DailyTotal, 0, 14)
		for i := 0; i < 14; i++ {
			totals = append(totals, domain.DailyTotal{
				Date:  start.AddDate(0, 0, i),
				Total: 8.0 + float64(i%5),
				Count: 48,
				Unit:  "kWh",
			})
		}

		var buf bytes.Buffer
		require.NoError(t, RenderDailyTotals(&buf, chartResource(), totals))

		require.Greater(t, buf.Len(), len(pngMagic))
		assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
	})

	t.Run("renders a single day", func(t *testing.T) {
		totals := []domain.DailyTotal{{
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Total: 11.2,
			Count: 48,
			Unit:  "kWh",
		}}

		var buf bytes.Buffer
		require.NoError(t, RenderDailyTotals(&buf, chartResource(), totals))
		assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
	})

	t.Run("refuses an empty series", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderDailyTotals(&buf, chartResource(), nil)
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})
}
