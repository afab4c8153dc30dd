// Package charts renders consumption series as PNG images.
package charts

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

// RenderSeries draws a reading-per-point consumption line. Readings must be
// in ascending timestamp order, the way the archive returns them.
func RenderSeries(w io.Writer, resource domain.Resource, series []domain.Reading) error {
	if len(series) == 0 {
		return fmt.Errorf("nothing to chart for %s", resource.ID)
	}

	xs := make([]time.Time, 0, len(series))
	ys := make([]float64, 0, len(series))
	for _, r := range series {
		xs = append(xs, r.Timestamp)
		ys = append(ys, r.Value)
	}

	unit := series[0].Unit
	if unit == "" {
		unit = resource.BaseUnit
	}

	graph := chart.Chart{
		Title: chartTitle(resource),
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: unit,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    resource.ID,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					FillColor:   chart.ColorBlue.WithAlpha(64),
				},
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

// RenderDailyTotals draws one bar per day. Totals must be in ascending date
// order, the way the archive returns them.
func RenderDailyTotals(w io.Writer, resource domain.Resource, totals []domain.DailyTotal) error {
	if len(totals) == 0 {
		return fmt.Errorf("nothing to chart for %s", resource.ID)
	}

	bars := make([]chart.Value, 0, len(totals))
	for _, d := range totals {
		bars = append(bars, chart.Value{
			Label: d.Date.Format("01-02"),
			Value: d.Total,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(192),
			},
		})
	}

	unit := totals[0].Unit
	if unit == "" {
		unit = resource.BaseUnit
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s, daily", chartTitle(resource)),
		BarWidth: 28,
		// Anchor bars at zero, otherwise the shortest day renders flat.
		UseBaseValue: true,
		YAxis: chart.YAxis{
			Name: unit,
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func chartTitle(resource domain.Resource) string {
	if resource.Name != "" {
		return resource.Name
	}
	return resource.Classifier
}
