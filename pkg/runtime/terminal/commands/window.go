package commands

import (
	"fmt"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
	monthLayout    = "2006-01"
)

// resolveWindow turns the window flags into one half-open range. A month
// beats explicit bounds, explicit bounds beat the trailing-days default.
func resolveWindow(now time.Time, from, to, month string, lastDays int, period time.Duration) (domain.TimeRange, error) {
	if month != "" && (from != "" || to != "") {
		return domain.TimeRange{}, fmt.Errorf("--month cannot be combined with --from or --to")
	}

	if month != "" {
		start, err := parseMonth(now, month)
		if err != nil {
			return domain.TimeRange{}, err
		}
		return domain.TimeRange{From: start, To: start.AddDate(0, 1, 0), Period: period}, nil
	}

	if to != "" && from == "" {
		return domain.TimeRange{}, fmt.Errorf("--to requires --from")
	}

	end := now.UTC().Truncate(period)

	if from != "" {
		start, err := parseFlagTime(from)
		if err != nil {
			return domain.TimeRange{}, fmt.Errorf("invalid --from %q: %w", from, err)
		}
		if to != "" {
			end, err = parseFlagTime(to)
			if err != nil {
				return domain.TimeRange{}, fmt.Errorf("invalid --to %q: %w", to, err)
			}
		}
		return domain.TimeRange{From: start, To: end, Period: period}, nil
	}

	if lastDays <= 0 {
		lastDays = 1
	}
	return domain.TimeRange{
		From:   end.Add(-time.Duration(lastDays) * 24 * time.Hour),
		To:     end,
		Period: period,
	}, nil
}

// parseMonth resolves a month selector: the keywords current and previous,
// or an explicit YYYY-MM.
func parseMonth(now time.Time, month string) (time.Time, error) {
	thisMonth := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	switch month {
	case "current":
		return thisMonth, nil
	case "previous":
		return thisMonth.AddDate(0, -1, 0), nil
	}

	start, err := time.ParseInLocation(monthLayout, month, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q, expected YYYY-MM, current or previous", month)
	}
	return start, nil
}

// parseFlagTime accepts a plain date or a full timestamp, both UTC.
func parseFlagTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateTimeLayout, value, time.UTC)
}
