package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

// rawSnapshot is the on-disk shape of a pre-normalization capture: the
// resource metadata, the requested window and the readings exactly as the
// server sent them.
type rawSnapshot struct {
	ResourceID         string            `json:"resource_id"`
	ResourceName       string            `json:"resource_name"`
	ResourceUnit       string            `json:"resource_unit"`
	ResourceClassifier string            `json:"resource_classifier"`
	StartDate          string            `json:"start_date"`
	EndDate            string            `json:"end_date"`
	Period             string            `json:"period"`
	TimezoneOffset     int               `json:"timezone_offset"`
	Readings           []api.ReadingPair `json:"readings"`
}

// SnapshotCollector accumulates raw readings payloads during a fetch and
// writes one JSON file per resource and window. Collect plugs into the
// fetcher's OnRaw hook.
type SnapshotCollector struct {
	dir   string
	pairs map[string][]api.ReadingPair
}

func NewSnapshotCollector(dir string) *SnapshotCollector {
	return &SnapshotCollector{
		dir:   dir,
		pairs: make(map[string][]api.ReadingPair),
	}
}

func (sc *SnapshotCollector) Collect(_ context.Context, resource domain.Resource, _ domain.TimeRange, resp *api.ReadingsResponse) error {
	sc.pairs[resource.ID] = append(sc.pairs[resource.ID], resp.Pairs()...)
	return nil
}

// Flush writes everything collected for one resource and forgets it. The
// returned path is empty when the run produced no payloads.
func (sc *SnapshotCollector) Flush(resource domain.Resource, tr domain.TimeRange) (string, error) {
	pairs := sc.pairs[resource.ID]
	delete(sc.pairs, resource.ID)
	if len(pairs) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(sc.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_to_%s.json",
		snapshotBaseName(resource),
		tr.From.UTC().Format("20060102"),
		tr.To.UTC().Format("20060102"))
	path := filepath.Join(sc.dir, name)

	payload := rawSnapshot{
		ResourceID:         resource.ID,
		ResourceName:       resource.Name,
		ResourceUnit:       resource.BaseUnit,
		ResourceClassifier: resource.Classifier,
		StartDate:          tr.From.UTC().Format("2006-01-02T15:04:05"),
		EndDate:            tr.To.UTC().Format("2006-01-02T15:04:05"),
		Period:             glowmarkt.FormatPeriod(tr.Period),
		TimezoneOffset:     0,
		Readings:           pairs,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot for %s: %w", resource.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot %s: %w", path, err)
	}

	return path, nil
}

func snapshotBaseName(resource domain.Resource) string {
	name := resource.Name
	if name == "" {
		name = resource.ID
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, string(filepath.Separator), "_")
}
