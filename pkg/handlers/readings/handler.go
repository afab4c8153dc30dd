package readings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

const (
	dateLayout = "2006-01-02"
	// defaultWindowDays bounds the readings window when the caller gives none.
	defaultWindowDays = 7
)

// Archive is the slice of the archive service the HTTP handlers read from.
type Archive interface {
	ListResources(ctx context.Context) ([]domain.Resource, error)
	GetResource(ctx context.Context, resourceID string) (*domain.Resource, error)
	GetReadings(ctx context.Context, resourceID string, from, to time.Time) ([]domain.Reading, error)
	GetDailyTotals(ctx context.Context, resourceID string, from, to *time.Time) ([]domain.DailyTotal, error)
	GetStats(ctx context.Context, resourceID string) (*domain.ResourceStats, error)
}

type Router struct {
	archive Archive
}

func NewRouter(archive Archive) *Router {
	return &Router{archive: archive}
}

func (router *Router) ListResources(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	resources, err := router.archive.ListResources(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list archived resources")
		http.Error(w, "failed to list resources", http.StatusInternalServerError)
		return
	}

	response := make([]api.ArchivedResource, 0, len(resources))
	for _, resource := range resources {
		stats, err := router.archive.GetStats(ctx, resource.ID)
		if err != nil {
			logger.Error().Err(err).Str("resource_id", resource.ID).Msg("failed to load resource stats")
			http.Error(w, "failed to list resources", http.StatusInternalServerError)
			return
		}
		response = append(response, adapters.MapDomainResourceToApi(resource, stats))
	}

	writeJSON(w, logger, response)
}

func (router *Router) GetResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resourceID := chi.URLParam(r, "resource")

	resource, err := router.archive.GetResource(ctx, resourceID)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load resource")
		http.Error(w, "failed to load resource", http.StatusInternalServerError)
		return
	}
	if resource == nil {
		http.Error(w, fmt.Sprintf("resource %q not found", resourceID), http.StatusNotFound)
		return
	}

	stats, err := router.archive.GetStats(ctx, resourceID)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load resource stats")
		http.Error(w, "failed to load resource", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, adapters.MapDomainResourceToApi(*resource, stats))
}

func (router *Router) GetReadings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resourceID := chi.URLParam(r, "resource")

	now := time.Now().UTC()
	to, err := parseDateParam(r, "to", now)
	if err != nil {
		http.Error(w, "invalid 'to' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	from, err := parseDateParam(r, "from", to.AddDate(0, 0, -defaultWindowDays))
	if err != nil {
		http.Error(w, "invalid 'from' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	resource, err := router.archive.GetResource(ctx, resourceID)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load resource")
		http.Error(w, "failed to load readings", http.StatusInternalServerError)
		return
	}
	if resource == nil {
		http.Error(w, fmt.Sprintf("resource %q not found", resourceID), http.StatusNotFound)
		return
	}

	records, err := router.archive.GetReadings(ctx, resourceID, from, to)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load readings")
		http.Error(w, "failed to load readings", http.StatusInternalServerError)
		return
	}

	response := make([]api.Reading, 0, len(records))
	for _, rec := range records {
		response = append(response, adapters.MapDomainReadingToApi(rec))
	}

	writeJSON(w, logger, response)
}

func (router *Router) GetDailyTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	resourceID := chi.URLParam(r, "resource")

	var from, to *time.Time
	if bound, err := parseDateParam(r, "from", time.Time{}); err != nil {
		http.Error(w, "invalid 'from' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
		return
	} else if !bound.IsZero() {
		from = &bound
	}
	if bound, err := parseDateParam(r, "to", time.Time{}); err != nil {
		http.Error(w, "invalid 'to' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
		return
	} else if !bound.IsZero() {
		to = &bound
	}

	resource, err := router.archive.GetResource(ctx, resourceID)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load resource")
		http.Error(w, "failed to load daily totals", http.StatusInternalServerError)
		return
	}
	if resource == nil {
		http.Error(w, fmt.Sprintf("resource %q not found", resourceID), http.StatusNotFound)
		return
	}

	totals, err := router.archive.GetDailyTotals(ctx, resourceID, from, to)
	if err != nil {
		logger.Error().Err(err).Str("resource_id", resourceID).Msg("failed to load daily totals")
		http.Error(w, "failed to load daily totals", http.StatusInternalServerError)
		return
	}

	response := make([]api.DailyTotal, 0, len(totals))
	for _, total := range totals {
		response = append(response, adapters.MapDomainDailyTotalToApi(total))
	}

	writeJSON(w, logger, response)
}

func parseDateParam(r *http.Request, name string, defaultDate time.Time) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultDate, nil
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %q date: %w", name, err)
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
