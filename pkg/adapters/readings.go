package adapters

import (
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/models/store"
)

func MapApiVirtualEntityToDomain(ve api.VirtualEntity) domain.VirtualEntity {
	return domain.VirtualEntity{
		ID:   ve.VeID,
		Name: ve.Name,
	}
}

func MapApiResourceToDomain(entityID string, r api.Resource) domain.Resource {
	return domain.Resource{
		ID:         r.ResourceID,
		EntityID:   entityID,
		Name:       r.Name,
		Classifier: r.Classifier,
		BaseUnit:   r.BaseUnit,
	}
}

func MapDomainReadingToStoreRecord(r domain.Reading) store.ReadingRecord {
	return store.ReadingRecord{
		ResourceID: r.ResourceID,
		Timestamp:  r.Timestamp,
		Value:      r.Value,
		Unit:       r.Unit,
	}
}

func MapStoreRecordToDomainReading(rec store.ReadingRecord) domain.Reading {
	return domain.Reading{
		ResourceID: rec.ResourceID,
		Timestamp:  rec.Timestamp,
		Value:      rec.Value,
		Unit:       rec.Unit,
	}
}

func MapDomainReadingToApi(r domain.Reading) api.Reading {
	return api.Reading{
		ResourceID:   r.ResourceID,
		TimestampUTC: r.Timestamp.UTC().Format(time.RFC3339),
		Value:        r.Value,
		Unit:         r.Unit,
	}
}

func MapDomainResourceToStoreRecord(r domain.Resource) store.ResourceRecord {
	return store.ResourceRecord{
		ResourceID: r.ID,
		EntityID:   r.EntityID,
		Name:       r.Name,
		Classifier: r.Classifier,
		BaseUnit:   r.BaseUnit,
	}
}

func MapStoreResourceToDomain(rec store.ResourceRecord) domain.Resource {
	return domain.Resource{
		ID:         rec.ResourceID,
		EntityID:   rec.EntityID,
		Name:       rec.Name,
		Classifier: rec.Classifier,
		BaseUnit:   rec.BaseUnit,
	}
}

func MapDomainResourceToApi(r domain.Resource, stats *domain.ResourceStats) api.ArchivedResource {
	out := api.ArchivedResource{
		ResourceID: r.ID,
		EntityID:   r.EntityID,
		Name:       r.Name,
		Classifier: r.Classifier,
		BaseUnit:   r.BaseUnit,
	}
	if stats == nil {
		return out
	}

	out.ReadingCount = int(stats.RecordsCount)
	if stats.FirstRecordTime != nil {
		out.FirstReading = stats.FirstRecordTime.UTC().Format(time.RFC3339)
	}
	if stats.LastRecordTime != nil {
		out.LastReading = stats.LastRecordTime.UTC().Format(time.RFC3339)
	}
	return out
}

func MapStoreDailyAggregateToDomain(d store.DailyReadingAggregate) domain.DailyTotal {
	return domain.DailyTotal{
		Date:  d.Date,
		Total: d.Total,
		Count: int(d.Count),
		Unit:  d.Unit,
	}
}

func MapDomainDailyTotalToApi(d domain.DailyTotal) api.DailyTotal {
	return api.DailyTotal{
		Date:             d.Date.UTC().Format("2006-01-02"),
		ConsumptionTotal: d.Total,
		ReadingCount:     d.Count,
	}
}

func MapReadingStatsStoreToDomain(stats *store.ReadingStats) *domain.ResourceStats {
	if stats == nil {
		return nil
	}

	return &domain.ResourceStats{
		RecordsCount:    stats.RecordsCount,
		FirstRecordTime: stats.FirstRecordTime,
		LastRecordTime:  stats.LastRecordTime,
	}
}
