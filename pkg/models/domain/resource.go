package domain

import (
	"strings"
	"time"
)

const (
	ClassifierElectricityConsumption = "electricity.consumption"
	ClassifierElectricityCost        = "electricity.consumption.cost"
	ClassifierGasConsumption         = "gas.consumption"
	ClassifierGasCost                = "gas.consumption.cost"
)

// VirtualEntity is a Glowmarkt grouping of resources, typically one per
// metered property.
type VirtualEntity struct {
	ID        string
	Name      string
	Resources []Resource
}

// Resource is a single retrievable series, e.g. half-hourly electricity
// consumption for one meter.
type Resource struct {
	ID         string
	EntityID   string
	Name       string
	Classifier string
	BaseUnit   string
}

func (r Resource) IsConsumption() bool {
	return strings.HasSuffix(r.Classifier, ".consumption")
}

func (r Resource) Fuel() string {
	if i := strings.IndexByte(r.Classifier, '.'); i > 0 {
		return r.Classifier[:i]
	}
	return r.Classifier
}

// ResourceStats summarizes what the archive holds for one resource.
type ResourceStats struct {
	RecordsCount    int64
	FirstRecordTime *time.Time
	LastRecordTime  *time.Time
}

// ConsumptionOnly filters a resource list down to the consumption series,
// dropping cost and tariff resources.
func ConsumptionOnly(resources []Resource) []Resource {
	kept := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if r.IsConsumption() {
			kept = append(kept, r)
		}
	}
	return kept
}
