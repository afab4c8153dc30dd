package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

func TestReporter_Handle(t *testing.T) {
	entities := []domain.VirtualEntity{
		{
			ID:   "ve-1",
			Name: "Home",
			Resources: []domain.Resource{
				{ID: "res-1", EntityID: "ve-1", Name: "electricity consumption", Classifier: "electricity.consumption", BaseUnit: "kWh"},
				{ID: "res-2", EntityID: "ve-1", Name: "gas consumption", Classifier: "gas.consumption", BaseUnit: "kWh"},
			},
		},
		{
			ID:   "ve-2",
			Name: "Cabin",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(entities))

	out := buf.String()
	assert.Contains(t, out, "Home [ve-1]")
	assert.Contains(t, out, "- electricity consumption (electricity.consumption, kWh)")
	assert.Contains(t, out, "id: res-1")
	assert.Contains(t, out, "- gas consumption (gas.consumption, kWh)")
	assert.Contains(t, out, "id: res-2")
	assert.Contains(t, out, "Cabin [ve-2]")
}

func TestReporter_Handle_EmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(nil))
	assert.Equal(t, "\n", buf.String())
}
