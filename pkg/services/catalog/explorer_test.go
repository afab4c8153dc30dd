package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

// stubGateway simulates the Glowmarkt catalog endpoints. Tokens listed in
// rejected fail with an AuthError, which is how expiry shows up server-side.
type stubGateway struct {
	entities  []api.VirtualEntity
	resources map[string][]api.Resource
	rejected  map[string]bool

	entityCalls   int
	resourceCalls int
}

func (s *stubGateway) GetVirtualEntities(_ context.Context, token string) ([]api.VirtualEntity, error) {
	s.entityCalls++
	if s.rejected[token] {
		return nil, &glowmarkt.AuthError{StatusCode: 401, Message: "token expired"}
	}
	return s.entities, nil
}

func (s *stubGateway) GetResources(_ context.Context, token, veID string) (*api.VirtualEntityResources, error) {
	s.resourceCalls++
	if s.rejected[token] {
		return nil, &glowmarkt.AuthError{StatusCode: 401, Message: "token expired"}
	}
	return &api.VirtualEntityResources{VeID: veID, Resources: s.resources[veID]}, nil
}

// stubAuth hands out tokens in order; EnsureValid sticks with the current
// one and Refresh advances to the next.
type stubAuth struct {
	tokens  []string
	current int

	ensureCalls  int
	refreshCalls int
}

func (s *stubAuth) Authenticate(_ context.Context) (*domain.Session, error) {
	return &domain.Session{Token: s.tokens[s.current]}, nil
}

func (s *stubAuth) EnsureValid(_ context.Context) (*domain.Session, error) {
	s.ensureCalls++
	return &domain.Session{Token: s.tokens[s.current]}, nil
}

func (s *stubAuth) Refresh(_ context.Context, _ *domain.Session) (*domain.Session, error) {
	s.refreshCalls++
	if s.current < len(s.tokens)-1 {
		s.current++
	}
	return &domain.Session{Token: s.tokens[s.current]}, nil
}

func TestExplorer_ListVirtualEntities(t *testing.T) {
	t.Run("maps entities into the domain", func(t *testing.T) {
		gateway := &stubGateway{entities: []api.VirtualEntity{
			{VeID: "ve-1", Name: "Home"},
			{VeID: "ve-2", Name: "Office"},
		}}

		ex := NewExplorer(gateway, &stubAuth{tokens: []string{"tok"}})
		entities, err := ex.ListVirtualEntities(context.Background())

		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, domain.VirtualEntity{ID: "ve-1", Name: "Home"}, entities[0])
	})

	t.Run("rejects an entry without an id", func(t *testing.T) {
		gateway := &stubGateway{entities: []api.VirtualEntity{{Name: "nameless"}}}

		ex := NewExplorer(gateway, &stubAuth{tokens: []string{"tok"}})
		_, err := ex.ListVirtualEntities(context.Background())

		require.Error(t, err)
		assert.True(t, glowmarkt.IsCatalogError(err))
	})

	t.Run("retries once after a token rejection", func(t *testing.T) {
		gateway := &stubGateway{
			entities: []api.VirtualEntity{{VeID: "ve-1", Name: "Home"}},
			rejected: map[string]bool{"stale": true},
		}
		authStub := &stubAuth{tokens: []string{"stale", "fresh"}}

		ex := NewExplorer(gateway, authStub)
		entities, err := ex.ListVirtualEntities(context.Background())

		require.NoError(t, err)
		assert.Len(t, entities, 1)
		assert.Equal(t, 1, authStub.refreshCalls)
		assert.Equal(t, 2, gateway.entityCalls)
	})

	t.Run("gives up when the refreshed token is also rejected", func(t *testing.T) {
		gateway := &stubGateway{
			rejected: map[string]bool{"stale": true, "also-stale": true},
		}
		authStub := &stubAuth{tokens: []string{"stale", "also-stale"}}

		ex := NewExplorer(gateway, authStub)
		_, err := ex.ListVirtualEntities(context.Background())

		require.Error(t, err)
		assert.True(t, glowmarkt.IsAuthError(err))
		assert.Equal(t, 1, authStub.refreshCalls)
		assert.Equal(t, 2, gateway.entityCalls)
	})
}

func TestExplorer_ListResources(t *testing.T) {
	t.Run("attaches the entity id to each resource", func(t *testing.T) {
		gateway := &stubGateway{resources: map[string][]api.Resource{
			"ve-1": {
				{ResourceID: "res-1", Classifier: "electricity.consumption", BaseUnit: "kWh", Name: "electricity"},
			},
		}}

		ex := NewExplorer(gateway, &stubAuth{tokens: []string{"tok"}})
		resources, err := ex.ListResources(context.Background(), "ve-1")

		require.NoError(t, err)
		require.Len(t, resources, 1)
		assert.Equal(t, "ve-1", resources[0].EntityID)
		assert.Equal(t, "electricity.consumption", resources[0].Classifier)
	})

	t.Run("rejects an entry without a resource id", func(t *testing.T) {
		gateway := &stubGateway{resources: map[string][]api.Resource{
			"ve-1": {{Classifier: "gas.consumption"}},
		}}

		ex := NewExplorer(gateway, &stubAuth{tokens: []string{"tok"}})
		_, err := ex.ListResources(context.Background(), "ve-1")

		require.Error(t, err)
		assert.True(t, glowmarkt.IsCatalogError(err))
	})
}

func TestExplorer_Discover(t *testing.T) {
	gateway := &stubGateway{
		entities: []api.VirtualEntity{{VeID: "ve-1", Name: "Home"}},
		resources: map[string][]api.Resource{
			"ve-1": {
				{ResourceID: "res-1", Classifier: "electricity.consumption", BaseUnit: "kWh"},
				{ResourceID: "res-2", Classifier: "gas.consumption", BaseUnit: "m3"},
			},
		},
	}

	ex := NewExplorer(gateway, &stubAuth{tokens: []string{"tok"}})
	entities, err := ex.Discover(context.Background())

	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Len(t, entities[0].Resources, 2)
	assert.Equal(t, "res-2", entities[0].Resources[1].ID)
}
