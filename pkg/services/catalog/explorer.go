// Package catalog discovers what the Glowmarkt account can see: virtual
// entities and the resources hanging off them.
package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/adapters"
	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/auth"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

// GatewayClient is the slice of the Glowmarkt client the explorer needs.
type GatewayClient interface {
	GetVirtualEntities(ctx context.Context, token string) ([]api.VirtualEntity, error)
	GetResources(ctx context.Context, token, veID string) (*api.VirtualEntityResources, error)
}

type Explorer interface {
	// ListVirtualEntities returns the entities visible to the account,
	// without their resources.
	ListVirtualEntities(ctx context.Context) ([]domain.VirtualEntity, error)
	// ListResources returns the resources attached to one virtual entity.
	ListResources(ctx context.Context, veID string) ([]domain.Resource, error)
	// Discover walks the whole catalog and returns entities with their
	// resources attached.
	Discover(ctx context.Context) ([]domain.VirtualEntity, error)
}

type explorer struct {
	client GatewayClient
	auth   auth.Manager
}

func NewExplorer(client GatewayClient, authManager auth.Manager) Explorer {
	return &explorer{client: client, auth: authManager}
}

func (e *explorer) ListVirtualEntities(ctx context.Context) ([]domain.VirtualEntity, error) {
	var raw []api.VirtualEntity
	err := e.withToken(ctx, func(token string) error {
		var callErr error
		raw, callErr = e.client.GetVirtualEntities(ctx, token)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("listing virtual entities: %w", err)
	}

	entities := make([]domain.VirtualEntity, 0, len(raw))
	for _, ve := range raw {
		if ve.VeID == "" {
			return nil, &glowmarkt.CatalogError{
				StatusCode: http.StatusOK,
				Message:    "virtual entity entry without veId",
			}
		}
		entities = append(entities, adapters.MapApiVirtualEntityToDomain(ve))
	}

	zerolog.Ctx(ctx).Debug().Int("count", len(entities)).Msg("listed virtual entities")
	return entities, nil
}

func (e *explorer) ListResources(ctx context.Context, veID string) ([]domain.Resource, error) {
	var raw *api.VirtualEntityResources
	err := e.withToken(ctx, func(token string) error {
		var callErr error
		raw, callErr = e.client.GetResources(ctx, token, veID)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("listing resources for %s: %w", veID, err)
	}

	resources := make([]domain.Resource, 0, len(raw.Resources))
	for _, r := range raw.Resources {
		if r.ResourceID == "" {
			return nil, &glowmarkt.CatalogError{
				StatusCode: http.StatusOK,
				Message:    fmt.Sprintf("resource entry without resourceId under entity %s", veID),
			}
		}
		resources = append(resources, adapters.MapApiResourceToDomain(veID, r))
	}

	zerolog.Ctx(ctx).Debug().
		Str("entity_id", veID).
		Int("count", len(resources)).
		Msg("listed resources")

	return resources, nil
}

func (e *explorer) Discover(ctx context.Context) ([]domain.VirtualEntity, error) {
	entities, err := e.ListVirtualEntities(ctx)
	if err != nil {
		return nil, err
	}

	for i := range entities {
		resources, err := e.ListResources(ctx, entities[i].ID)
		if err != nil {
			return nil, err
		}
		entities[i].Resources = resources
	}

	return entities, nil
}

// withToken runs fn with a valid token. A rejection triggers exactly one
// refresh and one more attempt.
func (e *explorer) withToken(ctx context.Context, fn func(token string) error) error {
	session, err := e.auth.EnsureValid(ctx)
	if err != nil {
		return err
	}

	err = fn(session.Token)
	if err == nil || !glowmarkt.IsAuthError(err) {
		return err
	}

	session, refreshErr := e.auth.Refresh(ctx, session)
	if refreshErr != nil {
		return refreshErr
	}

	return fn(session.Token)
}
