// Package registry turns named credential profiles into ready-to-use
// Glowmarkt service stacks.
package registry

import (
	"context"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/services/auth"
	"github.com/energy-tools/glow-atlas/pkg/services/catalog"
	"github.com/energy-tools/glow-atlas/pkg/services/config"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

// Gateway bundles the authenticated client stack for one account.
type Gateway struct {
	Client  *glowmarkt.Client
	Auth    auth.Manager
	Catalog catalog.Explorer
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	// Connect resolves the profile's credentials and wires a client, session
	// manager and catalog explorer around them. An empty profile falls back
	// to the GLOWMARKT_* environment variables.
	Connect(ctx context.Context, profile string) (*Gateway, error)
}

type registry struct {
	api config.ApiSettings
}

func NewRegistry(api config.ApiSettings) Registry {
	return &registry{api: api}
}

func (r *registry) GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error) {
	path, err := config.DefaultRegistryPath()
	if err != nil {
		return nil, err
	}

	cfgRegistry, err := config.NewRegistry(path)
	if err != nil {
		return nil, err
	}

	return cfgRegistry.GetProfiles(ctx)
}

func (r *registry) Connect(ctx context.Context, profile string) (*Gateway, error) {
	creds, err := config.ResolveCredentials(ctx, profile)
	if err != nil {
		return nil, err
	}

	client := glowmarkt.NewClient(glowmarkt.Config{
		BaseURL:       r.api.BaseURL,
		ApplicationID: r.api.ApplicationID,
		Timeout:       r.api.Timeout,
		MinInterval:   r.api.MinInterval,
	})
	authManager := auth.NewManager(client, creds)

	return &Gateway{
		Client:  client,
		Auth:    authManager,
		Catalog: catalog.NewExplorer(client, authManager),
	}, nil
}
