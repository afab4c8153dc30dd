package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/energy-tools/glow-atlas/pkg/models/domain"
)

const registryFileName = ".glowmarktcfg"

// Registry reads account profiles from an ini file, one section per
// account. A section either carries username and password or a pre-issued
// token.
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	GetCredentials(ctx context.Context, profile string) (domain.Credentials, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

// DefaultRegistryPath returns ~/.glowmarktcfg.
func DefaultRegistryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, registryFileName), nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.ConfigProfile, error) {
	var profiles []domain.ConfigProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profileType := domain.ProfileTypeAccount
		if section.Key("token").String() != "" {
			profileType = domain.ProfileTypeToken
		}
		profiles = append(profiles, domain.ConfigProfile{Name: section.Name(), Type: profileType})
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetCredentials(_ context.Context, profile string) (domain.Credentials, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("profile %s not found", profile)
	}

	creds := domain.Credentials{
		Username: section.Key("username").String(),
		Password: section.Key("password").String(),
		Token:    section.Key("token").String(),
	}
	if !creds.Usable() {
		return domain.Credentials{}, fmt.Errorf("profile %s has neither credentials nor a token", profile)
	}

	return creds, nil
}

// CredentialsFromEnv reads the account from GLOWMARKT_USERNAME,
// GLOWMARKT_PASSWORD and GLOWMARKT_TOKEN.
func CredentialsFromEnv() domain.Credentials {
	return domain.Credentials{
		Username: os.Getenv("GLOWMARKT_USERNAME"),
		Password: os.Getenv("GLOWMARKT_PASSWORD"),
		Token:    os.Getenv("GLOWMARKT_TOKEN"),
	}
}

// ResolveCredentials picks the credential source: the named profile from
// ~/.glowmarktcfg when given, the environment otherwise.
func ResolveCredentials(ctx context.Context, profile string) (domain.Credentials, error) {
	if profile == "" {
		creds := CredentialsFromEnv()
		if !creds.Usable() {
			return domain.Credentials{}, fmt.Errorf(
				"no credentials: set GLOWMARKT_USERNAME and GLOWMARKT_PASSWORD (or GLOWMARKT_TOKEN), or pass --profile")
		}
		return creds, nil
	}

	path, err := DefaultRegistryPath()
	if err != nil {
		return domain.Credentials{}, err
	}

	registry, err := NewRegistry(path)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("loading %s: %w", path, err)
	}

	return registry.GetCredentials(ctx, profile)
}
