// Package config loads application settings and resolves Glowmarkt account
// credentials from the environment or from profiles in ~/.glowmarktcfg.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ApiSettings struct {
	BaseURL       string        `mapstructure:"base_url"`
	ApplicationID string        `mapstructure:"application_id"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
}

type FetchSettings struct {
	ChunkDays      int           `mapstructure:"chunk_days"`
	Period         time.Duration `mapstructure:"period"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type ArchiveSettings struct {
	Path string `mapstructure:"path"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

type Settings struct {
	Api     ApiSettings     `mapstructure:"api"`
	Fetch   FetchSettings   `mapstructure:"fetch"`
	Archive ArchiveSettings `mapstructure:"archive"`
	Server  ServerSettings  `mapstructure:"server"`
}

// LoadSettings reads settings from the given file. An empty path yields the
// defaults, so every knob is optional.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.min_interval", 500*time.Millisecond)
	v.SetDefault("fetch.chunk_days", 10)
	v.SetDefault("fetch.period", 30*time.Minute)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.initial_backoff", time.Second)
	v.SetDefault("fetch.max_backoff", 30*time.Second)
	v.SetDefault("archive.path", "glow-atlas.db")
	v.SetDefault("server.addr", ":8080")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return &settings, nil
}

func (f FetchSettings) ChunkSpan() time.Duration {
	return time.Duration(f.ChunkDays) * 24 * time.Hour
}
