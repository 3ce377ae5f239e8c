// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenClaw Contributors

package config

import (
	"errors"
	"net"
	"strconv"
	"strings"

	recallerr "github.com/openclaw/recall/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the top-level Recall configuration.
type Config struct {
	DataDir   string                    `mapstructure:"data_dir"`
	Memory    MemoryConfig              `mapstructure:"memory"`
	Graph     GraphConfig               `mapstructure:"graph"`
	Server    ServerConfig              `mapstructure:"server"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
}

// MemoryConfig controls the vector memory store.
type MemoryConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
	IndexPath  string `mapstructure:"index_path"`
}

// GraphConfig holds the knowledge graph backend settings.
type GraphConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
	AppToken  string `mapstructure:"app_token"`
	TableID   string `mapstructure:"table_id"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// ProviderConfig holds credentials and endpoint for an embedding provider.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// SetDefaults installs the default values on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("memory.provider", "openai")
	v.SetDefault("memory.model", "")
	v.SetDefault("memory.dimensions", 1024)
	v.SetDefault("graph.endpoint", "https://open.feishu.cn")
	v.SetDefault("server.listen", "127.0.0.1:18790")
}

// SetupEnv binds RECALL_* environment variables (dots become underscores).
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates the configuration held by a Viper
// instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix RECALL_).
func Load(path string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, recallerr.Errorf(recallerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateMemory()...)
	errs = append(errs, c.validateServer()...)

	return errs
}

func (c *Config) validateMemory() []error {
	var errs []error

	validProviders := map[string]bool{"openai": true, "google": true, "mock": true}
	if !validProviders[c.Memory.Provider] {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: memory.provider must be one of [openai, google, mock], got %q",
			c.Memory.Provider,
		))
	}

	if c.Memory.Dimensions <= 0 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: memory.dimensions must be greater than 0, got %d",
			c.Memory.Dimensions,
		))
	}

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue, "config: server.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Server.Listen)
	if err != nil {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: server.listen must be a valid host:port address, got %q: %w",
			c.Server.Listen, err,
		))
		return errs
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be a number, got %q",
			portStr,
		))
	} else if port < 1 || port > 65535 {
		errs = append(errs, recallerr.Errorf(recallerr.CodeConfigValidateInvalidValue,
			"config: server.listen port must be between 1 and 65535, got %d",
			port,
		))
	}

	return errs
}
