// Copyright (C) 2025 SAGE-X Project
//
// This file is part of elo-auth-go.
//
// elo-auth-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// elo-auth-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with elo-auth-go.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads eloauth settings from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ELOAUTH_AUTH_ACCESS_TOKEN.
const EnvPrefix = "ELOAUTH"

// Config holds all configuration for the application.
type Config struct {
	Auth        AuthConfig        `mapstructure:"auth"`
	Certificate CertificateConfig `mapstructure:"certificate"`
	Log         LogConfig         `mapstructure:"log"`
}

// AuthConfig holds the identity and credentials the session signs with.
type AuthConfig struct {
	AccessToken string `mapstructure:"access_token"`
	UUID        string `mapstructure:"uuid"`
	Prefix      string `mapstructure:"prefix"`
}

// CertificateConfig holds certificate service configuration.
type CertificateConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Proxy   string        `mapstructure:"proxy"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json
}

// Validate checks the settings a session needs.
func (c *Config) Validate() error {
	if c.Auth.AccessToken == "" {
		return errors.New("auth.access_token is required")
	}
	if c.Auth.UUID == "" {
		return errors.New("auth.uuid is required")
	}
	if c.Certificate.Timeout <= 0 {
		return fmt.Errorf("certificate.timeout must be positive, got %s", c.Certificate.Timeout)
	}
	return nil
}

// Load reads configuration from files and environment variables.
// If path is empty, config.yaml is searched for in the usual places;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/eloauth")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// AutomaticEnv only sees keys viper already knows about
	_ = v.BindEnv("auth.access_token")
	_ = v.BindEnv("auth.uuid")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("auth.prefix", "")

	v.SetDefault("certificate.url", "https://api.minecraftservices.com/player/certificates")
	v.SetDefault("certificate.timeout", "5s")
	v.SetDefault("certificate.proxy", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
