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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
	"github.com/sage-x-project/elo-auth-go/pkg/config"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/logging"
	"github.com/sage-x-project/elo-auth-go/pkg/session"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	uuid       string
	prefix     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "eloauth",
		Short: "Sign chat messages with a player certificate key pair",
		Long: `eloauth fetches an RSA key pair from the player certificate service and
uses it to produce authentication fields for outgoing messages.

Settings come from config.yaml and ELOAUTH_* environment variables.

Examples:
  ELOAUTH_AUTH_ACCESS_TOKEN=... eloauth sign --uuid 069a79f4-44e9-4726-a5be-fca90e38aaf5 "hello"
  eloauth fetch --config ./eloauth.yaml
  eloauth version`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.uuid, "uuid", "", "identity to sign for, canonical or high/low form (overrides auth.uuid)")
	cmd.PersistentFlags().StringVar(&opts.prefix, "prefix", "", "field name prefix (overrides auth.prefix)")

	cmd.AddCommand(newSignCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfig reads config and applies flag overrides
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("uuid") {
		cfg.Auth.UUID = o.uuid
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Auth.Prefix = o.prefix
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSession builds a session from cfg and waits for it to become Ready
func openSession(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*session.Session, error) {
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	id, err := identity.Parse(cfg.Auth.UUID)
	if err != nil {
		return nil, err
	}

	fetcher, err := certificate.NewHTTPFetcher(certificate.HTTPConfig{
		URL:      cfg.Certificate.URL,
		Timeout:  cfg.Certificate.Timeout,
		ProxyURL: cfg.Certificate.Proxy,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}

	s, err := session.New(session.Options{
		Identity:     id,
		Fetcher:      fetcher,
		Prefix:       cfg.Auth.Prefix,
		Logger:       &logger,
		FetchTimeout: cfg.Certificate.Timeout,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Initialize(certificate.Credentials{AccessToken: cfg.Auth.AccessToken}); err != nil {
		return nil, err
	}

	return s.Wait(ctx)
}
