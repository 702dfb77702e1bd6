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
	"time"

	"github.com/spf13/cobra"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the key pair and show its certificate details",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			s, err := openSession(ctx, cmd, cfg)
			if err != nil {
				return fmt.Errorf("failed to create authentication: %w", err)
			}

			material := s.KeyMaterial()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identity:        %s (%s)\n", s.Identity(), s.Identity().Bits())
			fmt.Fprintf(out, "Key ID:          %s\n", material.KeyPair().ID())
			fmt.Fprintf(out, "Key type:        %s\n", material.KeyPair().Type())
			fmt.Fprintf(out, "Expires at:      %s\n", material.ExpiresAt().UTC().Format(time.RFC3339))
			if !material.RefreshedAfter().IsZero() {
				fmt.Fprintf(out, "Refresh after:   %s\n", material.RefreshedAfter().UTC().Format(time.RFC3339))
			}
			if material.Expired(time.Now()) {
				fmt.Fprintln(out, "Status:          expired")
			} else {
				fmt.Fprintln(out, "Status:          valid")
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the key pair")

	return cmd
}
