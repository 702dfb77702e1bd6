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
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/elo-auth-go/pkg/session"
)

func newSignCmd(opts *rootOptions) *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sign [payload...]",
		Short: "Print authentication fields for a payload",
		Long: `Fetch the key pair, sign the given payload strings in order and print the
six authentication fields.

Examples:
  eloauth sign "hello"
  eloauth sign --prefix mp- --output json "hello" "world"`,
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

			result := s.CreateMessageFields(ctx, args...)
			if result.Err != nil {
				return fmt.Errorf("failed to sign payload: %w", result.Err)
			}

			return printFields(cmd, output, result.Fields)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the key pair")

	return cmd
}

func printFields(cmd *cobra.Command, output string, fields session.Fields) error {
	out := cmd.OutOrStdout()

	switch output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	case "text":
		for _, field := range fields {
			fmt.Fprintf(out, "%s: %s\n", field.Key, field.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
