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

// Package eloauth provides version information for elo-auth-go and its dependencies.
package eloauth

import "github.com/sage-x-project/elo-auth-go/pkg/version"

const (
	// Version is the current version of elo-auth-go
	Version = version.Version

	// ProtocolVersion is the signing protocol version
	ProtocolVersion = version.ProtocolVersion

	// SAGEVersion is the SAGE core version required
	SAGEVersion = version.SAGEVersion
)

// GetVersionInfo returns detailed version information
func GetVersionInfo() version.Info {
	return version.Get()
}
