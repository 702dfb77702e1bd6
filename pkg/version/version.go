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

// Package version reports the versions of elo-auth-go and what it speaks.
package version

import (
	"fmt"

	"github.com/sage-x-project/elo-auth-go/pkg/signer"
)

const (
	// Version is the current version of elo-auth-go
	Version = "1.0.0-dev"

	// ProtocolVersion is the signing protocol version mixed into every nonce digest
	ProtocolVersion = signer.ProtocolVersion

	// A2AProtocolVersion is the A2A Protocol version the chat transport speaks
	A2AProtocolVersion = "0.4.0"

	// SAGEVersion is the SAGE core version whose key pair interface is implemented
	SAGEVersion = "1.3.1"

	// A2AGoForkVersion is the a2a-go fork the transport is built against
	A2AGoForkVersion = "v0.0.0-20251026124015-70634d9eddae"
)

// Info contains detailed version information
type Info struct {
	EloAuthVersion     string `json:"eloAuthVersion"`
	ProtocolVersion    string `json:"protocolVersion"`
	A2AProtocolVersion string `json:"a2aProtocolVersion"`
	SAGEVersion        string `json:"sageVersion"`
	A2AGoForkVersion   string `json:"a2aGoForkVersion"`
}

// Get returns detailed version information
func Get() Info {
	return Info{
		EloAuthVersion:     Version,
		ProtocolVersion:    ProtocolVersion,
		A2AProtocolVersion: A2AProtocolVersion,
		SAGEVersion:        SAGEVersion,
		A2AGoForkVersion:   A2AGoForkVersion,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("elo-auth-go %s (protocol %s, a2a %s, sage %s)",
		i.EloAuthVersion, i.ProtocolVersion, i.A2AProtocolVersion, i.SAGEVersion)
}
