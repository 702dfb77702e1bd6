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

// Package identity holds the 128-bit user identifier a signing key pair is bound to.
package identity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Identity is an immutable 128-bit user identifier.
type Identity struct {
	id uuid.UUID
}

// New wraps a UUID as an Identity
func New(id uuid.UUID) Identity {
	return Identity{id: id}
}

// FromBits builds an Identity from its most and least significant 64 bits.
func FromBits(high, low int64) Identity {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], uint64(high))
	binary.BigEndian.PutUint64(id[8:], uint64(low))
	return Identity{id: id}
}

// Parse accepts either the canonical UUID text form
// ("00000000-0000-0000-0000-000000000001") or the bits form ("0/1").
func Parse(s string) (Identity, error) {
	if high, low, ok := strings.Cut(s, "/"); ok {
		h, err := strconv.ParseInt(high, 10, 64)
		if err != nil {
			return Identity{}, fmt.Errorf("invalid identity high bits %q: %w", high, err)
		}
		l, err := strconv.ParseInt(low, 10, 64)
		if err != nil {
			return Identity{}, fmt.Errorf("invalid identity low bits %q: %w", low, err)
		}
		return FromBits(h, l), nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	return Identity{id: id}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Identity {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// High returns the most significant 64 bits as a signed integer.
func (i Identity) High() int64 {
	return int64(binary.BigEndian.Uint64(i.id[:8]))
}

// Low returns the least significant 64 bits as a signed integer.
func (i Identity) Low() int64 {
	return int64(binary.BigEndian.Uint64(i.id[8:]))
}

// Bits renders the identity as "<high>/<low>" in decimal.
// This is the form fed to the signature and sent on the wire.
func (i Identity) Bits() string {
	return strconv.FormatInt(i.High(), 10) + "/" + strconv.FormatInt(i.Low(), 10)
}

// UUID returns the underlying UUID
func (i Identity) UUID() uuid.UUID {
	return i.id
}

// IsZero reports whether the identity is the nil UUID.
func (i Identity) IsZero() bool {
	return i.id == uuid.Nil
}

// String returns the canonical UUID text form.
func (i Identity) String() string {
	return i.id.String()
}
