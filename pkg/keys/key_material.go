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

// Package keys holds the key material issued by the certificate service.
package keys

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"time"

	sagecrypto "github.com/sage-x-project/sage/pkg/agent/crypto"
)

// Params describes the pieces KeyMaterial is built from
type Params struct {
	// KeyPair signs outgoing messages. Required.
	KeyPair sagecrypto.KeyPair

	// PublicKeyDER is the encoded public key sent to receivers.
	// If empty, it is derived from KeyPair.PublicKey() as PKIX DER.
	PublicKeyDER []byte

	// CertificateSignature attests the public key was issued for the identity. Required.
	CertificateSignature []byte

	// ExpiresAt is when the certificate stops being valid. Required.
	ExpiresAt time.Time

	// RefreshedAfter is when the service suggests fetching a new pair. Optional.
	RefreshedAfter time.Time
}

// KeyMaterial is an issued key pair plus its certificate. It is immutable;
// accessors hand out copies.
type KeyMaterial struct {
	keyPair              sagecrypto.KeyPair
	publicKeyDER         []byte
	certificateSignature []byte
	expiresAt            time.Time
	refreshedAfter       time.Time
}

// New validates p and builds KeyMaterial from it
func New(p Params) (*KeyMaterial, error) {
	if p.KeyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	if len(p.CertificateSignature) == 0 {
		return nil, fmt.Errorf("certificate signature cannot be empty")
	}
	if p.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("expiration cannot be zero")
	}

	publicKeyDER := p.PublicKeyDER
	if len(publicKeyDER) == 0 {
		der, err := x509.MarshalPKIXPublicKey(p.KeyPair.PublicKey())
		if err != nil {
			return nil, fmt.Errorf("failed to encode public key: %w", err)
		}
		publicKeyDER = der
	}

	return &KeyMaterial{
		keyPair:              p.KeyPair,
		publicKeyDER:         bytes.Clone(publicKeyDER),
		certificateSignature: bytes.Clone(p.CertificateSignature),
		expiresAt:            p.ExpiresAt,
		refreshedAfter:       p.RefreshedAfter,
	}, nil
}

// KeyPair returns the signing key pair.
func (m *KeyMaterial) KeyPair() sagecrypto.KeyPair {
	return m.keyPair
}

// PublicKeyDER returns a copy of the encoded public key.
func (m *KeyMaterial) PublicKeyDER() []byte {
	return bytes.Clone(m.publicKeyDER)
}

// CertificateSignature returns a copy of the certificate signature bytes.
func (m *KeyMaterial) CertificateSignature() []byte {
	return bytes.Clone(m.certificateSignature)
}

// ExpiresAt returns the certificate expiration instant.
func (m *KeyMaterial) ExpiresAt() time.Time {
	return m.expiresAt
}

// RefreshedAfter returns the suggested refresh instant, or the zero time.
func (m *KeyMaterial) RefreshedAfter() time.Time {
	return m.refreshedAfter
}

// Expired reports whether the certificate is past its expiration at now.
// Nothing enforces this; receivers validate the instant themselves.
func (m *KeyMaterial) Expired(now time.Time) bool {
	return !now.Before(m.expiresAt)
}
