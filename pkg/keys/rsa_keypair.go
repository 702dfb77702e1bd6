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

package keys

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	sagecrypto "github.com/sage-x-project/sage/pkg/agent/crypto"
)

// KeyTypeRSA identifies RSA key pairs issued by the certificate service.
const KeyTypeRSA sagecrypto.KeyType = "rsa"

// RSAKeyPair is a sagecrypto.KeyPair backed by an RSA key.
// Sign produces SHA256withRSA (RSASSA-PKCS1-v1_5 over SHA-256) signatures.
//
// The private key never leaves the pair: PrivateKey always returns nil.
type RSAKeyPair struct {
	id         string
	privateKey *rsa.PrivateKey
}

// NewRSAKeyPair wraps an RSA private key
func NewRSAKeyPair(privateKey *rsa.PrivateKey) (*RSAKeyPair, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public key: %w", err)
	}
	sum := sha256.Sum256(der)

	return &RSAKeyPair{
		id:         hex.EncodeToString(sum[:8]),
		privateKey: privateKey,
	}, nil
}

// GenerateRSAKeyPair creates a fresh RSA key pair of the given size
func GenerateRSAKeyPair(bits int) (*RSAKeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	return NewRSAKeyPair(privateKey)
}

// ID returns a short fingerprint of the public key.
func (k *RSAKeyPair) ID() string {
	return k.id
}

// PublicKey returns the *rsa.PublicKey.
func (k *RSAKeyPair) PublicKey() stdcrypto.PublicKey {
	return &k.privateKey.PublicKey
}

// PrivateKey returns nil.
func (k *RSAKeyPair) PrivateKey() stdcrypto.PrivateKey {
	return nil
}

// Type returns KeyTypeRSA.
func (k *RSAKeyPair) Type() sagecrypto.KeyType {
	return KeyTypeRSA
}

// Sign hashes message with SHA-256 and signs the digest with PKCS#1 v1.5.
func (k *RSAKeyPair) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	signature, err := rsa.SignPKCS1v15(rand.Reader, k.privateKey, stdcrypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("rsa sign: %w", err)
	}
	return signature, nil
}

// Verify checks a signature produced by Sign.
func (k *RSAKeyPair) Verify(message, signature []byte) error {
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPKCS1v15(&k.privateKey.PublicKey, stdcrypto.SHA256, digest[:], signature); err != nil {
		return fmt.Errorf("rsa verify: %w", err)
	}
	return nil
}
