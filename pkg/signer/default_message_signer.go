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

package signer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/sage-x-project/sage/pkg/agent/crypto"

	"github.com/sage-x-project/elo-auth-go/pkg/identity"
)

// SigningError reports a failed signing operation. Callers must not
// substitute a fallback signature.
type SigningError struct {
	Op  string
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %s: %v", e.Op, e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// DefaultMessageSigner implements MessageSigner with digest-then-sign over
// the canonical byte stream.
type DefaultMessageSigner struct{}

// NewDefaultMessageSigner creates a new DefaultMessageSigner
func NewDefaultMessageSigner() *DefaultMessageSigner {
	return &DefaultMessageSigner{}
}

// Sign signs the canonical bytes with keyPair
func (s *DefaultMessageSigner) Sign(ctx context.Context, keyPair crypto.KeyPair, sender identity.Identity, nonce int64, payload ...string) ([]byte, error) {
	// Check context
	if err := ctx.Err(); err != nil {
		return nil, &SigningError{Op: "context", Err: err}
	}

	if keyPair == nil {
		return nil, &SigningError{Op: "init", Err: fmt.Errorf("key pair cannot be nil")}
	}

	signature, err := keyPair.Sign(Canonicalize(sender, nonce, payload...))
	if err != nil {
		return nil, &SigningError{Op: "sign", Err: err}
	}
	if len(signature) == 0 {
		return nil, &SigningError{Op: "sign", Err: fmt.Errorf("empty signature")}
	}

	return signature, nil
}

// Digest hashes the decimal nonce followed by the protocol version with SHA-256.
func Digest(nonce int64) []byte {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(nonce, 10)))
	h.Write([]byte(ProtocolVersion))
	return h.Sum(nil)
}

// Canonicalize builds the exact byte stream that gets signed:
//
//	"<high>/<low>" || base64(Digest(nonce)) || "70" || payload[0] || payload[1] || ...
//
// Payload strings are concatenated without separators, in caller order.
func Canonicalize(sender identity.Identity, nonce int64, payload ...string) []byte {
	var buf bytes.Buffer

	buf.WriteString(sender.Bits())
	buf.WriteString(base64.StdEncoding.EncodeToString(Digest(nonce)))
	buf.WriteString(ProtocolVersion)
	for _, p := range payload {
		buf.WriteString(p)
	}

	return buf.Bytes()
}
