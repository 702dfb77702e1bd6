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

// Package certificatetest provides an in-process certificate service for tests.
package certificatetest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sage-x-project/elo-auth-go/pkg/keys"
)

// Server issues RSA key pairs the way the player certificate endpoint does.
type Server struct {
	*httptest.Server

	// Token is the bearer token the server accepts
	Token string

	// Signature is returned as publicKeySignature
	Signature []byte

	// ExpiresAt is returned as expiresAt
	ExpiresAt time.Time

	mu       sync.Mutex
	key      *rsa.PrivateKey
	requests atomic.Int32
	hold     chan struct{}
}

// NewServer starts a server accepting token. Call Close when done.
func NewServer(token string) (*Server, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Token:     token,
		Signature: []byte("certificate-signature"),
		ExpiresAt: time.Now().Add(48 * time.Hour).UTC().Truncate(time.Millisecond),
		key:       key,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s, nil
}

// Hold makes requests block until Release is called.
func (s *Server) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = make(chan struct{})
}

// Release unblocks requests held by Hold.
func (s *Server) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hold != nil {
		close(s.hold)
		s.hold = nil
	}
}

// Requests returns how many requests the server has received.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// PublicKey returns the public half of the issued key pair.
func (s *Server) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-r.Context().Done():
			return
		}
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	privatePEM, err := keys.EncodePrivateKeyPEM(s.key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	publicPEM, err := keys.EncodePublicKeyPEM(&s.key.PublicKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"keyPair": map[string]string{
			"privateKey": string(privatePEM),
			"publicKey":  string(publicPEM),
		},
		"publicKeySignature":   base64.StdEncoding.EncodeToString(s.Signature),
		"publicKeySignatureV2": base64.StdEncoding.EncodeToString(s.Signature),
		"expiresAt":            s.ExpiresAt.Format(time.RFC3339Nano),
		"refreshedAfter":       s.ExpiresAt.Add(-8 * time.Hour).Format(time.RFC3339Nano),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
