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

package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
	"github.com/sage-x-project/elo-auth-go/pkg/identity"
	"github.com/sage-x-project/elo-auth-go/pkg/keys"
	"github.com/sage-x-project/elo-auth-go/pkg/signer"
)

// Options configures a Session
type Options struct {
	// Identity the key pair is bound to
	Identity identity.Identity

	// Fetcher retrieves the key material. Required.
	Fetcher certificate.Fetcher

	// Prefix is prepended to every field name (empty by default)
	Prefix string

	// Signer overrides the default message signer
	Signer signer.MessageSigner

	// Logger receives fetch and signing failures (disabled if nil)
	Logger *zerolog.Logger

	// FetchTimeout bounds the background fetch. Zero leaves it to the fetcher.
	FetchTimeout time.Duration

	// Rand is the nonce source (crypto/rand if nil)
	Rand io.Reader
}

// Session owns one identity's key material and signs outgoing messages with it.
//
// The zero value is not usable; create sessions with New.
type Session struct {
	identity     identity.Identity
	prefix       string
	fetcher      certificate.Fetcher
	signer       signer.MessageSigner
	logger       zerolog.Logger
	fetchTimeout time.Duration
	rand         io.Reader

	mu    sync.Mutex
	state State

	cell *resultCell
}

// New creates an uninitialized session
func New(opts Options) (*Session, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}

	messageSigner := opts.Signer
	if messageSigner == nil {
		messageSigner = signer.NewDefaultMessageSigner()
	}

	nonceSource := opts.Rand
	if nonceSource == nil {
		nonceSource = rand.Reader
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Session{
		identity:     opts.Identity,
		prefix:       opts.Prefix,
		fetcher:      opts.Fetcher,
		signer:       messageSigner,
		logger:       logger.With().Str("component", "session").Str("identity", opts.Identity.String()).Logger(),
		fetchTimeout: opts.FetchTimeout,
		rand:         nonceSource,
		state:        StateUninitialized,
		cell:         newResultCell(),
	}, nil
}

// Initialize starts the one background fetch of the session's key material.
// A second call returns ErrAlreadyInitialized and leaves the first fetch alone.
func (s *Session) Initialize(creds certificate.Credentials) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.state = StatePending
	s.mu.Unlock()

	s.logger.Debug().Msg("starting key pair fetch")
	go s.fetch(creds)

	return nil
}

// fetch runs on its own goroutine. Its context belongs to no waiter, so a
// waiter giving up never cancels it.
func (s *Session) fetch(creds certificate.Credentials) {
	ctx := context.Background()
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	material, err := s.callFetcher(ctx, creds)
	if err == nil && material == nil {
		err = &certificate.FetchError{Kind: certificate.KindDecode, Err: fmt.Errorf("fetcher returned no key material")}
	}
	if err != nil {
		var fetchErr *certificate.FetchError
		if !errors.As(err, &fetchErr) {
			err = &certificate.FetchError{Kind: certificate.KindTransport, Err: err}
		}
		material = nil
	}

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
	} else {
		s.state = StateReady
	}
	s.mu.Unlock()

	s.cell.resolve(material, err)

	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to create authentication")
		return
	}
	s.logger.Info().
		Str("key_id", material.KeyPair().ID()).
		Time("expires_at", material.ExpiresAt()).
		Msg("authentication ready")
}

// callFetcher runs the fetcher, turning a panic into an error so the cell is
// always resolved.
func (s *Session) callFetcher(ctx context.Context, creds certificate.Credentials) (material *keys.KeyMaterial, err error) {
	defer func() {
		if r := recover(); r != nil {
			material = nil
			err = &certificate.FetchError{Kind: certificate.KindTransport, Err: fmt.Errorf("fetcher panicked: %v", r)}
		}
	}()
	return s.fetcher.Fetch(ctx, creds, s.identity)
}

// Wait blocks until the fetch resolves and returns the session once it is
// Ready. A failed fetch returns its *certificate.FetchError; a session that
// was never initialized returns *NotReadyError. If ctx ends first, ctx.Err()
// is returned and the fetch carries on for everyone else.
func (s *Session) Wait(ctx context.Context) (*Session, error) {
	if s.State() == StateUninitialized {
		return nil, &NotReadyError{State: StateUninitialized}
	}

	if _, err := s.cell.wait(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Instance is Wait without the reason: it returns nil unless the session is Ready.
func (s *Session) Instance(ctx context.Context) *Session {
	ready, err := s.Wait(ctx)
	if err != nil {
		return nil
	}
	return ready
}

// CreateMessageFields signs payload and returns the ordered authentication
// fields. It never blocks on the fetch. On any failure the result carries no
// fields and the reason in Err: *NotReadyError before Ready, *signer.SigningError
// when signing fails. A signing failure leaves the session Ready.
func (s *Session) CreateMessageFields(ctx context.Context, payload ...string) SignResult {
	material, err := s.readyMaterial()
	if err != nil {
		return SignResult{Err: err}
	}

	nonce, err := s.nextNonce()
	if err != nil {
		return s.signFailure(&signer.SigningError{Op: "nonce", Err: err})
	}

	signature, err := s.signer.Sign(ctx, material.KeyPair(), s.identity, nonce, payload...)
	if err != nil {
		var signErr *signer.SigningError
		if !errors.As(err, &signErr) {
			err = &signer.SigningError{Op: "sign", Err: err}
		}
		return s.signFailure(err)
	}

	fields := Fields{
		{Key: s.prefix + KeyUUID, Value: s.identity.Bits()},
		{Key: s.prefix + KeyRandomLong, Value: strconv.FormatInt(nonce, 10)},
		{Key: s.prefix + KeyPublicKey, Value: base64.StdEncoding.EncodeToString(material.PublicKeyDER())},
		{Key: s.prefix + KeyInstant, Value: strconv.FormatInt(material.ExpiresAt().UnixMilli(), 10)},
		{Key: s.prefix + KeySignatureBytes, Value: base64.StdEncoding.EncodeToString(material.CertificateSignature())},
		{Key: s.prefix + KeyData, Value: base64.StdEncoding.EncodeToString(signature)},
	}

	return SignResult{Fields: fields}
}

func (s *Session) signFailure(err error) SignResult {
	s.logger.Warn().Err(err).Msg("failed to sign authentication message")
	return SignResult{Err: err}
}

// readyMaterial returns the key material without blocking
func (s *Session) readyMaterial() (*keys.KeyMaterial, error) {
	if !s.cell.resolved() {
		return nil, &NotReadyError{State: s.State()}
	}
	if s.cell.err != nil {
		return nil, &NotReadyError{State: StateFailed, Cause: s.cell.err}
	}
	return s.cell.material, nil
}

// nextNonce draws a uniformly random signed 64-bit nonce
func (s *Session) nextNonce() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(s.rand, b[:]); err != nil {
		return 0, fmt.Errorf("failed to read nonce: %w", err)
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the identity the session signs for
func (s *Session) Identity() identity.Identity {
	return s.identity
}

// Prefix returns the field name prefix
func (s *Session) Prefix() string {
	return s.prefix
}

// KeyMaterial returns the fetched key material, or nil before Ready.
func (s *Session) KeyMaterial() *keys.KeyMaterial {
	material, err := s.readyMaterial()
	if err != nil {
		return nil
	}
	return material
}
