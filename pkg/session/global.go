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
	"sync"

	"github.com/sage-x-project/elo-auth-go/pkg/certificate"
)

var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// Initialize creates the process-wide session and starts its fetch.
// Only the first call does anything; later calls return ErrAlreadyInitialized
// until Reset.
func Initialize(opts Options, creds certificate.Credentials) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultSession != nil {
		return ErrAlreadyInitialized
	}

	s, err := New(opts)
	if err != nil {
		return err
	}
	if err := s.Initialize(creds); err != nil {
		return err
	}

	defaultSession = s
	return nil
}

// Default waits for the process-wide session. It returns *NotReadyError if
// Initialize was never called.
func Default(ctx context.Context) (*Session, error) {
	defaultMu.Lock()
	s := defaultSession
	defaultMu.Unlock()

	if s == nil {
		return nil, &NotReadyError{State: StateUninitialized}
	}
	return s.Wait(ctx)
}

// Reset forgets the process-wide session. A fetch in flight still completes
// for callers already holding it.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSession = nil
}
