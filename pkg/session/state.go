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
	"errors"
	"fmt"
)

// State is a point in the session lifecycle.
//
//	Uninitialized -> Pending -> Ready
//	                         -> Failed
//
// Ready and Failed are terminal.
type State int

const (
	StateUninitialized State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// ErrAlreadyInitialized is returned by a second Initialize call. The first
// fetch keeps running untouched.
var ErrAlreadyInitialized = errors.New("session already initialized")

// NotReadyError is returned when signing or instance access is attempted on
// a session that has not reached Ready.
//
// It is distinct from *certificate.FetchError. State tells "never
// initialized" (StateUninitialized), "still fetching" (StatePending) and
// "fetch failed" (StateFailed, with the fetch error in Cause) apart.
type NotReadyError struct {
	State State
	Cause error
}

func (e *NotReadyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session not ready: %s: %v", e.State, e.Cause)
	}
	return fmt.Sprintf("session not ready: %s", e.State)
}

// Unwrap returns the fetch error of a failed session, or nil.
func (e *NotReadyError) Unwrap() error {
	return e.Cause
}
