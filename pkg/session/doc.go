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

// Package session authenticates outgoing messages with a fetched key pair.
//
// A Session starts Uninitialized. Initialize moves it to Pending and starts
// one background fetch of key material. The fetch resolves the session to
// Ready or Failed exactly once and every waiter observes the same outcome:
//
//	s, _ := session.New(session.Options{
//		Identity: identity.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
//		Fetcher:  fetcher,
//		Prefix:   "mp-",
//	})
//	_ = s.Initialize(certificate.Credentials{AccessToken: token})
//
//	ready, err := s.Wait(ctx)
//	if err != nil {
//		return err
//	}
//	result := ready.CreateMessageFields(ctx, "hello")
//
// CreateMessageFields never blocks. The fields it returns are, in order:
//
//	auth-uuid                 identity as "high/low" signed 64-bit halves
//	auth-randomlong           random nonce
//	elo-auth-publickey        base64 PKIX public key
//	elo-auth-instant          certificate expiry, epoch milliseconds
//	elo-auth-signaturebytes   base64 certificate signature
//	elo-auth-data             base64 message signature
//
// A Failed session stays failed. Recovery means building a new Session.
package session
