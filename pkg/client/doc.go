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

// Package client provides an HTTP client that authenticates every request
// with fields from a signing session.
//
// Each request is signed over its method, URL and body. The six resulting
// fields travel as HTTP headers named after the fields themselves.
//
// # Basic Usage
//
//	s, _ := session.New(session.Options{Identity: id, Fetcher: fetcher})
//	_ = s.Initialize(certificate.Credentials{AccessToken: token})
//	ready, err := s.Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c := client.NewAuthClient(ready, nil)
//	resp, err := c.Post(ctx, "https://chat.example.com/messages", body)
//
// # Unsigned Fallback
//
// By default a request that cannot be signed is not sent. With
// WithRequireAuth(false) it is sent without authentication headers and a
// warning is logged:
//
//	c := client.NewAuthClient(s, nil,
//	    client.WithRequireAuth(false),
//	    client.WithLogger(logger),
//	)
//
// # Thread Safety
//
// AuthClient is safe for concurrent use by multiple goroutines.
package client
