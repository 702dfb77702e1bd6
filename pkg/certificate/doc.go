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

// Package certificate retrieves the signing key pair and its certificate.
//
// A Fetcher performs the retrieval. The session calls it at most once and
// never retries; every failure is reported as a single *FetchError whose Kind
// tells transport problems, non-success statuses and malformed payloads apart:
//
//	fetcher, err := certificate.NewHTTPFetcher(certificate.HTTPConfig{
//	    ProxyURL: "http://proxy.internal:3128",
//	})
//	material, err := fetcher.Fetch(ctx, certificate.Credentials{AccessToken: token}, id)
//
//	var fetchErr *certificate.FetchError
//	if errors.As(err, &fetchErr) && fetchErr.Kind == certificate.KindStatus {
//	    // token rejected or service unavailable
//	}
//
// The HTTP endpoint answers a POST with the key pair as PEM, the base64
// signature over the public key and an RFC 3339 expiration instant.
package certificate
