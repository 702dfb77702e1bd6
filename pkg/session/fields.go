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
	"bytes"
	"encoding/json"
)

// Field names, before the configured prefix is applied.
const (
	KeyUUID           = "auth-uuid"
	KeyRandomLong     = "auth-randomlong"
	KeyPublicKey      = "elo-auth-publickey"
	KeyInstant        = "elo-auth-instant"
	KeySignatureBytes = "elo-auth-signaturebytes"
	KeyData           = "elo-auth-data"
)

// Field is a single name/value pair of the authentication payload
type Field struct {
	Key   string
	Value string
}

// Fields is the ordered authentication payload. Order matters: receivers
// rebuild the signed bytes from it.
type Fields []Field

// Get returns the value stored under key
func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Keys returns the field names in order
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Map copies the fields into a map, dropping order
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, field := range f {
		m[field.Key] = field.Value
	}
	return m
}

// MarshalJSON encodes the fields as a JSON object, keeping their order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SignResult is the outcome of CreateMessageFields. Exactly one of Fields
// and Err is set: a failed attempt carries no fields at all.
type SignResult struct {
	Fields Fields
	Err    error
}

// OK reports whether the message was authenticated.
func (r SignResult) OK() bool {
	return r.Err == nil && len(r.Fields) > 0
}
