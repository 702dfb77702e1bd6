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

	"github.com/sage-x-project/elo-auth-go/pkg/keys"
)

// resultCell is a one-shot broadcast of the fetch outcome. One producer
// resolves it; any number of waiters observe the same value. Fields are
// written before done is closed and never again.
type resultCell struct {
	once     sync.Once
	done     chan struct{}
	material *keys.KeyMaterial
	err      error
}

func newResultCell() *resultCell {
	return &resultCell{done: make(chan struct{})}
}

// resolve publishes the outcome. Later calls are ignored.
func (c *resultCell) resolve(material *keys.KeyMaterial, err error) {
	c.once.Do(func() {
		c.material = material
		c.err = err
		close(c.done)
	})
}

// resolved reports whether resolve has happened, without blocking.
func (c *resultCell) resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// wait blocks until the cell is resolved or ctx is done. Giving up only
// affects this caller.
func (c *resultCell) wait(ctx context.Context) (*keys.KeyMaterial, error) {
	if c.resolved() {
		return c.material, c.err
	}

	select {
	case <-c.done:
		return c.material, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
