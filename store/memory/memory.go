// Copyright 2018 BBVA. All rights reserved.
// Use of this source code is governed by a Apache 2 License
// that can be found in the LICENSE file

// Package memory implements store.Store on top of a sync.Map, for
// tests and for replicas that don't need to survive a restart.
package memory

import (
	"errors"
	"sync"

	"github.com/poslist/poslist/order"
	"github.com/poslist/poslist/store"
)

// ErrNotFound is returned by Get when bunchID has no stored record.
var ErrNotFound = errors.New("memory: bunch not found")

type MemoryStore struct {
	entries sync.Map
}

func (m *MemoryStore) Add(meta order.BunchMeta) error {
	m.entries.Store(meta.BunchID, meta)
	return nil
}

func (m *MemoryStore) Get(bunchID string) (*order.BunchMeta, error) {
	v, ok := m.entries.Load(bunchID)
	if !ok {
		return nil, ErrNotFound
	}
	meta := v.(order.BunchMeta)
	return &meta, nil
}

func (m *MemoryStore) All() ([]order.BunchMeta, error) {
	var out []order.BunchMeta
	m.entries.Range(func(_, v interface{}) bool {
		out = append(out, v.(order.BunchMeta))
		return true
	})
	return out, nil
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() store.Store {
	return &MemoryStore{}
}
