// Copyright 2018 BBVA. All rights reserved.
// Use of this source code is governed by a Apache 2 License
// that can be found in the LICENSE file

// Package store defines the minimal persistence contract a replica
// needs to survive a restart: durably keep every bunch it has ever
// installed, keyed by bunch id, so order.Order.Load can rebuild the
// tree without replaying the network history that produced it.
package store

import "github.com/poslist/poslist/order"

// Store durably keeps bunch metadata.
type Store interface {
	// Add persists meta, overwriting any existing record for the same
	// bunch id.
	Add(meta order.BunchMeta) error

	// Get returns the bunch metadata stored under bunchID.
	Get(bunchID string) (*order.BunchMeta, error)

	// All returns every stored bunch, in no particular order.
	All() ([]order.BunchMeta, error)
}
