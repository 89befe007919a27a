// Copyright 2018 BBVA. All rights reserved.
// Use of this source code is governed by a Apache 2 License
// that can be found in the LICENSE file

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslist/poslist/order"
)

func TestAddAndGet(t *testing.T) {
	s := NewMemoryStore()

	meta := order.BunchMeta{BunchID: "b1", ParentID: order.RootID, Offset: 1}
	require.NoError(t, s.Add(meta))

	got, err := s.Get("b1")
	require.NoError(t, err)
	assert.Equal(t, meta, *got)
}

func TestGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Add(order.BunchMeta{BunchID: "b1", ParentID: order.RootID, Offset: 1}))
	require.NoError(t, s.Add(order.BunchMeta{BunchID: "b2", ParentID: "b1", Offset: 2}))

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
