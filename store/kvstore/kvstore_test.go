/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslist/poslist/order"
	"github.com/poslist/poslist/storage/bplus"
)

func TestKVStoreAddGetAll(t *testing.T) {
	s := New(bplus.NewBPlusTreeStore())

	require.NoError(t, s.Add(order.BunchMeta{BunchID: "b1", ParentID: order.RootID, Offset: 1}))
	require.NoError(t, s.Add(order.BunchMeta{BunchID: "b2", ParentID: "b1", Offset: 2}))

	got, err := s.Get("b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.BunchID)
	assert.Equal(t, uint32(1), got.Offset)

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestKVStoreGetMissing(t *testing.T) {
	s := New(bplus.NewBPlusTreeStore())
	_, err := s.Get("nope")
	assert.Error(t, err)
}
