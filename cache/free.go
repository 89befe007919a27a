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

package cache

import (
	"runtime/debug"

	"github.com/coocood/freecache"

	"github.com/poslist/poslist/storage"
)

// FreeCache is a Cache backed by freecache, suited for a replica that
// would rather trade some GC pressure for a cache that never needs a
// byte-count estimate up front.
type FreeCache struct {
	cached *freecache.Cache
}

// NewFreeCache returns a FreeCache with the given initial size in
// bytes.
func NewFreeCache(initialSize int) *FreeCache {
	cache := freecache.NewCache(initialSize)
	debug.SetGCPercent(20)
	return &FreeCache{cached: cache}
}

func (c FreeCache) Get(key []byte) ([]byte, bool) {
	value, err := c.cached.Get(key)
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *FreeCache) Put(key []byte, value []byte) {
	_ = c.cached.Set(key, value, 0)
}

func (c *FreeCache) Fill(r storage.KVPairReader) error {
	defer r.Close()
	for {
		entries := make([]*storage.KVPair, 100)
		n, err := r.Read(entries)
		if err != nil || n == 0 {
			break
		}
		for _, entry := range entries {
			if entry != nil {
				_ = c.cached.Set(entry.Key, entry.Value, 0)
			}
		}
	}
	return nil
}

func (c FreeCache) Size() int {
	return int(c.cached.EntryCount())
}
