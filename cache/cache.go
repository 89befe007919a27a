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

// Package cache memoizes the byte strings order.Order recomputes most
// often: a bunch's node-prefix, the portion of its Lex encoding derived
// by walking the bunch's ancestor chain. That chain never changes once
// a bunch is installed, so a prefix computed once can be cached under
// the bunch's id forever; the cache only needs an eviction policy for
// memory, not a correctness one.
package cache

import "github.com/poslist/poslist/storage"

// Cache is a byte-keyed memoization store. Implementations need not be
// safe for concurrent use unless stated otherwise.
type Cache interface {
	// Get returns the cached value for key, if present.
	Get(key []byte) ([]byte, bool)
	// Put stores value under key, possibly evicting another entry.
	Put(key []byte, value []byte)
	// Fill seeds the cache from r, e.g. a snapshot of previously
	// computed prefixes, until r is exhausted.
	Fill(r storage.KVPairReader) error
	// Size returns the number of entries currently cached.
	Size() int
}
