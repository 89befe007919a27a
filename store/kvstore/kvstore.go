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

// Package kvstore implements store.Store on top of any storage.Store,
// so a replica can persist its bunch tree in badger, in the in-memory
// B-tree, or in any other engine storage.Store gets a backend for,
// without the order package ever depending on a concrete database.
package kvstore

import (
	"encoding/json"

	"github.com/poslist/poslist/order"
	"github.com/poslist/poslist/storage"
	"github.com/poslist/poslist/store"
)

// KVStore adapts a storage.Store into a store.Store, encoding each
// order.BunchMeta as JSON under storage.BunchPrefix, keyed by bunch id.
type KVStore struct {
	kv storage.Store
}

// New returns a KVStore backed by kv.
func New(kv storage.Store) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Add(meta order.BunchMeta) error {
	value, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return s.kv.Mutate([]*storage.Mutation{
		{Prefix: storage.BunchPrefix, Key: []byte(meta.BunchID), Value: value},
	})
}

func (s *KVStore) Get(bunchID string) (*order.BunchMeta, error) {
	pair, err := s.kv.Get(storage.BunchPrefix, []byte(bunchID))
	if err != nil {
		return nil, err
	}
	var meta order.BunchMeta
	if err := json.Unmarshal(pair.Value, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *KVStore) All() ([]order.BunchMeta, error) {
	reader := s.kv.GetAll(storage.BunchPrefix)
	defer reader.Close()

	var out []order.BunchMeta
	buf := make([]*storage.KVPair, 64)
	for {
		n, err := reader.Read(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		for _, pair := range buf[:n] {
			var meta order.BunchMeta
			if err := json.Unmarshal(pair.Value, &meta); err != nil {
				return nil, err
			}
			out = append(out, meta)
		}
	}
	return out, nil
}

var _ store.Store = (*KVStore)(nil)
