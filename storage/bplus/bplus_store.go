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

package bplus

import (
	"bytes"

	"github.com/google/btree"

	"github.com/poslist/poslist/storage"
)

// BPlusTreeStore is an in-memory storage.Store backed by a B-tree. It
// is used by tests and by callers that don't need to persist across
// restarts, in place of the heavier badger.BadgerStore.
type BPlusTreeStore struct {
	db *btree.BTree
}

func NewBPlusTreeStore() *BPlusTreeStore {
	return &BPlusTreeStore{btree.New(2)}
}

func (s *BPlusTreeStore) Mutate(mutations []*storage.Mutation) error {
	for _, m := range mutations {
		key := append([]byte{m.Prefix}, m.Key...)
		s.db.ReplaceOrInsert(kvItem{key, m.Value})
	}
	return nil
}

func (s *BPlusTreeStore) GetRange(prefix byte, start, end []byte) (storage.KVRange, error) {
	result := make(storage.KVRange, 0)
	startKey := append([]byte{prefix}, start...)
	endKey := append([]byte{prefix}, end...)
	s.db.AscendGreaterOrEqual(kvItem{startKey, nil}, func(i btree.Item) bool {
		key := i.(kvItem).key
		if bytes.Compare(key, endKey) > 0 {
			return false
		}
		result = append(result, storage.KVPair{Key: key[1:], Value: i.(kvItem).value})
		return true
	})
	return result, nil
}

func (s *BPlusTreeStore) Get(prefix byte, key []byte) (*storage.KVPair, error) {
	k := append([]byte{prefix}, key...)
	item := s.db.Get(kvItem{k, nil})
	if item == nil {
		return nil, storage.ErrKeyNotFound
	}
	return &storage.KVPair{Key: key, Value: item.(kvItem).value}, nil
}

func (s *BPlusTreeStore) GetLast(prefix byte) (*storage.KVPair, error) {
	var result *storage.KVPair
	s.db.DescendLessOrEqual(kvItem{[]byte{prefix, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, nil}, func(i btree.Item) bool {
		item := i.(kvItem)
		if len(item.key) == 0 || item.key[0] != prefix {
			return false
		}
		result = &storage.KVPair{Key: item.key[1:], Value: item.value}
		return false
	})
	if result == nil {
		return nil, storage.ErrKeyNotFound
	}
	return result, nil
}

func (s *BPlusTreeStore) GetAll(prefix byte) storage.KVPairReader {
	return newBPlusKVPairReader(prefix, s.db)
}

func (s *BPlusTreeStore) Close() error {
	s.db.Clear(false)
	return nil
}

func (s *BPlusTreeStore) Delete(prefix byte, key []byte) error {
	k := append([]byte{prefix}, key...)
	s.db.Delete(kvItem{k, nil})
	return nil
}

type kvItem struct {
	key, value []byte
}

func (p kvItem) Less(b btree.Item) bool {
	return bytes.Compare(p.key, b.(kvItem).key) < 0
}

type bPlusKVPairReader struct {
	prefix  byte
	db      *btree.BTree
	lastKey []byte
	started bool
}

func newBPlusKVPairReader(prefix byte, db *btree.BTree) *bPlusKVPairReader {
	return &bPlusKVPairReader{prefix: prefix, db: db, lastKey: []byte{prefix}}
}

func (r *bPlusKVPairReader) Read(buffer []*storage.KVPair) (n int, err error) {
	start := r.lastKey
	r.db.AscendGreaterOrEqual(kvItem{start, nil}, func(i btree.Item) bool {
		if n >= len(buffer) {
			return false
		}
		key := i.(kvItem).key
		if len(key) == 0 || key[0] != r.prefix {
			return false
		}
		if r.started && bytes.Equal(key, r.lastKey) {
			return true
		}
		buffer[n] = &storage.KVPair{Key: key[1:], Value: i.(kvItem).value}
		n++
		r.lastKey = key
		r.started = true
		return true
	})
	return n, nil
}

func (r *bPlusKVPairReader) Close() {
	r.db = nil
}
