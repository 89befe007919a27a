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

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poslist/poslist/idgen"
	"github.com/poslist/poslist/order"
	"github.com/poslist/poslist/plog"
	"github.com/poslist/poslist/poslist"
	"github.com/poslist/poslist/storage"
	"github.com/poslist/poslist/storage/badger"
	"github.com/poslist/poslist/storage/bplus"
	"github.com/poslist/poslist/store"
	"github.com/poslist/poslist/store/kvstore"
)

// Session is one replica's working set: the bunch tree, the list built
// on top of it, and the backing storage.Store that holds both. Every
// mutating command reopens a Session, applies one change, and persists
// it before exiting; there is no long-lived server process.
type Session struct {
	cfg   Config
	kv    storage.Store
	bunch store.Store
	ord   *order.Order
	list  *poslist.List[string]
}

// Open builds a Session from cfg: it selects a storage.Store backend,
// rebuilds the bunch tree from every persisted order.BunchMeta, and
// rebuilds the list from every persisted entry.
func Open(cfg Config) (*Session, error) {
	plog.SetLogger("cli", cfg.LogLevel)

	kv, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:   cfg,
		kv:    kv,
		bunch: kvstore.New(kv),
	}
	s.ord = order.NewOrder(
		order.WithIDGenerator(idgen.Replica(cfg.ReplicaID)),
		order.WithOnCreateNode(s.onCreateNode),
	)
	s.list = poslist.NewList[string](s.ord)

	if err := s.restore(); err != nil {
		s.kv.Close()
		return nil, err
	}
	return s, nil
}

func openBackend(cfg Config) (storage.Store, error) {
	switch cfg.Backend {
	case BackendBadger:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("cli: creating storage path %q: %w", cfg.Path, err)
		}
		return badger.NewBadgerStore(filepath.Join(cfg.Path, "db"))
	case BackendBTree, "":
		return bplus.NewBPlusTreeStore(), nil
	default:
		return nil, fmt.Errorf("cli: unknown backend %q", cfg.Backend)
	}
}

// onCreateNode is registered with order.WithOnCreateNode so every bunch
// this replica mints is durable before CreatePosition returns it.
func (s *Session) onCreateNode(b *order.Bunch) {
	if b.BunchID == order.RootID {
		return
	}
	meta := order.BunchMeta{BunchID: b.BunchID, ParentID: b.ParentID, Offset: b.Offset}
	if err := s.bunch.Add(meta); err != nil {
		plog.Errorf("cli: persisting bunch %q: %v", b.BunchID, err)
	}
}

// restore rebuilds the bunch tree and list content from the backing
// store, in that order: every entry's position must resolve to an
// already-known bunch.
func (s *Session) restore() error {
	metas, err := s.bunch.All()
	if err != nil {
		return fmt.Errorf("cli: loading bunches: %w", err)
	}
	if err := s.ord.Receive(metas); err != nil {
		return fmt.Errorf("cli: rebuilding bunch tree: %w", err)
	}

	reader := s.kv.GetAll(storage.EntryPrefix)
	defer reader.Close()
	buf := make([]*storage.KVPair, 64)
	for {
		n, err := reader.Read(buf)
		if err != nil {
			return fmt.Errorf("cli: loading entries: %w", err)
		}
		if n == 0 {
			break
		}
		for _, pair := range buf[:n] {
			pos, err := s.ord.Unlex(string(pair.Key))
			if err != nil {
				return fmt.Errorf("cli: decoding entry position: %w", err)
			}
			if err := s.list.Set(pos, string(pair.Value)); err != nil {
				return fmt.Errorf("cli: restoring entry: %w", err)
			}
		}
	}
	return nil
}

// Close releases the backing storage.Store.
func (s *Session) Close() error {
	return s.kv.Close()
}

// Insert mints a new element at index and persists it.
func (s *Session) Insert(index int, value string) (order.Position, error) {
	pos, err := s.list.InsertAt(index, value)
	if err != nil {
		return order.Position{}, err
	}
	key, err := s.ord.Lex(pos)
	if err != nil {
		return order.Position{}, err
	}
	if err := s.kv.Mutate([]*storage.Mutation{
		{Prefix: storage.EntryPrefix, Key: []byte(key), Value: []byte(value)},
	}); err != nil {
		return order.Position{}, fmt.Errorf("cli: persisting entry: %w", err)
	}
	return pos, nil
}

// Delete removes the element at index and persists the removal.
func (s *Session) Delete(index int) error {
	pos, err := s.list.PositionAt(index)
	if err != nil {
		return err
	}
	key, err := s.ord.Lex(pos)
	if err != nil {
		return err
	}
	s.list.Delete(pos)
	deletable, ok := s.kv.(storage.DeletableStore)
	if !ok {
		return fmt.Errorf("cli: backend %q does not support deletion", s.cfg.Backend)
	}
	return deletable.Delete(storage.EntryPrefix, []byte(key))
}

// Entries returns every present value, in list order.
func (s *Session) Entries() ([]string, error) {
	return s.list.Values()
}

// snapshot is the JSON envelope save/load subcommands exchange. It
// carries the bunch tree and list content but no storage backend
// details, so it can move between replicas regardless of what each one
// uses locally.
type snapshot struct {
	Bunches []order.BunchMeta                 `json:"bunches"`
	List    map[string]poslist.RunSeq[string] `json:"list"`
}

// SaveToFile writes the current bunch tree and list content to path as
// JSON, independent of whatever storage.Store backs this Session.
func (s *Session) SaveToFile(path string) error {
	snap := snapshot{Bunches: s.ord.Save(), List: s.list.Save()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encoding snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFromFile replaces this Session's entire bunch tree and list
// content with the snapshot at path, then persists it to the backing
// store.
func (s *Session) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cli: reading snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("cli: decoding snapshot: %w", err)
	}
	if err := s.ord.Load(snap.Bunches); err != nil {
		return fmt.Errorf("cli: loading bunch tree: %w", err)
	}
	if err := s.list.Load(snap.List); err != nil {
		return fmt.Errorf("cli: loading list: %w", err)
	}
	for _, meta := range snap.Bunches {
		if err := s.bunch.Add(meta); err != nil {
			return fmt.Errorf("cli: persisting bunch %q: %w", meta.BunchID, err)
		}
	}
	positions, err := s.list.Entries()
	if err != nil {
		return fmt.Errorf("cli: reading loaded list: %w", err)
	}
	mutations := make([]*storage.Mutation, 0, len(positions))
	for _, pos := range positions {
		value, ok := s.list.Get(pos)
		if !ok {
			continue
		}
		key, err := s.ord.Lex(pos)
		if err != nil {
			return fmt.Errorf("cli: encoding entry position: %w", err)
		}
		mutations = append(mutations, &storage.Mutation{Prefix: storage.EntryPrefix, Key: []byte(key), Value: []byte(value)})
	}
	if len(mutations) == 0 {
		return nil
	}
	return s.kv.Mutate(mutations)
}
