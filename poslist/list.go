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

// Package poslist implements the value-bearing sequence built on top of
// an order.Order: a List[T] maps a subset of the order's positions to
// values and lets a caller navigate between the two coordinate systems,
// index and position, in either direction.
package poslist

import (
	"encoding/json"
	"fmt"

	"github.com/poslist/poslist/metrics"
	"github.com/poslist/poslist/order"
)

// Direction disambiguates IndexOf's answer for a position that has
// since been deleted: DirNone reports it as simply absent, DirLeft and
// DirRight round to the index of its nearest present neighbor on that
// side. It is the same three-way disambiguator spec.md's
// index_of_position names.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirRight
)

// List is a collaborative sequence of values of type T. Every element
// occupies a stable order.Position; inserting or deleting elsewhere in
// the list never changes an existing element's position, only its
// index. A List is not safe for concurrent use.
type List[T any] struct {
	tree *presenceTree[T]
}

// NewList returns an empty List backed by ord. Multiple lists, and a
// List alongside an Outline, may share the same Order.
func NewList[T any](ord *order.Order) *List[T] {
	return &List[T]{tree: newPresenceTree[T](ord)}
}

// Len returns the number of present elements.
func (l *List[T]) Len() int {
	return l.tree.length
}

// Has reports whether pos currently holds a value.
func (l *List[T]) Has(pos order.Position) bool {
	return l.tree.has(pos)
}

// Get returns the value at pos, if present.
func (l *List[T]) Get(pos order.Position) (T, bool) {
	return l.tree.get(pos)
}

// Set stores v at pos, marking pos present. pos must already be known
// to the underlying Order (e.g. returned by InsertAt or Order.Receive)
// and must not be a sentinel.
func (l *List[T]) Set(pos order.Position, v T) error {
	return l.tree.set(pos, v)
}

// Delete removes pos, if present. It is a no-op otherwise: tombstone
// garbage collection is out of scope, so the bunch tree itself is never
// pruned.
func (l *List[T]) Delete(pos order.Position) {
	if l.tree.delete(pos) {
		metrics.ListMutationsTotal.WithLabelValues("delete").Inc()
	}
}

// PositionAt returns the position of the element at index, in
// [0, Len()).
func (l *List[T]) PositionAt(index int) (order.Position, error) {
	return l.tree.positionAt(index)
}

// IndexOf returns the current index of pos. If pos has since been
// deleted, dir controls the answer: DirNone returns -1, DirLeft and
// DirRight return the index of the nearest present element on that
// side (acc-1 / acc in spec.md's terms).
func (l *List[T]) IndexOf(pos order.Position, dir Direction) (int, error) {
	return l.tree.indexOfPosition(pos, dir)
}

// GetAt returns the value of the element at index, in [0, Len()).
func (l *List[T]) GetAt(index int) (T, error) {
	pos, err := l.tree.positionAt(index)
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := l.tree.get(pos)
	return v, nil
}

// Clear drops every tracked value. The backing Order is untouched, so
// positions minted before a Clear remain valid to insert again later.
func (l *List[T]) Clear() {
	l.tree.nodes = make(map[string]*bunchEntry[T])
	l.tree.length = 0
	l.tree.mod++
}

// Slice returns the positions and values of elements in [lo, hi), in
// list order.
func (l *List[T]) Slice(lo, hi int) ([]order.Position, []T, error) {
	if lo < 0 || hi > l.tree.length || lo > hi {
		return nil, nil, ErrOutOfRange
	}
	positions := make([]order.Position, 0, hi-lo)
	values := make([]T, 0, hi-lo)
	for i := lo; i < hi; i++ {
		pos, err := l.tree.positionAt(i)
		if err != nil {
			return nil, nil, err
		}
		v, _ := l.tree.get(pos)
		positions = append(positions, pos)
		values = append(values, v)
	}
	return positions, values, nil
}

// InsertAt mints a new position strictly at index (shifting every
// existing element at or after index one slot to the right) and stores
// v there. It returns the freshly minted position.
func (l *List[T]) InsertAt(index int, v T) (order.Position, error) {
	prev, next, err := l.boundsFor(index)
	if err != nil {
		return order.Position{}, err
	}
	positions, _, err := l.tree.ord.CreatePosition(prev, next, 1)
	if err != nil {
		return order.Position{}, err
	}
	pos := positions[0]
	if err := l.tree.set(pos, v); err != nil {
		return order.Position{}, err
	}
	metrics.ListMutationsTotal.WithLabelValues("insert").Inc()
	return pos, nil
}

// boundsFor returns the (prev, next) sentinel pair immediately
// surrounding index, in the half-open sense that a fresh position
// inserted between them lands exactly at index.
func (l *List[T]) boundsFor(index int) (order.Position, order.Position, error) {
	if index < 0 || index > l.tree.length {
		return order.Position{}, order.Position{}, ErrOutOfRange
	}
	prev := order.MinPosition
	if index > 0 {
		p, err := l.tree.positionAt(index - 1)
		if err != nil {
			return order.Position{}, order.Position{}, err
		}
		prev = p
	}
	next := order.MaxPosition
	if index < l.tree.length {
		n, err := l.tree.positionAt(index)
		if err != nil {
			return order.Position{}, order.Position{}, err
		}
		next = n
	}
	return prev, next, nil
}

// Entries returns every present position, in list order.
func (l *List[T]) Entries() ([]order.Position, error) {
	positions, _, err := l.tree.entries()
	return positions, err
}

// Values returns every present value, in list order.
func (l *List[T]) Values() ([]T, error) {
	_, values, err := l.tree.entries()
	return values, err
}

// RunSeq is the on-wire shape of one bunch's runs: alternating present
// value slices and deleted run-length counts, present-first, trailing
// deleted omitted (spec.md §6's List save format).
type RunSeq[T any] []run[T]

func (rs RunSeq[T]) MarshalJSON() ([]byte, error) {
	parts := make([]json.RawMessage, 0, len(rs))
	for _, r := range rs {
		var (
			raw json.RawMessage
			err error
		)
		if r.present {
			raw, err = json.Marshal(r.values)
		} else {
			raw, err = json.Marshal(r.count)
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, raw)
	}
	return json.Marshal(parts)
}

func (rs *RunSeq[T]) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	out := make([]run[T], 0, len(parts))
	for i, p := range parts {
		if i%2 == 0 {
			var values []T
			if err := json.Unmarshal(p, &values); err != nil {
				return err
			}
			out = append(out, run[T]{present: true, count: uint32(len(values)), values: values})
		} else {
			var count uint32
			if err := json.Unmarshal(p, &count); err != nil {
				return err
			}
			out = append(out, run[T]{present: false, count: count})
		}
	}
	*rs = out
	return nil
}

// Save returns every tracked bunch's own run array, keyed by bunch id,
// suitable for persistence alongside the backing Order's own Save
// output.
func (l *List[T]) Save() map[string]RunSeq[T] {
	out := make(map[string]RunSeq[T], len(l.tree.nodes))
	for id, e := range l.tree.nodes {
		out[id] = RunSeq[T](e.runs)
	}
	return out
}

// Load replaces the List's entire content with data. The backing Order
// must already know every referenced bunch (typically by loading it
// first).
func (l *List[T]) Load(data map[string]RunSeq[T]) error {
	nodes := make(map[string]*bunchEntry[T], len(data))
	for id, rs := range data {
		if _, ok := l.tree.ord.GetNode(id); !ok {
			return fmt.Errorf("poslist: load references unknown bunch %q", id)
		}
		nodes[id] = &bunchEntry[T]{runs: []run[T](rs)}
	}
	if err := recomputeTotals(l.tree.ord, nodes); err != nil {
		return err
	}
	var length uint32
	for _, e := range nodes {
		length += ownCount(e.runs)
	}
	l.tree.nodes = nodes
	l.tree.length = int(length)
	l.tree.mod++
	return nil
}
