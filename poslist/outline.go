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

package poslist

import (
	"fmt"

	"github.com/poslist/poslist/metrics"
	"github.com/poslist/poslist/order"
)

// Outline is a List without values: it tracks only which positions are
// present. It is useful when only the shape of the sequence matters,
// e.g. a table of contents, or when values live in external storage
// keyed by position. It shares the same run-length presence engine as
// List, instantiated with an empty value type.
type Outline struct {
	tree *presenceTree[struct{}]
}

// NewOutline returns an empty Outline backed by ord.
func NewOutline(ord *order.Order) *Outline {
	return &Outline{tree: newPresenceTree[struct{}](ord)}
}

// Len returns the number of present positions.
func (o *Outline) Len() int {
	return o.tree.length
}

// Has reports whether pos is present.
func (o *Outline) Has(pos order.Position) bool {
	return o.tree.has(pos)
}

// Mark records pos as present.
func (o *Outline) Mark(pos order.Position) error {
	return o.tree.set(pos, struct{}{})
}

// Unmark removes pos, if present.
func (o *Outline) Unmark(pos order.Position) {
	if o.tree.delete(pos) {
		metrics.ListMutationsTotal.WithLabelValues("delete").Inc()
	}
}

// PositionAt returns the position at index, in [0, Len()).
func (o *Outline) PositionAt(index int) (order.Position, error) {
	return o.tree.positionAt(index)
}

// IndexOf returns the current index of pos. If pos has since been
// unmarked, dir controls the answer: DirNone returns -1, DirLeft and
// DirRight return the index of the nearest present position on that
// side.
func (o *Outline) IndexOf(pos order.Position, dir Direction) (int, error) {
	return o.tree.indexOfPosition(pos, dir)
}

// Clear drops every tracked position. The backing Order is untouched.
func (o *Outline) Clear() {
	o.tree.nodes = make(map[string]*bunchEntry[struct{}])
	o.tree.length = 0
	o.tree.mod++
}

// Slice returns the positions present in [lo, hi), in order.
func (o *Outline) Slice(lo, hi int) ([]order.Position, error) {
	if lo < 0 || hi > o.tree.length || lo > hi {
		return nil, ErrOutOfRange
	}
	positions := make([]order.Position, 0, hi-lo)
	for i := lo; i < hi; i++ {
		pos, err := o.tree.positionAt(i)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func (o *Outline) boundsFor(index int) (order.Position, order.Position, error) {
	if index < 0 || index > o.tree.length {
		return order.Position{}, order.Position{}, ErrOutOfRange
	}
	prev := order.MinPosition
	if index > 0 {
		p, err := o.tree.positionAt(index - 1)
		if err != nil {
			return order.Position{}, order.Position{}, err
		}
		prev = p
	}
	next := order.MaxPosition
	if index < o.tree.length {
		n, err := o.tree.positionAt(index)
		if err != nil {
			return order.Position{}, order.Position{}, err
		}
		next = n
	}
	return prev, next, nil
}

// InsertAt mints and marks a new position at index.
func (o *Outline) InsertAt(index int) (order.Position, error) {
	prev, next, err := o.boundsFor(index)
	if err != nil {
		return order.Position{}, err
	}
	positions, _, err := o.tree.ord.CreatePosition(prev, next, 1)
	if err != nil {
		return order.Position{}, err
	}
	pos := positions[0]
	if err := o.tree.set(pos, struct{}{}); err != nil {
		return order.Position{}, err
	}
	metrics.ListMutationsTotal.WithLabelValues("insert").Inc()
	return pos, nil
}

// Entries returns every present position, in order.
func (o *Outline) Entries() ([]order.Position, error) {
	positions, _, err := o.tree.entries()
	return positions, err
}

// Save returns every tracked bunch's own run-length counts, keyed by
// bunch id: alternating present-run-length and absent-run-length
// counts, present-first, no values (spec.md §6's Outline save format).
func (o *Outline) Save() map[string][]uint32 {
	out := make(map[string][]uint32, len(o.tree.nodes))
	for id, e := range o.tree.nodes {
		counts := make([]uint32, len(e.runs))
		for i, r := range e.runs {
			counts[i] = r.count
		}
		out[id] = counts
	}
	return out
}

// Load replaces the Outline's entire content with data. The backing
// Order must already know every referenced bunch.
func (o *Outline) Load(data map[string][]uint32) error {
	nodes := make(map[string]*bunchEntry[struct{}], len(data))
	for id, counts := range data {
		if _, ok := o.tree.ord.GetNode(id); !ok {
			return fmt.Errorf("poslist: load references unknown bunch %q", id)
		}
		runs := make([]run[struct{}], len(counts))
		for i, c := range counts {
			present := i%2 == 0
			r := run[struct{}]{present: present, count: c}
			if present {
				r.values = make([]struct{}, c)
			}
			runs[i] = r
		}
		nodes[id] = &bunchEntry[struct{}]{runs: runs}
	}
	if err := recomputeTotals(o.tree.ord, nodes); err != nil {
		return err
	}
	var length uint32
	for _, e := range nodes {
		length += ownCount(e.runs)
	}
	o.tree.nodes = nodes
	o.tree.length = int(length)
	o.tree.mod++
	return nil
}
