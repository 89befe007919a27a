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

// Package order implements the BunchTree: the authoritative, per-replica
// tree of bunches whose traversal induces a total order over every
// position any replica has ever created, plus the create_position
// algorithm that mints or reuses bunches so concurrent forward and
// backward insertion runs never interleave.
package order

import "github.com/poslist/poslist/lexpos"

// RootID is the reserved bunch id of the tree root. It is never
// assignable by user code or by a Generator.
const RootID = "ROOT"

// Position identifies a single immutable slot in the order: a bunch and
// an inner-index within that bunch's unbounded, monotonically allocated
// index space.
type Position struct {
	BunchID    string
	InnerIndex uint32
}

// MinPosition and MaxPosition are the two sentinel positions on the root
// bunch. They compare less/greater than every other position.
var (
	MinPosition = Position{BunchID: RootID, InnerIndex: 0}
	MaxPosition = Position{BunchID: RootID, InnerIndex: 1}
)

// BunchMeta is the wire shape of a non-root bunch: the unit of metadata
// exchanged between replicas (or persisted by Save/Load).
type BunchMeta struct {
	BunchID  string
	ParentID string
	Offset   uint32
}

// Bunch is a node of the position tree. Children is kept in sibling
// order (see compareSiblings). CreatedCounter is non-nil only for
// bunches this replica minted, and is the next inner-index it will hand
// out within this same bunch. CreatedChildren records, per offset, the
// child this replica has already minted there, so a later
// create_position call at the same (parent, offset) reuses it instead of
// minting a sibling.
type Bunch struct {
	BunchID  string
	ParentID string
	Offset   uint32
	Depth    uint32

	Children []*Bunch

	CreatedCounter  *uint32
	CreatedChildren map[uint32]*Bunch
}

func newRoot() *Bunch {
	return &Bunch{BunchID: RootID, Depth: 0}
}

// sortKey is the string used to break ties between siblings sharing an
// offset: the bunch id with an appended separator, so that a shorter id
// that is a prefix of a longer one sorts first, matching how the lex
// encoding terminates an id field.
func (b *Bunch) sortKey() string {
	return b.BunchID + string(lexpos.Separator)
}
