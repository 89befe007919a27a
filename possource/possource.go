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

// Package possource implements a standalone position generator for
// callers that only need a total order over string keys and do not want
// to run a shared bunch tree: a chat transcript, a queue of jobs, any
// sequence where positions are minted and compared but never need the
// conflict/parent bookkeeping that order.Order provides.
//
// A position is a chain of waypoints, each a comma-separated
// (id, counter, value-index+direction) triple. The chain grows by one
// waypoint per call to CreateBetween, except when the caller keeps
// appending to the right of its own most recent position: that case
// reuses the existing waypoint and just advances its value index, which
// is what keeps a forward run of insertions O(log m) in length rather
// than O(m) deep.
package possource

import (
	"strings"

	"github.com/poslist/poslist/lexpos"
	"github.com/poslist/poslist/metrics"
)

// FIRST and LAST bound every position a PositionSource ever mints.
// Neither is a valid element position; they exist only to be passed as
// the open end of a CreateBetween call.
const (
	FIRST = ""
	LAST  = "~"
)

const (
	dirLeft  = 'l'
	dirRight = 'r'
)

// PositionSource mints positions for one replica. id stamps every
// waypoint this source creates; lastValueIndices holds, per counter, the
// value index most recently minted there, so a later call that extends
// the same waypoint can recognize and reuse it.
type PositionSource struct {
	id               string
	lastValueIndices []uint32
}

// New returns a PositionSource that stamps every waypoint it mints with
// id. id must be non-empty and satisfy lexpos.ValidateID, since a
// waypoint's id occupies the same character space as a bunch id and must
// not contain the chain separator.
func New(id string) (*PositionSource, error) {
	if err := lexpos.ValidateID(id); err != nil {
		return nil, err
	}
	return &PositionSource{id: id}, nil
}

// CreateBetween mints a position strictly between left and right, which
// must satisfy left < right under byte-lexicographic comparison. Use
// FIRST and LAST as the open ends of the sequence.
func (s *PositionSource) CreateBetween(left, right string) (string, error) {
	if !(left < right) {
		return "", ErrInversion
	}

	var out string
	switch {
	case right != LAST && (left == FIRST || strings.HasPrefix(right, left)):
		// right descends from left (or left is unbounded): go one level
		// left of right's own last waypoint, then down into fresh space.
		base := right[:len(right)-1] + string(dirLeft)
		out = s.appendWaypoint(base)

	case left == FIRST:
		out = s.newWaypoint()

	default:
		reused, ok, err := s.tryReuse(left)
		switch {
		case err != nil:
			return "", err
		case ok:
			out = reused
		default:
			out = s.appendWaypoint(left)
		}
	}

	metrics.PositionsCreatedTotal.Inc()
	return out, nil
}

// newWaypoint allocates the next counter, starting its value index at 0,
// and returns the standalone waypoint string (no leading separator).
func (s *PositionSource) newWaypoint() string {
	counter := uint32(len(s.lastValueIndices))
	s.lastValueIndices = append(s.lastValueIndices, 0)
	return s.id + string(lexpos.Separator) + lexpos.EncodeOffset(uint64(counter)) + string(lexpos.Separator) + "0" + string(dirRight)
}

// appendWaypoint joins a fresh waypoint onto prefix, which is never
// empty at any call site (callers that want a standalone waypoint use
// newWaypoint directly).
func (s *PositionSource) appendWaypoint(prefix string) string {
	return prefix + string(lexpos.Separator) + s.newWaypoint()
}

// tryReuse inspects the trailing waypoint of left. If this source minted
// it and nobody has advanced it since, it bumps that waypoint's value
// index in place instead of growing the chain.
func (s *PositionSource) tryReuse(left string) (string, bool, error) {
	fields := strings.Split(left, string(lexpos.Separator))
	if len(fields) < 3 {
		return "", false, ErrMalformedChain
	}
	n := len(fields)
	sender, counterField, tail := fields[n-3], fields[n-2], fields[n-1]

	if len(tail) < 2 {
		return "", false, ErrMalformedChain
	}
	dir := tail[len(tail)-1]
	if dir != dirLeft && dir != dirRight {
		return "", false, ErrMalformedChain
	}

	if sender != s.id {
		return "", false, nil
	}

	counter, err := lexpos.DecodeOffset(counterField)
	if err != nil {
		return "", false, err
	}
	valueIndex, err := lexpos.DecodeOffset(tail[:len(tail)-1])
	if err != nil {
		return "", false, err
	}
	if counter >= uint64(len(s.lastValueIndices)) || s.lastValueIndices[counter] != uint32(valueIndex) {
		return "", false, nil
	}

	next := s.lastValueIndices[counter] + 1
	s.lastValueIndices[counter] = next

	prefixLen := len(left) - len(tail)
	return left[:prefixLen] + lexpos.EncodeOffset(uint64(next)) + string(dirRight), true, nil
}
