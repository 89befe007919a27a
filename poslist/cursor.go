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

import "github.com/poslist/poslist/order"

// Cursor identifies a slot between elements rather than an index, so it
// keeps pointing at the same slot across insertions and deletions
// elsewhere in the list. It anchors one position to its left (always
// Right of that position) rather than pinning the element at the slot
// itself, so it survives deletion of its own element too: once that
// element is gone, IndexOfCursor falls back to wherever its left
// neighbor now sits.
type Cursor struct {
	pos order.Position
	dir Direction
}

// Position returns the cursor's anchor position.
func (c Cursor) Position() order.Position {
	return c.pos
}

// CursorAt returns a Cursor for the slot immediately after the element
// currently at index-1 (or at the very start of the list, if index is
// 0). This is the element at index itself only while it remains
// present; if it is later deleted, the cursor still resolves to the
// same slot relative to its left neighbor.
func CursorAt[T any](l *List[T], index int) (Cursor, error) {
	return cursorAt(index, l.PositionAt)
}

// IndexOfCursor returns c's current index in l. index_of_position's
// accumulator already counts elements strictly before the anchor, which
// is exactly the slot to its right when the anchor has been deleted;
// when the anchor is still present, that slot is one past its own
// index, hence the +1.
func IndexOfCursor[T any](l *List[T], c Cursor) (int, error) {
	idx, err := l.IndexOf(c.pos, c.dir)
	if err != nil {
		return 0, err
	}
	if l.Has(c.pos) {
		idx++
	}
	return idx, nil
}

// CursorAtOutline and IndexOfCursorOutline mirror CursorAt/IndexOfCursor
// for an Outline, which has no values to key a generic function on.
func CursorAtOutline(o *Outline, index int) (Cursor, error) {
	return cursorAt(index, o.PositionAt)
}

func IndexOfCursorOutline(o *Outline, c Cursor) (int, error) {
	idx, err := o.IndexOf(c.pos, c.dir)
	if err != nil {
		return 0, err
	}
	if o.Has(c.pos) {
		idx++
	}
	return idx, nil
}

// cursorAt implements the shared i-1/Right anchoring rule: at index 0
// the anchor is MIN_POSITION, which is never itself present, so Right
// always resolves to the front of the list.
func cursorAt(index int, positionAt func(int) (order.Position, error)) (Cursor, error) {
	if index == 0 {
		return Cursor{pos: order.MinPosition, dir: DirRight}, nil
	}
	pos, err := positionAt(index - 1)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{pos: pos, dir: DirRight}, nil
}
