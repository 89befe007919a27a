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

package order

import "errors"

var (
	// ErrUnknownBunch is returned when a position references a bunch
	// that is not installed in the local tree.
	ErrUnknownBunch = errors.New("order: unknown bunch")

	// ErrInvalidPosition is returned for a malformed inner-index, e.g.
	// a root position with an inner-index other than 0 or 1.
	ErrInvalidPosition = errors.New("order: invalid position")

	// ErrUnknownParent is returned by Receive when a meta's parent is
	// neither already installed nor present elsewhere in the batch.
	ErrUnknownParent = errors.New("order: unknown parent")

	// ErrConflict is returned by Receive when a meta duplicates an
	// existing bunch id with a different (parent_id, offset).
	ErrConflict = errors.New("order: conflicting bunch metadata")

	// ErrCycle is returned by Receive when the parent relation induced
	// by a batch of metas contains a cycle.
	ErrCycle = errors.New("order: cycle in bunch metadata")

	// ErrInvalidRoot is returned by Receive when a meta attempts to
	// redefine the root bunch.
	ErrInvalidRoot = errors.New("order: meta redefines root")

	// ErrIDCollision is returned by create_position when the configured
	// id generator returns an id that already exists locally.
	ErrIDCollision = errors.New("order: generated bunch id already exists")

	// ErrInversion is returned by create_position when prev >= next, or
	// when a non-positive count is requested.
	ErrInversion = errors.New("order: prev must sort before next")
)
