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

import "errors"

var (
	// ErrOutOfRange is returned when an index falls outside [0, Len()).
	ErrOutOfRange = errors.New("poslist: index out of range")

	// ErrSentinel is returned when the caller tries to store a value at
	// the reserved MIN or MAX position.
	ErrSentinel = errors.New("poslist: cannot set a value at a sentinel position")

	// ErrEmpty reports an empty list. No function in this package returns
	// it; PositionAt on an empty list returns ErrOutOfRange.
	ErrEmpty = errors.New("poslist: list is empty")

	// ErrConcurrentModification is returned by iteration when a mutation
	// is observed mid-walk. Detection is best-effort (a generation
	// counter), not a hard guarantee.
	ErrConcurrentModification = errors.New("poslist: concurrent modification during iteration")
)
