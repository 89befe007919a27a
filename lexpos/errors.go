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

package lexpos

import "errors"

var (
	// ErrInvalidEncoding is returned when a string is not a well-formed
	// numeral in the prefix-free encoding.
	ErrInvalidEncoding = errors.New("lexpos: invalid numeral encoding")

	// ErrInvalidPosition is returned when a lex position string is
	// malformed or uses an inner-index that is not legal for its bunch.
	ErrInvalidPosition = errors.New("lexpos: invalid lex position")

	// ErrInvalidID is returned when a bunch id fails character
	// validation: it must not contain the separator and must sort below
	// the MAX sentinel.
	ErrInvalidID = errors.New("lexpos: invalid bunch id")
)
