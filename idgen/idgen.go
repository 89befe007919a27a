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

// Package idgen provides bunch-id generators for order.Order. A bunch id
// only needs to be globally unique across the federation of replicas
// that will ever mint one; it carries no other meaning.
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Generator mints a new bunch id. It must not return the same id twice
// for a given Order, and across replicas the probability of collision
// must be negligible.
type Generator func() string

// UUID returns a Generator that mints RFC 4122 random ids, the default
// used by order.NewOrder when none is supplied.
func UUID() Generator {
	return func() string {
		return uuid.New().String()
	}
}

// Replica returns a Generator that derives ids deterministically from a
// replica name and a monotonic counter, hashed with SHA-256 the way the
// teacher's util.Hasher derives commitments. Deterministic ids are handy
// in tests and replay tooling: two runs with the same replica name and
// insertion sequence mint identical bunch ids.
func Replica(replicaID string) Generator {
	var counter uint64
	return func() string {
		counter++
		sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", replicaID, counter)))
		return hex.EncodeToString(sum[:])[:24]
	}
}
