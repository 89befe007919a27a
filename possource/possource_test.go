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

package possource

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSequentialAppendReusesWaypoint is scenario S1: repeated forward
// append from the same replica reuses its last waypoint, bumping only
// the trailing value index.
func TestSequentialAppendReusesWaypoint(t *testing.T) {
	src, err := New("A")
	require.NoError(t, err)

	p1, err := src.CreateBetween(FIRST, LAST)
	require.NoError(t, err)
	assert.Equal(t, "A,0,0r", p1)

	p2, err := src.CreateBetween(p1, LAST)
	require.NoError(t, err)
	assert.Equal(t, "A,0,1r", p2)

	p3, err := src.CreateBetween(p2, LAST)
	require.NoError(t, err)
	assert.Equal(t, "A,0,2r", p3)

	assert.True(t, p1 < p2)
	assert.True(t, p2 < p3)
}

// TestConcurrentInsertionOrdersByID is scenario S2.
func TestConcurrentInsertionOrdersByID(t *testing.T) {
	a, err := New("A")
	require.NoError(t, err)
	b, err := New("B")
	require.NoError(t, err)

	pa, err := a.CreateBetween(FIRST, LAST)
	require.NoError(t, err)
	pb, err := b.CreateBetween(FIRST, LAST)
	require.NoError(t, err)

	assert.Equal(t, "A,0,0r", pa)
	assert.Equal(t, "B,0,0r", pb)
	assert.True(t, pa < pb)
}

// TestNonInterleavingForwardRuns is scenario S3: two replicas each
// produce a forward run anchored at the same (FIRST, fixed) pair; the
// merged order keeps each run contiguous.
func TestNonInterleavingForwardRuns(t *testing.T) {
	a, err := New("A")
	require.NoError(t, err)
	b, err := New("B")
	require.NoError(t, err)

	fixed, err := a.CreateBetween(FIRST, LAST)
	require.NoError(t, err)

	var as, bs []string
	prevA, prevB := FIRST, FIRST
	for i := 0; i < 3; i++ {
		pa, err := a.CreateBetween(prevA, fixed)
		require.NoError(t, err)
		as = append(as, pa)
		prevA = pa

		pb, err := b.CreateBetween(prevB, fixed)
		require.NoError(t, err)
		bs = append(bs, pb)
		prevB = pb
	}

	all := append(append([]string{}, as...), bs...)
	sort.Strings(all)

	assert.True(t, contiguous(all, as))
	assert.True(t, contiguous(all, bs))
}

// contiguous reports whether every element of group appears consecutively
// within all, which is already sorted.
func contiguous(all, group []string) bool {
	seen := make(map[string]bool, len(group))
	for _, g := range group {
		seen[g] = true
	}
	inRun, seenRun := false, false
	for _, x := range all {
		if seen[x] {
			if seenRun && !inRun {
				return false
			}
			inRun = true
			seenRun = true
			continue
		}
		inRun = false
	}
	return seenRun
}

func TestCreateBetweenBoundsTheWholeAxis(t *testing.T) {
	src, err := New("A")
	require.NoError(t, err)

	pos, err := src.CreateBetween(FIRST, LAST)
	require.NoError(t, err)
	assert.True(t, FIRST < pos)
	assert.True(t, pos < LAST)
}

func TestCreateBetweenDescendsLeftOfRight(t *testing.T) {
	src, err := New("A")
	require.NoError(t, err)

	right, err := src.CreateBetween(FIRST, LAST)
	require.NoError(t, err)

	left, err := src.CreateBetween(FIRST, right)
	require.NoError(t, err)
	assert.True(t, left < right)
	assert.True(t, FIRST < left)
}

func TestCreateBetweenTwoReplicasInterleave(t *testing.T) {
	a, err := New("A")
	require.NoError(t, err)
	b, err := New("B")
	require.NoError(t, err)

	p1, err := a.CreateBetween(FIRST, LAST)
	require.NoError(t, err)
	p2, err := b.CreateBetween(FIRST, p1)
	require.NoError(t, err)
	p3, err := a.CreateBetween(p1, LAST)
	require.NoError(t, err)

	assert.True(t, FIRST < p2)
	assert.True(t, p2 < p1)
	assert.True(t, p1 < p3)
	assert.True(t, p3 < LAST)
}

func TestCreateBetweenRejectsInverted(t *testing.T) {
	src, err := New("A")
	require.NoError(t, err)

	pos, err := src.CreateBetween(FIRST, LAST)
	require.NoError(t, err)

	_, err = src.CreateBetween(pos, pos)
	assert.ErrorIs(t, err, ErrInversion)

	_, err = src.CreateBetween(LAST, FIRST)
	assert.ErrorIs(t, err, ErrInversion)
}

func TestReuseRequiresMatchingTrailingValueIndex(t *testing.T) {
	// A third replica appending after A's position cannot reuse A's
	// waypoint, so it grows the chain instead of bumping A's counter.
	a, err := New("A")
	require.NoError(t, err)
	c, err := New("C")
	require.NoError(t, err)

	p1, err := a.CreateBetween(FIRST, LAST)
	require.NoError(t, err)

	p2, err := c.CreateBetween(p1, LAST)
	require.NoError(t, err)
	assert.NotEqual(t, "A,0,1r", p2)
	assert.True(t, p1 < p2)

	// A itself extends its waypoint once; a second insert after p1 no
	// longer matches the last value index handed out, so it grows the chain.
	p3, err := a.CreateBetween(p1, LAST)
	require.NoError(t, err)
	assert.Equal(t, "A,0,1r", p3)
	p4, err := a.CreateBetween(p1, LAST)
	require.NoError(t, err)
	assert.NotEqual(t, "A,0,1r", p4)
	assert.True(t, p1 < p4)
}

func TestNewRejectsInvalidID(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("bad,id")
	assert.Error(t, err)
}
