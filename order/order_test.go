package order

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslist/poslist/cache"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('a'+n-1))
	}
}

func TestCreatePositionTotalOrder(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))

	positions := []Position{MinPosition}
	prev := MinPosition
	for i := 0; i < 20; i++ {
		got, _, err := o.CreatePosition(prev, MaxPosition, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		positions = append(positions, got[0])
		prev = got[0]
	}
	positions = append(positions, MaxPosition)

	for i := 1; i < len(positions); i++ {
		cmp, err := o.Compare(positions[i-1], positions[i])
		require.NoError(t, err)
		assert.Equalf(t, -1, cmp, "position %d must sort before %d", i-1, i)
	}
}

func TestCreatePositionForwardRunStaysInOneBunch(t *testing.T) {
	// A forward run of insertions by one replica must mint exactly one
	// bunch: every call after the first extends it via the fast path
	// and returns a nil meta.
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))

	prev, meta, err := o.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)
	require.NotNil(t, meta)
	bunchID := prev[0].BunchID

	for i := 0; i < 20; i++ {
		got, meta, err := o.CreatePosition(prev[0], MaxPosition, 1)
		require.NoError(t, err)
		assert.Nil(t, meta, "run must not mint a new bunch after the first position")
		assert.Equal(t, bunchID, got[0].BunchID)
		prev = got
	}
}

func TestCreatePositionBackwardInsertion(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))

	positions := []Position{MaxPosition}
	next := MaxPosition
	for i := 0; i < 20; i++ {
		got, _, err := o.CreatePosition(MinPosition, next, 1)
		require.NoError(t, err)
		positions = append([]Position{got[0]}, positions...)
		next = got[0]
	}
	positions = append([]Position{MinPosition}, positions...)

	for i := 1; i < len(positions); i++ {
		cmp, err := o.Compare(positions[i-1], positions[i])
		require.NoError(t, err)
		assert.Equalf(t, -1, cmp, "position %d must sort before %d", i-1, i)
	}
}

func TestCreatePositionBatch(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))
	got, _, err := o.CreatePosition(MinPosition, MaxPosition, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		cmp, err := o.Compare(got[i-1], got[i])
		require.NoError(t, err)
		assert.Equal(t, -1, cmp)
	}
}

func TestCreatePositionRejectsInverted(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))
	_, _, err := o.CreatePosition(MaxPosition, MinPosition, 1)
	assert.ErrorIs(t, err, ErrInversion)
}

func TestCreatePositionReuseException(t *testing.T) {
	// Two sequential backward-insertion calls from the same replica at
	// the same (prev, next) pair must land in the same bunch rather than
	// minting a fresh one each time (spec.md scenario S4).
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))

	firstNext, meta1, err := o.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)
	require.NotNil(t, meta1)

	// Calls at a different pair, (MinPosition, <previous result>), each
	// descend to the left of the previous result and mint a new bunch.
	secondNext, meta2, err := o.CreatePosition(MinPosition, firstNext[0], 1)
	require.NoError(t, err)
	require.NotNil(t, meta2)
	assert.NotEqual(t, meta1.BunchID, meta2.BunchID)

	thirdNext, meta3, err := o.CreatePosition(MinPosition, secondNext[0], 1)
	require.NoError(t, err)
	if meta3 != nil {
		assert.NotEqual(t, meta2.BunchID, meta3.BunchID)
	}
	_ = thirdNext

	// Repeating the first pair reuses the first bunch at its next inner index.
	again, metaAgain, err := o.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)
	assert.Nil(t, metaAgain)
	assert.Equal(t, meta1.BunchID, again[0].BunchID)
	assert.Equal(t, uint32(1), again[0].InnerIndex)
}

func TestReceiveOutOfOrder(t *testing.T) {
	a := NewOrder(WithIDGenerator(sequentialIDs("a")))
	pos, meta, err := a.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)
	require.NotNil(t, meta)
	// A position left of pos: a second bunch, a child of pos's bunch.
	pos2, meta2, err := a.CreatePosition(MinPosition, pos[0], 1)
	require.NoError(t, err)

	b := NewOrder()
	// Deliver the deeper meta first: Receive must resolve the unknown
	// parent once meta (the shallower bunch) lands, not fail outright.
	if meta2 != nil {
		require.NoError(t, b.Receive([]BunchMeta{*meta2, *meta}))
	} else {
		require.NoError(t, b.Receive([]BunchMeta{*meta}))
	}

	cmp, err := b.Compare(pos2[0], pos[0])
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestReceiveDetectsCycle(t *testing.T) {
	o := NewOrder()
	err := o.Receive([]BunchMeta{
		{BunchID: "x", ParentID: "y", Offset: 1},
		{BunchID: "y", ParentID: "x", Offset: 1},
	})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestReceiveDetectsConflict(t *testing.T) {
	o := NewOrder()
	require.NoError(t, o.Receive([]BunchMeta{{BunchID: "x", ParentID: RootID, Offset: 1}}))
	err := o.Receive([]BunchMeta{{BunchID: "x", ParentID: RootID, Offset: 2}})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReceiveRejectsRootRedefinition(t *testing.T) {
	o := NewOrder()
	err := o.Receive([]BunchMeta{{BunchID: RootID, ParentID: RootID, Offset: 1}})
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestReceiveIsIdempotent(t *testing.T) {
	o := NewOrder()
	meta := BunchMeta{BunchID: "x", ParentID: RootID, Offset: 1}
	require.NoError(t, o.Receive([]BunchMeta{meta}))
	require.NoError(t, o.Receive([]BunchMeta{meta}))
	assert.Len(t, o.Nodes(), 2) // root + x
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a := NewOrder(WithIDGenerator(sequentialIDs("a")))
	for i := 0; i < 5; i++ {
		_, _, err := a.CreatePosition(MinPosition, MaxPosition, 1)
		require.NoError(t, err)
	}

	b := NewOrder()
	require.NoError(t, b.Load(a.Save()))

	want := a.NodeMetas()
	got := b.NodeMetas()
	sort.Slice(want, func(i, j int) bool { return want[i].BunchID < want[j].BunchID })
	sort.Slice(got, func(i, j int) bool { return got[i].BunchID < got[j].BunchID })
	assert.Equal(t, want, got)
}

func TestLexUnlexRoundTrip(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))
	pos, _, err := o.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)

	s, err := o.Lex(pos[0])
	require.NoError(t, err)

	other := NewOrder()
	got, err := other.Unlex(s)
	require.NoError(t, err)
	assert.Equal(t, pos[0], got)
}

func TestLexOrderAgreesWithCompare(t *testing.T) {
	o := NewOrder(WithIDGenerator(sequentialIDs("n")))
	positions := []Position{MinPosition}
	prev := MinPosition
	for i := 0; i < 10; i++ {
		got, _, err := o.CreatePosition(prev, MaxPosition, 1)
		require.NoError(t, err)
		positions = append(positions, got[0])
		prev = got[0]
	}
	positions = append(positions, MaxPosition)

	lexes := make([]string, len(positions))
	for i, p := range positions {
		s, err := o.Lex(p)
		require.NoError(t, err)
		lexes[i] = s
	}
	for i := 1; i < len(lexes); i++ {
		assert.Lessf(t, lexes[i-1], lexes[i], "lex strings must sort the same as Compare at %d", i)
	}
}

func TestLexWithPrefixCacheAgreesWithUncached(t *testing.T) {
	plain := NewOrder(WithIDGenerator(sequentialIDs("n")))
	cached := NewOrder(WithIDGenerator(sequentialIDs("n")), WithPrefixCache(cache.NewFastCache(64*1024)))

	pos, _, err := plain.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)
	_, _, err = cached.CreatePosition(MinPosition, MaxPosition, 1)
	require.NoError(t, err)

	want, err := plain.Lex(pos[0])
	require.NoError(t, err)

	// First call populates the prefix cache, second call must hit it
	// and return the identical string.
	got1, err := cached.Lex(pos[0])
	require.NoError(t, err)
	got2, err := cached.Lex(pos[0])
	require.NoError(t, err)
	assert.Equal(t, want, got1)
	assert.Equal(t, want, got2)
}

func TestGetNodeForRejectsUnknownBunch(t *testing.T) {
	o := NewOrder()
	_, err := o.GetNodeFor(Position{BunchID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownBunch)
}
