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

import (
	"fmt"
	"sort"
	"time"

	"github.com/poslist/poslist/cache"
	"github.com/poslist/poslist/idgen"
	"github.com/poslist/poslist/lexpos"
	"github.com/poslist/poslist/metrics"
	"github.com/poslist/poslist/plog"
)

// Order is a replica's authoritative view of the position tree. It is
// single-threaded cooperative: no method suspends, and a single Order
// must not be mutated concurrently with reads of any ItemList built on
// top of it (see spec.md §5).
type Order struct {
	nodes     map[string]*Bunch
	root      *Bunch
	newNodeID idgen.Generator

	onCreateNode func(*Bunch)

	// prefixCache memoizes a bunch's node-prefix under its BunchID.
	// The prefix depends only on the bunch's ancestor chain, which
	// never changes after install, so a cached entry is never stale.
	prefixCache cache.Cache
}

// Option configures an Order at construction time.
type Option func(*Order)

// WithIDGenerator overrides the default random id generator used by
// create_position when it mints a new bunch.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(o *Order) { o.newNodeID = gen }
}

// WithOnCreateNode registers a callback invoked whenever a new bunch is
// installed, whether minted locally by create_position or installed by
// Receive.
func WithOnCreateNode(fn func(*Bunch)) Option {
	return func(o *Order) { o.onCreateNode = fn }
}

// WithPrefixCache memoizes the node-prefix Lex derives from a bunch's
// ancestor chain, keyed by BunchID. Worth enabling once a replica's
// bunch tree is deep enough that repeated Lex calls start dominating
// Compare; skip it for small trees, where walking the chain directly
// is cheaper than a cache lookup.
func WithPrefixCache(c cache.Cache) Option {
	return func(o *Order) { o.prefixCache = c }
}

// NewOrder constructs an Order containing only the root bunch.
func NewOrder(opts ...Option) *Order {
	root := newRoot()
	o := &Order{
		nodes:     map[string]*Bunch{RootID: root},
		root:      root,
		newNodeID: idgen.UUID(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetNode returns the bunch with the given id, if installed.
func (o *Order) GetNode(bunchID string) (*Bunch, bool) {
	b, ok := o.nodes[bunchID]
	return b, ok
}

func (o *Order) getNode(bunchID string) (*Bunch, error) {
	b, ok := o.nodes[bunchID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBunch, bunchID)
	}
	return b, nil
}

// GetNodeFor validates pos.InnerIndex and returns the bunch it
// references.
func (o *Order) GetNodeFor(pos Position) (*Bunch, error) {
	b, err := o.getNode(pos.BunchID)
	if err != nil {
		return nil, err
	}
	if b.BunchID == RootID && pos.InnerIndex > 1 {
		return nil, fmt.Errorf("%w: root inner-index %d not in {0,1}", ErrInvalidPosition, pos.InnerIndex)
	}
	return b, nil
}

// Nodes returns every installed bunch, including the root.
func (o *Order) Nodes() []*Bunch {
	out := make([]*Bunch, 0, len(o.nodes))
	for _, b := range o.nodes {
		out = append(out, b)
	}
	return out
}

// NodeMetas returns the metadata of every installed bunch except the
// root, sorted by bunch id for deterministic serialization.
func (o *Order) NodeMetas() []BunchMeta {
	metas := make([]BunchMeta, 0, len(o.nodes))
	for id, b := range o.nodes {
		if id == RootID {
			continue
		}
		metas = append(metas, BunchMeta{BunchID: b.BunchID, ParentID: b.ParentID, Offset: b.Offset})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].BunchID < metas[j].BunchID })
	return metas
}

// Save returns the metadata needed to reconstruct this Order elsewhere
// (the root is never included, per spec.md §6).
func (o *Order) Save() []BunchMeta {
	return o.NodeMetas()
}

// Load replaces the Order's entire state with the given metas. Per the
// documented "overwrites whole state" contract (spec.md §9), it always
// clears first; it never leaves a partially-loaded tree.
func (o *Order) Load(metas []BunchMeta) error {
	o.nodes = map[string]*Bunch{RootID: o.root}
	o.root.Children = nil
	o.root.CreatedCounter = nil
	o.root.CreatedChildren = nil
	return o.Receive(metas)
}

// insertSibling inserts child into parent.Children, keeping sibling
// order: offset ascending, then bunch id (with an appended separator)
// ascending.
func insertSibling(parent *Bunch, child *Bunch) {
	i := sort.Search(len(parent.Children), func(i int) bool {
		return compareSiblings(parent.Children[i], child) > 0
	})
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[i+1:], parent.Children[i:])
	parent.Children[i] = child
}

func compareSiblings(x, y *Bunch) int {
	if x.Offset != y.Offset {
		if x.Offset < y.Offset {
			return -1
		}
		return 1
	}
	xk, yk := x.sortKey(), y.sortKey()
	switch {
	case xk < yk:
		return -1
	case xk > yk:
		return 1
	default:
		return 0
	}
}

func (o *Order) install(b *Bunch) error {
	parent, err := o.getNode(b.ParentID)
	if err != nil {
		return err
	}
	b.Depth = parent.Depth + 1
	o.nodes[b.BunchID] = b
	insertSibling(parent, b)
	if o.onCreateNode != nil {
		o.onCreateNode(b)
	}
	return nil
}

// Receive validates and installs a batch of bunch metadata atomically:
// either every new bunch installs, or none does.
func (o *Order) Receive(metas []BunchMeta) error {
	metrics.ReceiveBatchesTotal.Inc()
	if len(metas) == 0 {
		return nil
	}

	pending := make(map[string]BunchMeta, len(metas))
	for _, m := range metas {
		if m.BunchID == RootID {
			metrics.ReceiveRejectedTotal.WithLabelValues("invalid_root").Inc()
			return fmt.Errorf("%w: %q", ErrInvalidRoot, m.BunchID)
		}
		if err := lexpos.ValidateID(m.BunchID); err != nil {
			metrics.ReceiveRejectedTotal.WithLabelValues("invalid_id").Inc()
			return fmt.Errorf("order: invalid bunch id %q: %w", m.BunchID, err)
		}
		if prev, ok := pending[m.BunchID]; ok {
			if prev != m {
				metrics.ReceiveRejectedTotal.WithLabelValues("conflict").Inc()
				return fmt.Errorf("%w: %q", ErrConflict, m.BunchID)
			}
			continue
		}
		if existing, ok := o.nodes[m.BunchID]; ok {
			if existing.ParentID != m.ParentID || existing.Offset != m.Offset {
				metrics.ReceiveRejectedTotal.WithLabelValues("conflict").Inc()
				return fmt.Errorf("%w: %q", ErrConflict, m.BunchID)
			}
			continue // already installed with matching fields: no-op
		}
		pending[m.BunchID] = m
	}
	if len(pending) == 0 {
		return nil
	}

	depth := make(map[string]uint32, len(pending))
	remaining := make(map[string]BunchMeta, len(pending))
	for id, m := range pending {
		remaining[id] = m
	}
	for len(remaining) > 0 {
		progress := false
		for id, m := range remaining {
			if parent, ok := o.nodes[m.ParentID]; ok {
				depth[id] = parent.Depth + 1
				delete(remaining, id)
				progress = true
				continue
			}
			if d, ok := depth[m.ParentID]; ok {
				depth[id] = d + 1
				delete(remaining, id)
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	if len(remaining) > 0 {
		for id, m := range remaining {
			if _, ok := pending[m.ParentID]; !ok {
				metrics.ReceiveRejectedTotal.WithLabelValues("unknown_parent").Inc()
				return fmt.Errorf("%w: %q (parent %q)", ErrUnknownParent, id, m.ParentID)
			}
		}
		metrics.ReceiveRejectedTotal.WithLabelValues("cycle").Inc()
		return fmt.Errorf("%w: among %d unresolved bunches", ErrCycle, len(remaining))
	}

	installOrder := make([]string, 0, len(pending))
	for id := range pending {
		installOrder = append(installOrder, id)
	}
	sort.Slice(installOrder, func(i, j int) bool {
		if depth[installOrder[i]] != depth[installOrder[j]] {
			return depth[installOrder[i]] < depth[installOrder[j]]
		}
		return installOrder[i] < installOrder[j]
	})

	for _, id := range installOrder {
		m := pending[id]
		b := &Bunch{BunchID: m.BunchID, ParentID: m.ParentID, Offset: m.Offset, Depth: depth[id]}
		if err := o.install(b); err != nil {
			return err
		}
	}
	plog.Debugf("order: received %d new bunch(es)", len(pending))
	return nil
}

// Compare returns -1, 0, or 1 as a sorts before, at, or after b in the
// total order induced by the tree.
//
// A bunch created as a child of parent at a given offset always sorts
// as a single unit strictly between two consecutive inner-indices of
// parent: offset=2*p (left) sits strictly between p-1 and p, and
// offset=2*p+1 (right) sits strictly between p and p+1. Both cases
// collapse to one threshold, threshold=(offset+1)>>1: everything under
// the child sorts before parent-index j when threshold<=j, and after
// it when threshold>j.
func (o *Order) Compare(a, b Position) (int, error) {
	defer func(start time.Time) {
		metrics.CompareDurationSeconds.Observe(time.Since(start).Seconds())
	}(time.Now())

	aNode, err := o.GetNodeFor(a)
	if err != nil {
		return 0, err
	}
	bNode, err := o.GetNodeFor(b)
	if err != nil {
		return 0, err
	}
	if aNode.BunchID == bNode.BunchID {
		switch {
		case a.InnerIndex < b.InnerIndex:
			return -1, nil
		case a.InnerIndex > b.InnerIndex:
			return 1, nil
		default:
			return 0, nil
		}
	}

	// Does a's chain pass directly through bNode?
	anc := aNode
	for anc.Depth > bNode.Depth {
		parent, err := o.getNode(anc.ParentID)
		if err != nil {
			return 0, err
		}
		if parent.BunchID == bNode.BunchID {
			threshold := (anc.Offset + 1) >> 1
			if threshold <= b.InnerIndex {
				return -1, nil
			}
			return 1, nil
		}
		anc = parent
	}
	aAnc := anc

	// Does b's chain pass directly through aNode?
	anc = bNode
	for anc.Depth > aNode.Depth {
		parent, err := o.getNode(anc.ParentID)
		if err != nil {
			return 0, err
		}
		if parent.BunchID == aNode.BunchID {
			threshold := (anc.Offset + 1) >> 1
			if threshold <= a.InnerIndex {
				return 1, nil
			}
			return -1, nil
		}
		anc = parent
	}
	bAnc := anc

	// Neither descends directly from the other: climb both, now at the
	// same depth, in lockstep until their parents coincide, then order
	// them as siblings.
	for aAnc.BunchID != bAnc.BunchID {
		aParent, err := o.getNode(aAnc.ParentID)
		if err != nil {
			return 0, err
		}
		bParent, err := o.getNode(bAnc.ParentID)
		if err != nil {
			return 0, err
		}
		if aParent.BunchID == bParent.BunchID {
			return compareSiblings(aAnc, bAnc), nil
		}
		aAnc, bAnc = aParent, bParent
	}
	return 0, fmt.Errorf("order: internal error comparing %+v and %+v", a, b)
}

// CreatePosition mints or reuses count consecutive positions strictly
// between prev and next. prev must compare strictly before next.
//
// If next does not descend from prev, the new position is a right
// descendant of prev: extend prev's own bunch directly when this
// replica minted it, otherwise split off its right side. Otherwise
// (next descends from prev) the new position is a left descendant of
// next instead. Either way, a bunch this replica already minted at the
// resulting (parent, offset) is reused before a fresh one is minted.
func (o *Order) CreatePosition(prev, next Position, count int) ([]Position, *BunchMeta, error) {
	if count <= 0 {
		return nil, nil, fmt.Errorf("%w: count must be positive", ErrInversion)
	}
	cmp, err := o.Compare(prev, next)
	if err != nil {
		return nil, nil, err
	}
	if cmp >= 0 {
		return nil, nil, fmt.Errorf("%w: prev=%+v next=%+v", ErrInversion, prev, next)
	}

	prevNode, err := o.GetNodeFor(prev)
	if err != nil {
		return nil, nil, err
	}
	nextNode, err := o.GetNodeFor(next)
	if err != nil {
		return nil, nil, err
	}

	nextDescendsFromPrev, err := o.isDescendant(next, nextNode, prev, prevNode)
	if err != nil {
		return nil, nil, err
	}

	var offset uint32
	var parent *Bunch
	if !nextDescendsFromPrev {
		// Fast path: prev is a bunch this replica is actively minting
		// into, so the new position extends it directly on the right.
		if prevNode.CreatedCounter != nil {
			start := *prevNode.CreatedCounter
			positions := reservePositions(prevNode, start, count)
			return positions, nil, nil
		}
		offset, parent = 2*prev.InnerIndex+1, prevNode
	} else {
		offset, parent = 2*next.InnerIndex, nextNode
	}
	if parent.BunchID == RootID {
		// The root's children all sit at offset 1, between MIN and MAX;
		// the lex encoding leaves that offset out.
		offset = 1
	}

	// Reuse exception: this replica may have already minted a child at
	// (parent, offset); check before minting a fresh bunch.
	if parent.CreatedChildren != nil {
		if existing, ok := parent.CreatedChildren[offset]; ok {
			start := uint32(0)
			if existing.CreatedCounter != nil {
				start = *existing.CreatedCounter
			}
			positions := reservePositions(existing, start, count)
			return positions, nil, nil
		}
	}

	newID := o.newNodeID()
	if _, exists := o.nodes[newID]; exists {
		return nil, nil, fmt.Errorf("%w: %q", ErrIDCollision, newID)
	}
	child := &Bunch{BunchID: newID, ParentID: parent.BunchID, Offset: offset}
	counter := uint32(0)
	child.CreatedCounter = &counter
	if err := o.install(child); err != nil {
		return nil, nil, err
	}
	metrics.BunchesCreatedTotal.Inc()
	if parent.CreatedChildren == nil {
		parent.CreatedChildren = make(map[uint32]*Bunch)
	}
	parent.CreatedChildren[offset] = child

	positions := reservePositions(child, 0, count)
	meta := &BunchMeta{BunchID: child.BunchID, ParentID: child.ParentID, Offset: child.Offset}
	return positions, meta, nil
}

// isDescendant reports whether a descends from b: climbing from a's
// bunch up to b's bunch's depth lands on b's bunch at an inner-index
// at or past b's.
func (o *Order) isDescendant(a Position, aNode *Bunch, b Position, bNode *Bunch) (bool, error) {
	anc := aNode
	curInner := a.InnerIndex
	for anc.Depth > bNode.Depth {
		curInner = anc.Offset >> 1
		parent, err := o.getNode(anc.ParentID)
		if err != nil {
			return false, err
		}
		anc = parent
	}
	return anc.BunchID == bNode.BunchID && curInner >= b.InnerIndex, nil
}

func reservePositions(b *Bunch, start uint32, count int) []Position {
	positions := make([]Position, count)
	for i := 0; i < count; i++ {
		positions[i] = Position{BunchID: b.BunchID, InnerIndex: start + uint32(i)}
	}
	next := start + uint32(count)
	b.CreatedCounter = &next
	return positions
}

// Lex returns the lexicographically-comparable string form of pos,
// built by walking its bunch's ancestor chain.
func (o *Order) Lex(pos Position) (string, error) {
	node, err := o.GetNodeFor(pos)
	if err != nil {
		return "", err
	}
	prefix, err := o.nodePrefix(node)
	if err != nil {
		return "", err
	}
	return lexpos.CombinePos(prefix, pos.InnerIndex)
}

// nodePrefix returns node's node-prefix, consulting o.prefixCache
// first when one is configured.
func (o *Order) nodePrefix(node *Bunch) (string, error) {
	if node.BunchID == RootID {
		return "", nil
	}
	if o.prefixCache != nil {
		if cached, ok := o.prefixCache.Get([]byte(node.BunchID)); ok {
			return string(cached), nil
		}
	}
	path, err := o.ancestorPath(node)
	if err != nil {
		return "", err
	}
	prefix, err := lexpos.CombineNodePrefix(path)
	if err != nil {
		return "", err
	}
	if o.prefixCache != nil {
		o.prefixCache.Put([]byte(node.BunchID), []byte(prefix))
	}
	return prefix, nil
}

// Unlex parses a string produced by Lex, installing any bunch along its
// path that is not yet known locally.
func (o *Order) Unlex(s string) (Position, error) {
	prefix, innerIndex, err := lexpos.SplitPos(s)
	if err != nil {
		return Position{}, err
	}
	if prefix == "" {
		return Position{BunchID: RootID, InnerIndex: innerIndex}, nil
	}
	path, err := lexpos.SplitNodePrefix(prefix)
	if err != nil {
		return Position{}, err
	}
	metas := make([]BunchMeta, 0, len(path))
	parentID := RootID
	for i, nm := range path {
		offset := nm.Offset
		if i == 0 {
			offset = 1 // root children are not encoded with an offset
		}
		metas = append(metas, BunchMeta{BunchID: nm.BunchID, ParentID: parentID, Offset: offset})
		parentID = nm.BunchID
	}
	if err := o.Receive(metas); err != nil {
		return Position{}, err
	}
	return Position{BunchID: parentID, InnerIndex: innerIndex}, nil
}

// ancestorPath returns node's chain from its root-most ancestor (below
// the tree root) down to itself, suitable for lexpos.CombineNodePrefix.
func (o *Order) ancestorPath(node *Bunch) ([]lexpos.NodeMeta, error) {
	if node.BunchID == RootID {
		return nil, nil
	}
	var rev []lexpos.NodeMeta
	cur := node
	for cur.BunchID != RootID {
		rev = append(rev, lexpos.NodeMeta{BunchID: cur.BunchID, Offset: cur.Offset})
		parent, err := o.getNode(cur.ParentID)
		if err != nil {
			return nil, err
		}
		cur = parent
	}
	path := make([]lexpos.NodeMeta, len(rev))
	for i, nm := range rev {
		path[len(rev)-1-i] = nm
	}
	return path, nil
}
