// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package sbt

import (
	"errors"
	"fmt"

	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// ErrIncompatibleIndex mirrors index.ErrIncompatibleIndex without the
// import cycle an SBT-as-Index adapter would otherwise require.
var ErrIncompatibleIndex = errors.New("sbt: incompatible tree parameters")

// Factory parameters size every Bloom filter in the tree identically.
type Factory struct {
	Ksize      int
	BFSizeBits uint64
	NTables    int
}

// node is an internal tree node: a Bloom filter covering every leaf
// hash in its subtree, plus the smallest leaf sketch size anywhere below
// it (the pruning lower bound the spec calls min_n_below).
type node struct {
	filter    *BloomFilter
	minNBelow int
	loaded    bool
}

// leaf owns exactly one signature.
type leaf struct {
	sig *signature.Signature
}

// Tree is a complete d-ary Sequence Bloom Tree (default d=2). pos 0 is
// the root; the children of pos p occupy [d*p+1, d*p+d].
type Tree struct {
	D       int
	Ksize   int
	Scaled  uint64
	Moltype string
	Factory Factory

	nodes   map[int]*node
	leaves  map[int]*leaf
	storage Storage
	cache   *NodeCache
	nextPos int
}

// NewTree creates an empty tree. d defaults to 2 when given as 0.
func NewTree(d int, ksize int, scaled uint64, moltype string, factory Factory, storage Storage, cacheCapacity int) *Tree {
	if d <= 0 {
		d = 2
	}
	return &Tree{
		D:       d,
		Ksize:   ksize,
		Scaled:  scaled,
		Moltype: moltype,
		Factory: factory,
		nodes:   make(map[int]*node),
		leaves:  make(map[int]*leaf),
		storage: storage,
		cache:   NewNodeCache(cacheCapacity),
	}
}

func (t *Tree) parent(pos int) (int, bool) {
	if pos == 0 {
		return 0, false
	}
	return (pos - 1) / t.D, true
}

func (t *Tree) firstChild(pos int) int { return t.D*pos + 1 }

func (t *Tree) children(pos int) []int {
	out := make([]int, t.D)
	first := t.firstChild(pos)
	for i := 0; i < t.D; i++ {
		out[i] = first + i
	}
	return out
}

// Add inserts sig as a new leaf, finding the lowest unoccupied position
// via a breadth-first scan from the root, then walking back to the root
// OR-ing the leaf's Bloom representation into every ancestor. Leaves never
// occupy the root; when the open position's parent holds a leaf, an
// internal node takes the parent's place and both leaves become its first
// two children.
func (t *Tree) Add(sig *signature.Signature) error {
	pos := t.findOpenPosition()
	var moved *leaf
	if pos == 0 {
		pos = 1
	} else if p, _ := t.parent(pos); t.leaves[p] != nil {
		moved, pos = t.leaves[p], t.firstChild(p)
		delete(t.leaves, p)
		t.leaves[pos] = moved
		pos++
	}
	t.leaves[pos] = &leaf{sig: sig}

	bf := t.bloomFromSignature(sig)
	sizeHere := sig.Sketch.Len()

	cur := pos
	for {
		p, ok := t.parent(cur)
		if !ok {
			break
		}
		n, exists := t.nodes[p]
		if !exists {
			n = &node{filter: NewBloomFilter(t.Factory.BFSizeBits, t.Factory.NTables), minNBelow: sizeHere, loaded: true}
			t.nodes[p] = n
		}
		n.filter.Union(bf)
		if sizeHere < n.minNBelow || n.minNBelow == 0 {
			n.minNBelow = sizeHere
		}
		cur = p
	}
	if moved != nil {
		n := t.nodes[(pos-1)/t.D]
		n.filter.Union(t.bloomFromSignature(moved.sig))
		if size := moved.sig.Sketch.Len(); size < n.minNBelow {
			n.minNBelow = size
		}
	}
	return nil
}

// findOpenPosition does a breadth-first search for the first position
// with neither a node nor a leaf occupying it.
func (t *Tree) findOpenPosition() int {
	pos := 0
	for {
		_, hasNode := t.nodes[pos]
		_, hasLeaf := t.leaves[pos]
		if !hasNode && !hasLeaf {
			return pos
		}
		pos++
	}
}

func (t *Tree) bloomFromSignature(sig *signature.Signature) *BloomFilter {
	bf := NewBloomFilter(t.Factory.BFSizeBits, t.Factory.NTables)
	bf.AddHashes(sig.Sketch.Hashes())
	return bf
}

// SearchFn evaluates an internal node's admissibility bound and a leaf's
// exact score; Find prunes subtrees whose bound cannot clear threshold.
type SearchFn interface {
	// UpperBound estimates the best score reachable below an internal
	// node, given the count of query hashes found in its Bloom filter
	// and the smallest leaf size anywhere in its subtree.
	UpperBound(queryLen, matchesInFilter, minNBelow int) float64
	// ExactScore computes the true score against one leaf signature.
	ExactScore(query []uint64, sig *signature.Signature) float64
	// Threshold is the score a candidate must meet or exceed.
	Threshold() float64
}

// Find performs a pruning depth-first search of the tree, returning every
// leaf signature whose exact score against query meets search.Threshold.
func (t *Tree) Find(search SearchFn, query []uint64) ([]*signature.Signature, error) {
	var out []*signature.Signature
	t.findAt(0, search, query, &out)
	return out, nil
}

func (t *Tree) findAt(pos int, search SearchFn, query []uint64, out *[]*signature.Signature) {
	if lf, ok := t.leaves[pos]; ok {
		score := search.ExactScore(query, lf.sig)
		if score >= search.Threshold() {
			*out = append(*out, lf.sig)
		}
		return
	}
	n, ok := t.nodeAt(pos)
	if !ok {
		return
	}
	matches := n.filter.CountMatches(query)
	bound := search.UpperBound(len(query), matches, n.minNBelow)
	if bound < search.Threshold() {
		return
	}
	for _, c := range t.children(pos) {
		t.findAt(c, search, query, out)
	}
}

// nodeAt fetches (loading from storage through the cache if necessary)
// the internal node at pos. It reports false when there is no node at pos
// or its Bloom filter could not be loaded.
func (t *Tree) nodeAt(pos int) (*node, bool) {
	n, ok := t.nodes[pos]
	if !ok {
		return nil, false
	}
	if !n.loaded && t.storage != nil {
		t.cache.Touch(pos, func() { t.loadNode(pos, n) })
		t.cache.Unload(pos, n.Unload)
	}
	if n.filter == nil {
		return nil, false
	}
	return n, true
}

func (t *Tree) loadNode(pos int, n *node) {
	// Loading from Storage is the on-disk counterpart of the in-memory
	// Bloom filter this node already carries once Add has run; Unload
	// drops the bytes again on eviction. Construction-time trees (Add-
	// only, never serialized) never take this path.
	data, err := t.storage.Load(fmt.Sprintf("internal.%d.bf", pos))
	if err != nil {
		return
	}
	n.filter = &BloomFilter{bits: data, nBits: uint64(len(data)) * 8, nTables: t.Factory.NTables}
	n.loaded = true
}

// Unload drops an internal node's Bloom filter bytes, called by the
// cache on eviction to bound resident memory.
func (n *node) Unload() {
	n.filter = nil
	n.loaded = false
}

// Leaves returns every signature stored in the tree, in position order.
func (t *Tree) Leaves() []*signature.Signature {
	positions := make([]int, 0, len(t.leaves))
	for pos := range t.leaves {
		positions = append(positions, pos)
	}
	sortInts(positions)
	out := make([]*signature.Signature, 0, len(positions))
	for _, pos := range positions {
		out = append(out, t.leaves[pos].sig)
	}
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
