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

// Package lca implements the inverted hash-to-lineage taxonomic index:
// build from a taxonomy CSV plus a set of signatures, then classify or
// summarize query sketches against the fixed rank hierarchy.
package lca

// Ranks is the fixed rank order every lineage tuple is ordered along.
var Ranks = []string{
	"superkingdom", "phylum", "class", "order",
	"family", "genus", "species", "strain",
}

// blankMarkers are names NCBI-style taxonomy CSVs use to mean "no call at
// this rank"; they're treated as an absent rank rather than a real name.
var blankMarkers = map[string]struct{}{
	"":        {},
	"[Blank]": {},
	"na":      {},
	"null":    {},
}

func isBlank(name string) bool {
	_, ok := blankMarkers[name]
	return ok
}

// RankName is one level of an assigned lineage.
type RankName struct {
	Rank string
	Name string
}

// Lineage is an ordered tuple of (rank, name) pairs following Ranks,
// truncated at the first blank/unassigned rank.
type Lineage []RankName

// NewLineage builds a Lineage from a full rank-ordered name slice
// (length len(Ranks)), stopping at the first blank entry: it and every
// name after it are dropped.
func NewLineage(names []string) Lineage {
	var out Lineage
	for i, name := range names {
		if i >= len(Ranks) {
			break
		}
		if isBlank(name) {
			break
		}
		out = append(out, RankName{Rank: Ranks[i], Name: name})
	}
	return out
}

// key renders a Lineage as a stable string, used to deduplicate lineages
// into the lid integer space.
func (l Lineage) key() string {
	s := make([]byte, 0, 64)
	for _, rn := range l {
		s = append(s, rn.Rank...)
		s = append(s, '\x00')
		s = append(s, rn.Name...)
		s = append(s, '\x1f')
	}
	return string(s)
}

// lineageTrieNode is one node of the prefix tree LCA aggregation builds
// over a set of lineages sharing a hash (or, in the second pass, sharing
// majority-vote status).
type lineageTrieNode struct {
	name     string
	children map[string]*lineageTrieNode
}

func newTrieNode(name string) *lineageTrieNode {
	return &lineageTrieNode{name: name, children: map[string]*lineageTrieNode{}}
}

// insert walks/creates the path for lineage through the trie rooted at n.
func (n *lineageTrieNode) insert(lineage Lineage) {
	cur := n
	for _, rn := range lineage {
		child, ok := cur.children[rn.Name]
		if !ok {
			child = newTrieNode(rn.Name)
			cur.children[rn.Name] = child
		}
		cur = child
	}
}

// lca walks down while there is exactly one child, returning the deepest
// node reached and whether it is a true leaf (status "found") or an
// internal branch point (status "disagree").
func (n *lineageTrieNode) lca() (depth int, found bool) {
	cur := n
	d := 0
	for {
		if len(cur.children) == 0 {
			return d, true
		}
		if len(cur.children) > 1 {
			return d, false
		}
		for _, c := range cur.children {
			cur = c
		}
		d++
	}
}

// lineageAtDepth re-walks the single-child path to materialize the
// Lineage corresponding to the depth lca() found, given the original
// lineages that were inserted (any one of them sharing the common
// prefix works, since by construction they agree up to depth).
func lineageAtDepth(lineages []Lineage, depth int) Lineage {
	if len(lineages) == 0 || depth == 0 {
		return nil
	}
	ref := lineages[0]
	if depth > len(ref) {
		depth = len(ref)
	}
	out := make(Lineage, depth)
	copy(out, ref[:depth])
	return out
}
