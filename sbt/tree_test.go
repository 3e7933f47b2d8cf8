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
	"sort"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func buildLeafSig(t *testing.T, name string, hashes []uint64) *signature.Signature {
	t.Helper()
	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	sk.AddHashes(hashes)
	return signature.New(sk, name, name+".fa")
}

func buildTestTree(t *testing.T) *Tree {
	t.Helper()
	tree := NewTree(2, 21, 10, "DNA", Factory{Ksize: 21, BFSizeBits: 8192, NTables: 4}, nil, 0)
	sigs := []*signature.Signature{
		buildLeafSig(t, "g1", []uint64{1, 2, 3, 4}),
		buildLeafSig(t, "g2", []uint64{3, 4, 5, 6}),
		buildLeafSig(t, "g3", []uint64{100, 101, 102}),
		buildLeafSig(t, "g4", []uint64{1, 2, 200}),
	}
	for _, s := range sigs {
		if err := tree.Add(s); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return tree
}

func namesOf(sigs []*signature.Signature) []string {
	out := make([]string, len(sigs))
	for i, s := range sigs {
		out[i] = s.Name
	}
	sort.Strings(out)
	return out
}

func TestTreeFindMatchesLinearScanContainment(t *testing.T) {
	tree := buildTestTree(t)
	query := []uint64{1, 2, 3, 4}

	search := &ContainmentSearch{MinScore: 0.5}
	found, err := tree.Find(search, query)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	got := namesOf(found)
	want := []string{"g1", "g2", "g4"} // g1: 4/4=1.0, g2: 2/4=0.5, g4: 2/4=0.5, g3: 0/4
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTreeFindPrunesDisjointSubtree(t *testing.T) {
	tree := buildTestTree(t)
	query := []uint64{100, 101, 102}

	search := &ContainmentSearch{MinScore: 0.99}
	found, err := tree.Find(search, query)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 1 || found[0].Name != "g3" {
		t.Fatalf("expected only g3 to match, got %v", namesOf(found))
	}
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1024, 3)
	hashes := []uint64{7, 77, 777, 7777}
	bf.AddHashes(hashes)
	for _, h := range hashes {
		if !bf.Contains(h) {
			t.Fatalf("Bloom filter false negative for %d", h)
		}
	}
}

func TestNodeCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewNodeCache(2)
	var evicted []int
	cache.Touch(1, func() {})
	cache.Unload(1, func() { evicted = append(evicted, 1) })
	cache.Touch(2, func() {})
	cache.Unload(2, func() { evicted = append(evicted, 2) })
	cache.Touch(3, func() {})
	cache.Unload(3, func() { evicted = append(evicted, 3) })

	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("evicted = %v, want [1] (least recently used)", evicted)
	}
	if cache.Len() != 2 {
		t.Fatalf("cache.Len() = %d, want 2", cache.Len())
	}
}
