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

package index

import (
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

func buildSig(t *testing.T, name string, hashes []uint64) *signature.Signature {
	t.Helper()
	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	sk.AddHashes(hashes)
	return signature.New(sk, name, name+".fa")
}

func TestLinearIndexFindJaccard(t *testing.T) {
	a := buildSig(t, "a", []uint64{1, 2, 3})
	b := buildSig(t, "b", []uint64{1, 2, 3})
	c := buildSig(t, "c", []uint64{100, 200})
	ix := NewLinearIndex([]*signature.Signature{a, b, c}, "mem")

	results, err := ix.Find(&JaccardSearch{MinScore: 0.5}, a.Sketch)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (a and b)", len(results))
	}
}

func TestLinearIndexBestContainment(t *testing.T) {
	q := buildSig(t, "q", []uint64{1, 2, 3, 4})
	subset := buildSig(t, "subset", []uint64{1, 2})
	disjoint := buildSig(t, "disjoint", []uint64{9, 10})
	ix := NewLinearIndex([]*signature.Signature{subset, disjoint}, "mem")

	best, err := ix.BestContainment(q.Sketch, 0)
	if err != nil {
		t.Fatalf("BestContainment: %v", err)
	}
	if best == nil {
		t.Fatal("expected a match")
	}
	if best.Signature.Name != "subset" {
		t.Fatalf("best match = %q, want subset", best.Signature.Name)
	}
}

func TestSelectFiltersByKsize(t *testing.T) {
	a := buildSig(t, "a", []uint64{1})
	ix := NewLinearIndex([]*signature.Signature{a}, "mem")
	sub, err := ix.Select(SelectParams{Ksize: 31})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	sigs, _ := sub.Signatures()
	if len(sigs) != 0 {
		t.Fatalf("expected zero matches for wrong ksize, got %d", len(sigs))
	}
}

func TestPicklistExcludeByName(t *testing.T) {
	a := buildSig(t, "a", []uint64{1})
	b := buildSig(t, "b", []uint64{2})
	ix := NewLinearIndex([]*signature.Signature{a, b}, "mem")

	pl := NewPicklist(ColumnName, true, []string{"a"})
	sub, err := ix.Select(SelectParams{Picklist: pl})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	sigs, _ := sub.Signatures()
	if len(sigs) != 1 || sigs[0].Name != "b" {
		t.Fatalf("expected only b to survive exclusion, got %+v", sigs)
	}
}
