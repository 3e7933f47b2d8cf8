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

package sketch

import (
	"math"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
)

func TestJaccardOfDisjointSetsIsZero(t *testing.T) {
	a := newNum(t, 10)
	b := newNum(t, 10)
	a.AddHashes([]uint64{1, 2, 3})
	b.AddHashes([]uint64{4, 5, 6})
	j, err := Jaccard(a, b)
	if err != nil {
		t.Fatalf("Jaccard: %v", err)
	}
	if j != 0 {
		t.Fatalf("Jaccard = %f, want 0", j)
	}
}

func TestJaccardOfIdenticalSetsIsOne(t *testing.T) {
	a := newNum(t, 10)
	b := newNum(t, 10)
	a.AddHashes([]uint64{1, 2, 3})
	b.AddHashes([]uint64{1, 2, 3})
	j, err := Jaccard(a, b)
	if err != nil {
		t.Fatalf("Jaccard: %v", err)
	}
	if math.Abs(j-1) > 1e-12 {
		t.Fatalf("Jaccard = %f, want 1", j)
	}
}

func TestContainmentIsAsymmetric(t *testing.T) {
	a := newNum(t, 10) // subset
	b := newNum(t, 10) // superset
	a.AddHashes([]uint64{1, 2})
	b.AddHashes([]uint64{1, 2, 3, 4})
	cab, err := Containment(a, b)
	if err != nil {
		t.Fatalf("Containment(a,b): %v", err)
	}
	if math.Abs(cab-1.0) > 1e-12 {
		t.Fatalf("Containment(a,b) = %f, want 1 (a fully contained in b)", cab)
	}
	cba, err := Containment(b, a)
	if err != nil {
		t.Fatalf("Containment(b,a): %v", err)
	}
	if math.Abs(cba-0.5) > 1e-12 {
		t.Fatalf("Containment(b,a) = %f, want 0.5", cba)
	}
}

func TestMaxContainmentPicksLargerDirection(t *testing.T) {
	a := newNum(t, 10)
	b := newNum(t, 10)
	a.AddHashes([]uint64{1, 2})
	b.AddHashes([]uint64{1, 2, 3, 4})
	mc, err := MaxContainment(a, b)
	if err != nil {
		t.Fatalf("MaxContainment: %v", err)
	}
	if math.Abs(mc-1.0) > 1e-12 {
		t.Fatalf("MaxContainment = %f, want 1", mc)
	}
}

func TestAngularSimilarityRequiresAbundance(t *testing.T) {
	a := newNum(t, 10)
	b := newNum(t, 10)
	if _, err := AngularSimilarity(a, b); err != ErrAbundanceRequired {
		t.Fatalf("err = %v, want ErrAbundanceRequired", err)
	}
}

func TestAngularSimilarityOfIdenticalAbundanceProfilesIsOne(t *testing.T) {
	a, _ := New(21, hashutil.DNA, 42, 0, 1000, true)
	b, _ := New(21, hashutil.DNA, 42, 0, 1000, true)
	for _, h := range []uint64{1, 2, 3} {
		a.AddHash(h)
		b.AddHash(h)
	}
	sim, err := AngularSimilarity(a, b)
	if err != nil {
		t.Fatalf("AngularSimilarity: %v", err)
	}
	if math.Abs(sim-1) > 1e-9 {
		t.Fatalf("AngularSimilarity = %f, want ~1", sim)
	}
}
