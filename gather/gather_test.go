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

package gather

import (
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/index"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func buildRefSig(t *testing.T, name string, lo, hi uint64) *signature.Signature {
	t.Helper()
	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	for h := lo; h < hi; h++ {
		sk.AddHash(h)
	}
	return signature.New(sk, name, name+".fa")
}

// TestGatherSyntheticMixture is Scenario B: references with disjoint hash
// ranges {1..100}, {200..299}, {400..499}; the query is R1∪R2 with
// abundances 1 and 2. Both R1 and R2 fully explain their share of the
// query, R3 never matches, and the residual is empty once both are
// emitted; R1/R2's relative order is a tie the implementation breaks by
// md5, so only the set-cover invariants are asserted here.
func TestGatherSyntheticMixture(t *testing.T) {
	r1 := buildRefSig(t, "R1", 1, 101)
	r2 := buildRefSig(t, "R2", 200, 300)
	r3 := buildRefSig(t, "R3", 400, 500)

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 1, true)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	for h := uint64(1); h < 101; h++ {
		query.AddHash(h)
	}
	for h := uint64(200); h < 300; h++ {
		query.AddHash(h)
		query.AddHash(h) // abundance 2
	}

	idx := index.NewLinearIndex([]*signature.Signature{r1, r2, r3}, "mem")
	rows, err := Gather(query, []index.Index{idx}, 50, 1e-3)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}

	seenNames := map[string]bool{}
	for _, row := range rows {
		seenNames[row.Signature.Name] = true
		if row.FMatch != 1.0 {
			t.Fatalf("row %s f_match = %v, want 1.0 (fully contained)", row.Signature.Name, row.FMatch)
		}
	}
	if !seenNames["R1"] || !seenNames["R2"] {
		t.Fatalf("expected both R1 and R2 reported, got %v", seenNames)
	}
	if seenNames["R3"] {
		t.Fatal("R3 should never be reported")
	}

	totalIntersect := 0
	for _, row := range rows {
		totalIntersect += int(row.IntersectBP)
	}
	if totalIntersect != 200 {
		t.Fatalf("sum of intersect_bp = %d, want 200 (100+100, scaled=1)", totalIntersect)
	}
	if rows[len(rows)-1].RemainingBP != 0 {
		t.Fatalf("final remaining_bp = %d, want 0", rows[len(rows)-1].RemainingBP)
	}
}

func TestGatherDisjointIntersectsAndMonotonicProgress(t *testing.T) {
	r1 := buildRefSig(t, "R1", 1, 51)
	r2 := buildRefSig(t, "R2", 40, 91) // overlaps R1 in [40,51)

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	for h := uint64(1); h < 91; h++ {
		query.AddHash(h)
	}

	idx := index.NewLinearIndex([]*signature.Signature{r1, r2}, "mem")
	rows, err := Gather(query, []index.Index{idx}, 5, 1e-3)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected at least one row")
	}

	lastRemaining := uint64(91) - 1 // upper bound on the first remaining_bp
	for _, row := range rows {
		if row.RemainingBP > lastRemaining {
			t.Fatalf("remaining_bp did not shrink monotonically: %d then %d", lastRemaining, row.RemainingBP)
		}
		lastRemaining = row.RemainingBP
	}

	// R2 is taken first (51 shared hashes), then R1 for what is left of it
	// after [40,51) is consumed (39): disjoint intersects covering all 90.
	totalIntersect := 0
	for _, row := range rows {
		totalIntersect += int(row.IntersectBP)
	}
	if totalIntersect != 90 {
		t.Fatalf("sum of intersect_bp = %d, want 90 (disjoint intersects, scaled=1)", totalIntersect)
	}
}

func TestGatherStopsBelowFiveSharedHashes(t *testing.T) {
	r1 := buildRefSig(t, "R1", 1, 4) // only 3 hashes: {1,2,3}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHash(1)
	query.AddHash(2)
	query.AddHash(3)

	idx := index.NewLinearIndex([]*signature.Signature{r1}, "mem")
	rows, err := Gather(query, []index.Index{idx}, 1, 1e-3)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0 (below 5-shared-hash floor)", len(rows))
	}
}

func TestGatherEmptyQueryReturnsNoRows(t *testing.T) {
	query, err := sketch.New(21, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	idx := index.NewLinearIndex(nil, "mem")
	rows, err := Gather(query, []index.Index{idx}, 1, 1e-3)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if rows != nil {
		t.Fatalf("got %v, want nil", rows)
	}
}
