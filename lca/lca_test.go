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

package lca

import (
	"bytes"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
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

func lineage(names ...string) Lineage {
	return NewLineage(names)
}

func TestInsertSkipsDuplicateMD5(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	sig := buildSig(t, "g1", []uint64{1, 2, 3})
	l := lineage("Bacteria", "Proteobacteria")

	skipped, err := db.Insert(sig, "g1", l)
	if err != nil || skipped {
		t.Fatalf("first insert: skipped=%v err=%v", skipped, err)
	}
	skipped, err = db.Insert(sig, "g1", l)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if !skipped {
		t.Fatal("expected duplicate md5 insert to be skipped")
	}
}

func TestClassifyMajorityVote(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	ecoli := lineage("Bacteria", "Proteobacteria", "Gammaproteobacteria", "Enterobacterales", "Enterobacteriaceae", "Escherichia", "coli")
	salmo := lineage("Bacteria", "Proteobacteria", "Gammaproteobacteria", "Enterobacterales", "Enterobacteriaceae", "Salmonella", "enterica")

	if _, err := db.Insert(buildSig(t, "ecoli1", []uint64{1, 2, 3, 4, 5}), "ecoli1", ecoli); err != nil {
		t.Fatalf("insert ecoli1: %v", err)
	}
	if _, err := db.Insert(buildSig(t, "ecoli2", []uint64{1, 2, 3, 4, 6}), "ecoli2", ecoli); err != nil {
		t.Fatalf("insert ecoli2: %v", err)
	}
	if _, err := db.Insert(buildSig(t, "salmo1", []uint64{1, 2, 7}), "salmo1", salmo); err != nil {
		t.Fatalf("insert salmo1: %v", err)
	}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	// hashes 3,4 are unique to the ecoli records (full lineage, 2 votes);
	// hash 1 is shared with salmo1, collapsing to the shared family-level
	// prefix (1 vote) -- ecoli's raw count clearly dominates.
	query.AddHashes([]uint64{1, 3, 4})

	got, err := db.Classify(query, true, 1)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Status != StatusFound {
		t.Fatalf("status = %v, want found", got.Status)
	}
	if got.Votes != 2 {
		t.Fatalf("votes = %d, want 2", got.Votes)
	}
	want := "coli"
	if len(got.Lineage) == 0 || got.Lineage[len(got.Lineage)-1].Name != want {
		t.Fatalf("lineage = %v, want tail %q", got.Lineage, want)
	}
}

// TestClassifyDisagreeOnSiblingSplit reproduces a 50/50 split between two
// sibling lineages that share no hashes: half the query's hashes are only
// found in a genome with lineage A;B;C, half only in a genome with lineage
// A;B;D. Neither lineage's raw vote count dominates, so at the documented
// CLI default (--threshold 5, --majority unset) the aggregate LCA across
// both lineages is reported, truncated to the shared A;B prefix.
func TestClassifyDisagreeOnSiblingSplit(t *testing.T) {
	const cliDefaultThreshold = 5

	db := NewDatabase(21, 10, hashutil.DNA)
	abc := lineage("A", "B", "C")
	abd := lineage("A", "B", "D")

	if _, err := db.Insert(buildSig(t, "g1", []uint64{1, 2, 3, 4, 5}), "g1", abc); err != nil {
		t.Fatalf("insert g1: %v", err)
	}
	if _, err := db.Insert(buildSig(t, "g2", []uint64{6, 7, 8, 9, 10}), "g2", abd); err != nil {
		t.Fatalf("insert g2: %v", err)
	}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHashes([]uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	got, err := db.Classify(query, false, cliDefaultThreshold)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Status != StatusDisagree {
		t.Fatalf("status = %v, want disagree", got.Status)
	}
	if len(got.Lineage) != 2 || got.Lineage[0].Name != "A" || got.Lineage[1].Name != "B" {
		t.Fatalf("lineage = %v, want [A B]", got.Lineage)
	}
	if got.Votes != 10 {
		t.Fatalf("votes = %d, want 10", got.Votes)
	}
}

func TestClassifyMajorityModeNoMatchBelowThreshold(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	abc := lineage("A", "B", "C")
	if _, err := db.Insert(buildSig(t, "g1", []uint64{1, 2, 3}), "g1", abc); err != nil {
		t.Fatalf("insert g1: %v", err)
	}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHashes([]uint64{1, 2, 3})

	// majority mode: the single top lineage has 3 votes, which does not
	// clear a threshold of 5, so the verdict is nomatch rather than
	// falling back to the non-majority aggregate path.
	got, err := db.Classify(query, true, 5)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Status != StatusNoMatch {
		t.Fatalf("status = %v, want nomatch", got.Status)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	if _, err := db.Insert(buildSig(t, "ecoli1", []uint64{1, 2, 3}), "ecoli1", lineage("Bacteria")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHashes([]uint64{999, 1000})

	got, err := db.Classify(query, false, 1)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Status != StatusNoMatch {
		t.Fatalf("status = %v, want nomatch", got.Status)
	}
}

func TestSummarizeReportsEveryPrefix(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	ecoli := lineage("Bacteria", "Proteobacteria", "Escherichia")
	if _, err := db.Insert(buildSig(t, "ecoli1", []uint64{1, 2}), "ecoli1", ecoli); err != nil {
		t.Fatalf("insert: %v", err)
	}

	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHashes([]uint64{1, 2})

	rows, err := db.Summarize(query, 1)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (one per rank depth)", len(rows))
	}
	for _, row := range rows {
		if row.Count != 2 {
			t.Fatalf("row %v count = %d, want 2", row.Lineage, row.Count)
		}
	}
}

func TestDatabaseJSONRoundTrip(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	ecoli := lineage("Bacteria", "Proteobacteria", "Escherichia")
	if _, err := db.Insert(buildSig(t, "ecoli1", []uint64{1, 2, 3}), "ecoli1", ecoli); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var buf bytes.Buffer
	if err := db.WriteJSON(&buf, false); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Ksize != db.Ksize || got.Scaled != db.Scaled || got.Moltype != db.Moltype {
		t.Fatalf("round-tripped params = %+v, want ksize=%d scaled=%d moltype=%v", got, db.Ksize, db.Scaled, db.Moltype)
	}
	lineages := got.LineagesForHash(1)
	if len(lineages) != 1 || lineages[0].key() != ecoli.key() {
		t.Fatalf("LineagesForHash(1) = %v, want %v", lineages, ecoli)
	}
}

func TestDatabaseJSONRoundTripGzip(t *testing.T) {
	db := NewDatabase(21, 10, hashutil.DNA)
	if _, err := db.Insert(buildSig(t, "ecoli1", []uint64{5, 6}), "ecoli1", lineage("Bacteria")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var buf bytes.Buffer
	if err := db.WriteJSON(&buf, true); err != nil {
		t.Fatalf("WriteJSON gzip: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON gzip: %v", err)
	}
	if len(got.LineagesForHash(5)) != 1 {
		t.Fatalf("expected lineage for hash 5 to survive gzip round trip")
	}
}
