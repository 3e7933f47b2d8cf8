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
	"bytes"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func buildZipTestSig(t *testing.T, name string, hashes []uint64) *signature.Signature {
	t.Helper()
	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	sk.AddHashes(hashes)
	return signature.New(sk, name, name+".fa")
}

func TestZipRoundTripFindAndSelect(t *testing.T) {
	sigs := []*signature.Signature{
		buildZipTestSig(t, "g1", []uint64{1, 2, 3, 4}),
		buildZipTestSig(t, "g2", []uint64{100, 101}),
	}
	located := make([]Located, len(sigs))
	for i, s := range sigs {
		located[i] = Located{Signature: s, Location: s.Name}
	}

	var buf bytes.Buffer
	if err := WriteZip(&buf, located); err != nil {
		t.Fatalf("WriteZip: %v", err)
	}

	ra := bytes.NewReader(buf.Bytes())
	ix, err := OpenZip(ra, int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenZip: %v", err)
	}

	loaded, err := ix.Signatures()
	if err != nil {
		t.Fatalf("Signatures: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d signatures, want 2", len(loaded))
	}

	search := &JaccardSearch{MinScore: 0.99}
	query, err := sketch.New(21, hashutil.DNA, 42, 0, 10, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	query.AddHashes([]uint64{1, 2, 3, 4})

	results, err := ix.Find(search, query)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(results) != 1 || results[0].Signature.Name != "g1" {
		t.Fatalf("Find results = %+v, want only g1", results)
	}

	restricted, err := ix.Select(SelectParams{Ksize: 21})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	restrictedSigs, err := restricted.Signatures()
	if err != nil {
		t.Fatalf("Signatures after Select: %v", err)
	}
	if len(restrictedSigs) != 2 {
		t.Fatalf("got %d signatures after ksize-21 select, want 2", len(restrictedSigs))
	}

	narrowed, err := ix.Select(SelectParams{Ksize: 99})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	narrowedSigs, err := narrowed.Signatures()
	if err != nil {
		t.Fatalf("Signatures after narrowing select: %v", err)
	}
	if len(narrowedSigs) != 0 {
		t.Fatalf("got %d signatures after ksize-99 select, want 0", len(narrowedSigs))
	}
}

func TestManifestIndexPicklistFiltersBeforeLoad(t *testing.T) {
	sigs := []*signature.Signature{
		buildZipTestSig(t, "g1", []uint64{1, 2, 3}),
		buildZipTestSig(t, "g2", []uint64{4, 5, 6}),
	}
	located := make([]Located, len(sigs))
	for i, s := range sigs {
		located[i] = Located{Signature: s, Location: s.Name}
	}
	var buf bytes.Buffer
	if err := WriteZip(&buf, located); err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	ra := bytes.NewReader(buf.Bytes())
	ix, err := OpenZip(ra, int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenZip: %v", err)
	}

	pl := NewPicklist(ColumnName, false, []string{"g1"})
	restricted, err := ix.Select(SelectParams{Picklist: pl})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	got, err := restricted.Signatures()
	if err != nil {
		t.Fatalf("Signatures: %v", err)
	}
	if len(got) != 1 || got[0].Name != "g1" {
		t.Fatalf("got %+v, want only g1", got)
	}
}
