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

package manifest

import (
	"bytes"
	"testing"
)

func sampleManifest() *Manifest {
	return New([]Row{
		{InternalLocation: "signatures/aaa.sig.gz", MD5: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", MD5Short: "aaaaaaaa", Ksize: 21, Moltype: "DNA", Scaled: 1000, NHashes: 100, Name: "genomeA", Filename: "a.fa"},
		{InternalLocation: "signatures/bbb.sig.gz", MD5: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", MD5Short: "bbbbbbbb", Ksize: 31, Moltype: "DNA", Scaled: 1000, NHashes: 80, Name: "genomeB", Filename: "b.fa"},
		{InternalLocation: "signatures/ccc.sig.gz", MD5: "cccccccccccccccccccccccccccccccc", MD5Short: "cccccccc", Ksize: 21, Moltype: "protein", Num: 500, NHashes: 500, WithAbundance: true, Name: "genomeC", Filename: "c.faa"},
	})
}

func TestSelectFiltersByKsize(t *testing.T) {
	m := sampleManifest()
	sub := m.Select(Predicate{Ksize: 21})
	if len(sub.Rows) != 2 {
		t.Fatalf("len(sub.Rows) = %d, want 2", len(sub.Rows))
	}
}

func TestSelectFiltersByMoltype(t *testing.T) {
	m := sampleManifest()
	sub := m.Select(Predicate{Moltype: "protein"})
	if len(sub.Rows) != 1 || sub.Rows[0].Name != "genomeC" {
		t.Fatalf("expected only genomeC, got %+v", sub.Rows)
	}
}

func TestSelectAbundPredicate(t *testing.T) {
	m := sampleManifest()
	yes := true
	sub := m.Select(Predicate{Abund: &yes})
	if len(sub.Rows) != 1 || sub.Rows[0].Name != "genomeC" {
		t.Fatalf("expected only genomeC with abundance, got %+v", sub.Rows)
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	m := sampleManifest()
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Rows) != len(m.Rows) {
		t.Fatalf("len(got.Rows) = %d, want %d", len(got.Rows), len(m.Rows))
	}
	for i := range m.Rows {
		if got.Rows[i] != m.Rows[i] {
			t.Errorf("row %d mismatch: got %+v want %+v", i, got.Rows[i], m.Rows[i])
		}
	}
}

func TestReadTolerantOfCommentHeader(t *testing.T) {
	doc := "# SOURMASH-MANIFEST-VERSION: 1.0\n" +
		"internal_location,md5,md5short,ksize,moltype,num,scaled,n_hashes,with_abundance,name,filename\n" +
		"sig.gz,deadbeef00000000000000000000000,deadbeef,21,DNA,0,1000,10,0,g,f.fa\n"
	m, err := Read(bytes.NewBufferString(doc))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(m.Rows) != 1 {
		t.Fatalf("len(m.Rows) = %d, want 1", len(m.Rows))
	}
}
