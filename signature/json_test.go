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

package signature

import (
	"bytes"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func buildTestSignature(t *testing.T) *Signature {
	t.Helper()
	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 1000, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	sk.AddHashes([]uint64{10, 20, 30, 40})
	return New(sk, "test-genome", "test.fa")
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	sig := buildTestSignature(t)
	var buf bytes.Buffer
	if err := Write(&buf, []*Signature{sig}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf, ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Name != "test-genome" {
		t.Errorf("Name = %q, want test-genome", got[0].Name)
	}
	if got[0].MD5() != sig.MD5() {
		t.Errorf("MD5 mismatch after round trip: %q vs %q", got[0].MD5(), sig.MD5())
	}
}

func TestWriteThenReadGzipRoundTrips(t *testing.T) {
	sig := buildTestSignature(t)
	var buf bytes.Buffer
	if err := WriteGzip(&buf, []*Signature{sig}); err != nil {
		t.Fatalf("WriteGzip: %v", err)
	}
	got, err := Read(&buf, ReadOptions{})
	if err != nil {
		t.Fatalf("Read (gzip): %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
}

func TestReadRejectsWrongHashFunction(t *testing.T) {
	doc := `[{"class":"sourmash_signature","hash_function":"1.murmur128","name":"x","signatures":[]}]`
	_, err := Read(bytes.NewBufferString(doc), ReadOptions{})
	if err == nil {
		t.Fatal("expected error for unsupported hash_function")
	}
}

func TestReadRejectsMD5MismatchUnlessIgnored(t *testing.T) {
	doc := `[{"class":"sourmash_signature","hash_function":"0.murmur64","name":"x","signatures":[
		{"ksize":21,"num":0,"max_hash":18446744073709551,"seed":42,"molecule":"DNA","mins":[10,20],"md5sum":"deadbeefdeadbeefdeadbeefdeadbeef"}
	]}]`
	if _, err := Read(bytes.NewBufferString(doc), ReadOptions{}); err == nil {
		t.Fatal("expected md5 mismatch error")
	}
	if _, err := Read(bytes.NewBufferString(doc), ReadOptions{IgnoreMD5: true}); err != nil {
		t.Fatalf("expected IgnoreMD5 to suppress mismatch, got %v", err)
	}
}
