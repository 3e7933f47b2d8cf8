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

package recordio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func writeFasta(t *testing.T, records map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "seqs.fasta")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	for name, s := range records {
		if _, err := f.WriteString(">" + name + "\n" + s + "\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return path
}

func TestAddFileHashesRecords(t *testing.T) {
	path := writeFasta(t, map[string]string{"seq1": "ACGTACGTACGTACGTACGTACGTACGTACGTAC"})

	sk, err := sketch.New(21, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}

	n, err := AddFile(sk, path, false, false)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("nRecords = %d, want 1", n)
	}
	if sk.Len() == 0 {
		t.Fatalf("expected hashes to be added, got empty sketch")
	}
}

func TestAddFilesSumsRecordCounts(t *testing.T) {
	path1 := writeFasta(t, map[string]string{"a": "ACGTACGTACGTACGTACGTACGTACGT"})
	path2 := writeFasta(t, map[string]string{"b": "TTTTACGTACGTACGTACGTACGTACGT", "c": "GGGGACGTACGTACGTACGTACGTACGT"})

	sk, err := sketch.New(15, hashutil.DNA, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}

	n, err := AddFiles(sk, []string{path1, path2}, false, false)
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if n != 3 {
		t.Fatalf("nRecords = %d, want 3", n)
	}
}

func TestAddFileTranslatesDNAInputForProteinSketch(t *testing.T) {
	// 27 bases, 9 codons: MKVRTDASM (no stops), long enough for a few
	// aaK=5 windows across all six translated frames.
	path := writeFasta(t, map[string]string{"seq1": "ATGAAAGTTCGTACTGATGCTAGCATG"})

	sk, err := sketch.New(15, hashutil.Protein, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}

	n, err := AddFile(sk, path, false, false)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("nRecords = %d, want 1", n)
	}
	if sk.Len() == 0 {
		t.Fatalf("expected DNA input to be six-frame translated into protein hashes, got empty sketch")
	}
}

func TestAddFileHashesProteinInputDirectly(t *testing.T) {
	path := writeFasta(t, map[string]string{"seq1": "MKVRTDASMKVRTDASM"})

	sk, err := sketch.New(5, hashutil.Protein, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}

	n, err := AddFile(sk, path, true, false)
	if err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("nRecords = %d, want 1", n)
	}
	if sk.Len() == 0 {
		t.Fatalf("expected protein input to be hashed directly, got empty sketch")
	}

	direct, err := sketch.New(5, hashutil.Protein, 42, 0, 1, false)
	if err != nil {
		t.Fatalf("sketch.New: %v", err)
	}
	if err := direct.AddProtein([]byte("MKVRTDASMKVRTDASM"), false); err != nil {
		t.Fatalf("AddProtein: %v", err)
	}
	if sk.Len() != direct.Len() {
		t.Fatalf("AddFile with inputIsProtein=true produced %d hashes, want %d matching a direct AddProtein call", sk.Len(), direct.Len())
	}
}
