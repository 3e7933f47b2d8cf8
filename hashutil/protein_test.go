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

package hashutil

import "testing"

func TestTranslateKnownCodons(t *testing.T) {
	got := string(Translate([]byte("ATGAAATAA")))
	want := "MK*"
	if got != want {
		t.Fatalf("Translate = %q, want %q", got, want)
	}
}

func TestSixFrameTranslationsReturnsAllSixFrames(t *testing.T) {
	// 9 codons, long enough that every one of the three forward and
	// three reverse-complement offsets has at least one full codon left.
	nt := []byte("ATGAAAGTTCGTACTGATGCTAGCATG")

	frames := SixFrameTranslations(nt)
	if len(frames) != 6 {
		t.Fatalf("len(frames) = %d, want 6", len(frames))
	}

	forward0 := Translate(nt)
	if string(frames[0]) != string(forward0) {
		t.Fatalf("frame[0] = %q, want forward offset-0 translation %q", frames[0], forward0)
	}

	rc := ReverseComplement(nt)
	for offset := 0; offset < 3; offset++ {
		want := string(Translate(rc[offset:]))
		got := string(frames[3+offset])
		if got != want {
			t.Fatalf("frame[%d] (reverse offset %d) = %q, want %q", 3+offset, offset, got, want)
		}
	}

	// The three forward frames must not all be identical: a correct
	// offset shift changes every codon grouping after the first.
	if string(frames[0]) == string(frames[1]) && string(frames[1]) == string(frames[2]) {
		t.Fatalf("all three forward frames are identical, offsets are not being applied")
	}
}

func TestSixFrameTranslationsShortInput(t *testing.T) {
	// Only 1 base: offsets 1 and 2 are skipped since they are not < len(frame),
	// leaving just the offset-0 forward and reverse frames rather than panicking
	// on an out-of-range slice.
	frames := SixFrameTranslations([]byte("A"))
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2 (offset 0 only, forward+reverse)", len(frames))
	}
}

func TestFoldDayhoffAndFoldHP(t *testing.T) {
	aa := []byte("ACDEFGHIKLMNPQRSTVWY")

	dayhoffWant := map[byte]byte{
		'C': '1',
		'A': '2', 'G': '2', 'P': '2', 'S': '2', 'T': '2',
		'D': '3', 'E': '3', 'N': '3', 'Q': '3',
		'H': '4', 'K': '4', 'R': '4',
		'I': '5', 'L': '5', 'M': '5', 'V': '5',
		'F': '6', 'W': '6', 'Y': '6',
	}
	got := FoldDayhoff(aa)
	for i, b := range aa {
		if got[i] != dayhoffWant[b] {
			t.Fatalf("FoldDayhoff(%q)[%d] = %q, want %q", aa, i, got[i], dayhoffWant[b])
		}
	}

	hpWant := map[byte]byte{
		'A': 'h', 'C': 'h', 'F': 'h', 'I': 'h', 'L': 'h', 'M': 'h', 'V': 'h', 'W': 'h', 'Y': 'h',
		'D': 'p', 'E': 'p', 'G': 'p', 'H': 'p', 'K': 'p', 'N': 'p', 'P': 'p', 'Q': 'p', 'R': 'p', 'S': 'p', 'T': 'p',
	}
	gotHP := FoldHP(aa)
	for i, b := range aa {
		if gotHP[i] != hpWant[b] {
			t.Fatalf("FoldHP(%q)[%d] = %q, want %q", aa, i, gotHP[i], hpWant[b])
		}
	}
}
