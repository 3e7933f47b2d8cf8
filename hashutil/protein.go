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

// codonTable maps a DNA codon (uppercase ACGT, 3 bytes) to the standard
// single-letter amino acid code. '*' marks a stop codon.
var codonTable = map[string]byte{
	"TTT": 'F', "TTC": 'F', "TTA": 'L', "TTG": 'L',
	"CTT": 'L', "CTC": 'L', "CTA": 'L', "CTG": 'L',
	"ATT": 'I', "ATC": 'I', "ATA": 'I', "ATG": 'M',
	"GTT": 'V', "GTC": 'V', "GTA": 'V', "GTG": 'V',
	"TCT": 'S', "TCC": 'S', "TCA": 'S', "TCG": 'S',
	"CCT": 'P', "CCC": 'P', "CCA": 'P', "CCG": 'P',
	"ACT": 'T', "ACC": 'T', "ACA": 'T', "ACG": 'T',
	"GCT": 'A', "GCC": 'A', "GCA": 'A', "GCG": 'A',
	"TAT": 'Y', "TAC": 'Y', "TAA": '*', "TAG": '*',
	"CAT": 'H', "CAC": 'H', "CAA": 'Q', "CAG": 'Q',
	"AAT": 'N', "AAC": 'N', "AAA": 'K', "AAG": 'K',
	"GAT": 'D', "GAC": 'D', "GAA": 'E', "GAG": 'E',
	"TGT": 'C', "TGC": 'C', "TGA": '*', "TGG": 'W',
	"CGT": 'R', "CGC": 'R', "CGA": 'R', "CGG": 'R',
	"AGT": 'S', "AGC": 'S', "AGA": 'R', "AGG": 'R',
	"GGT": 'G', "GGC": 'G', "GGA": 'G', "GGG": 'G',
}

// Translate converts a nucleotide sequence (length a multiple of 3, in
// frame) to its amino acid translation. Codons with non-ACGT bytes or
// unknown triplets translate to 'X'.
func Translate(nt []byte) []byte {
	n := len(nt) / 3
	aa := make([]byte, n)
	buf := make([]byte, 3)
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			buf[j] = upper(nt[i*3+j])
		}
		if c, ok := codonTable[string(buf)]; ok {
			aa[i] = c
		} else {
			aa[i] = 'X'
		}
	}
	return aa
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 32
	}
	return b
}

// SixFrameTranslations returns the amino-acid translations of all six
// reading frames (3 forward, 3 reverse-complement) of nt: each offset
// 0, 1, 2 skips that many leading bases before grouping the remainder
// into codons, against both nt and ReverseComplement(nt). Each returned
// frame holds len(frame[offset:])/3 amino acids (the trailing partial
// codon, if any, is dropped); callers slide a k-mer window across each
// frame themselves rather than receiving pre-windowed output.
func SixFrameTranslations(nt []byte) [][]byte {
	out := make([][]byte, 0, 6)
	for _, frame := range [][]byte{nt, ReverseComplement(nt)} {
		for offset := 0; offset < 3; offset++ {
			if offset >= len(frame) {
				continue
			}
			out = append(out, Translate(frame[offset:]))
		}
	}
	return out
}

// dayhoff folds the 20 standard amino acids (plus 'X'/'*') into Dayhoff's
// six evolutionary-exchange groups, a classic compression used to detect
// distant homology.
var dayhoffGroup = map[byte]byte{
	'C': '1',
	'A': '2', 'G': '2', 'P': '2', 'S': '2', 'T': '2',
	'D': '3', 'E': '3', 'N': '3', 'Q': '3',
	'H': '4', 'K': '4', 'R': '4',
	'I': '5', 'L': '5', 'M': '5', 'V': '5',
	'F': '6', 'W': '6', 'Y': '6',
}

// hpGroup folds amino acids into the two-letter hydrophobic/polar alphabet.
var hpGroup = map[byte]byte{
	'A': 'h', 'C': 'h', 'F': 'h', 'I': 'h', 'L': 'h', 'M': 'h', 'V': 'h', 'W': 'h', 'Y': 'h',
	'D': 'p', 'E': 'p', 'G': 'p', 'H': 'p', 'K': 'p', 'N': 'p', 'P': 'p', 'Q': 'p', 'R': 'p', 'S': 'p', 'T': 'p',
}

// FoldDayhoff maps an amino acid sequence onto the Dayhoff alphabet.
// Unmapped bytes (X, *, gaps) pass through unchanged.
func FoldDayhoff(aa []byte) []byte {
	out := make([]byte, len(aa))
	for i, b := range aa {
		if g, ok := dayhoffGroup[upper(b)]; ok {
			out[i] = g
		} else {
			out[i] = b
		}
	}
	return out
}

// FoldHP maps an amino acid sequence onto the hydrophobic/polar alphabet.
func FoldHP(aa []byte) []byte {
	out := make([]byte, len(aa))
	for i, b := range aa {
		if g, ok := hpGroup[upper(b)]; ok {
			out[i] = g
		} else {
			out[i] = b
		}
	}
	return out
}
