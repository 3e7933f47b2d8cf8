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

// Package hashutil implements the deterministic hashing of canonical k-mers
// that every sketch is built on: DNA canonicalization, protein/dayhoff/hp
// alphabet folding, six-frame translation, and the seeded 64-bit
// MurmurHash3-family hash applied to the resulting bytes.
package hashutil

import "errors"

// ErrIllegalBase means a byte outside the DNA IUPAC alphabet was seen.
var ErrIllegalBase = errors.New("hashutil: illegal base")

// ErrInvalidKmer is returned when force mode is off and a k-mer contains
// a character outside the expected alphabet.
var ErrInvalidKmer = errors.New("hashutil: invalid k-mer")

var complement = [256]byte{}

func init() {
	for i := 0; i < 256; i++ {
		complement[i] = byte(i)
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
		'U': 'A', 'u': 'a',
		'R': 'Y', 'Y': 'R', 'r': 'y', 'y': 'r',
		'S': 'S', 's': 's', 'W': 'W', 'w': 'w',
		'K': 'M', 'M': 'K', 'k': 'm', 'm': 'k',
		'B': 'V', 'V': 'B', 'b': 'v', 'v': 'b',
		'D': 'H', 'H': 'D', 'd': 'h', 'h': 'd',
		'N': 'N', 'n': 'n',
	}
	for k, v := range pairs {
		complement[k] = v
	}
}

// IsDNAByte reports whether b is a valid (possibly degenerate) DNA symbol.
func IsDNAByte(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T', 'U', 'a', 'c', 'g', 't', 'u',
		'R', 'Y', 'S', 'W', 'K', 'M', 'B', 'D', 'H', 'V', 'N',
		'r', 'y', 's', 'w', 'k', 'm', 'b', 'd', 'h', 'v', 'n':
		return true
	}
	return false
}

// ReverseComplement returns the reverse complement of a DNA byte slice.
// It never mutates seq.
func ReverseComplement(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i, b := range seq {
		out[n-1-i] = complement[b]
	}
	return out
}

// Canonical returns the lexicographically smaller of seq and its reverse
// complement, i.e. the strand-independent representative k-mer.
func Canonical(seq []byte) []byte {
	rc := ReverseComplement(seq)
	if bytesLess(rc, seq) {
		return rc
	}
	return seq
}

func bytesLess(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// CanonicalKmers streams the canonical form of every length-k window of seq
// through yield. It stops early if yield returns false.
func CanonicalKmers(seq []byte, k int, force bool, yield func(kmer []byte) bool) error {
	if k < 1 || k > len(seq) {
		return nil
	}
	for i := 0; i+k <= len(seq); i++ {
		win := seq[i : i+k]
		if !force {
			for _, b := range win {
				if !IsDNAByte(b) {
					return ErrInvalidKmer
				}
			}
		} else {
			bad := false
			for _, b := range win {
				if !IsDNAByte(b) {
					bad = true
					break
				}
			}
			if bad {
				continue
			}
		}
		if !yield(Canonical(win)) {
			return nil
		}
	}
	return nil
}
