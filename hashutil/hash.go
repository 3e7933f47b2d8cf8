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

import (
	"github.com/spaolacci/murmur3"
)

// Moltype is the molecule type a sketch is built over.
type Moltype uint8

// The four supported molecule types.
const (
	DNA Moltype = iota
	Protein
	Dayhoff
	HP
)

func (m Moltype) String() string {
	switch m {
	case DNA:
		return "DNA"
	case Protein:
		return "protein"
	case Dayhoff:
		return "dayhoff"
	case HP:
		return "hp"
	}
	return "unknown"
}

// ParseMoltype parses the four accepted spellings used in manifests/CLI.
func ParseMoltype(s string) (Moltype, bool) {
	switch s {
	case "DNA", "dna":
		return DNA, true
	case "protein":
		return Protein, true
	case "dayhoff":
		return Dayhoff, true
	case "hp":
		return HP, true
	}
	return 0, false
}

// HashKmer applies the seeded 64-bit MurmurHash3-family hash that is the
// identity of every hash in every sketch. The seed is part of sketch
// identity; two sketches built with different seeds are never comparable.
func HashKmer(kmer []byte, seed uint32) uint64 {
	return murmur3.Sum64WithSeed(kmer, seed)
}

// HashDNA hashes a canonical DNA k-mer under the given seed. The caller is
// responsible for having already canonicalized kmer (see Canonical).
func HashDNA(canonicalKmer []byte, seed uint32) uint64 {
	return HashKmer(canonicalKmer, seed)
}

// FoldProtein applies the alphabet folding appropriate to moltype to an
// amino-acid k-mer. DNA is not a valid input to this function.
func FoldProtein(aaKmer []byte, moltype Moltype) []byte {
	switch moltype {
	case Dayhoff:
		return FoldDayhoff(aaKmer)
	case HP:
		return FoldHP(aaKmer)
	default:
		return aaKmer
	}
}
