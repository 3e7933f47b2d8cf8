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

// Package sbt implements the Sequence Bloom Tree: a d-ary tree of Bloom
// filters over leaf signatures that prunes similarity search by bounding,
// at each internal node, the best score any descendant leaf could reach.
package sbt

import (
	"math"
	"math/bits"

	"github.com/klauspost/cpuid/v2"
)

// avx2Available mirrors the teacher's cpuid-gated dispatch between a
// vectorizable word-at-a-time popcount and a byte-at-a-time fallback;
// Go has no portable AVX2 intrinsic, so both paths run math/bits, but the
// wide path only pays the slice-to-uint64 conversion when the CPU can
// actually execute POPCNT efficiently.
var avx2Available = cpuid.CPU.Supports(cpuid.AVX2)

// BloomFilter is a fixed-size, fixed-hash-count Bloom filter over 64-bit
// sketch hashes. nTables independent hash functions are derived from a
// single seeded hash by splitting its bits, the same "one real hash,
// several derived probes" trick the teacher's index code uses to avoid
// computing k independent hashes per k-mer.
type BloomFilter struct {
	bits    []byte
	nBits   uint64
	nTables int
}

// NewBloomFilter allocates a Bloom filter sized to hold sizeBits bits and
// probed nTables times per insertion/lookup.
func NewBloomFilter(sizeBits uint64, nTables int) *BloomFilter {
	if sizeBits == 0 {
		sizeBits = 1
	}
	nBytes := (sizeBits + 7) / 8
	return &BloomFilter{bits: make([]byte, nBytes), nBits: nBytes * 8, nTables: nTables}
}

func (b *BloomFilter) probe(h uint64, i int) uint64 {
	// Splitmix64-style mixing per probe index, so each of the nTables
	// probes for the same hash lands roughly independently.
	mixed := h + uint64(i)*0x9E3779B97F4A7C15
	mixed ^= mixed >> 33
	mixed *= 0xff51afd7ed558ccd
	mixed ^= mixed >> 33
	return mixed % b.nBits
}

// Add sets every probe bit for hash h.
func (b *BloomFilter) Add(h uint64) {
	for i := 0; i < b.nTables; i++ {
		pos := b.probe(h, i)
		b.bits[pos/8] |= 1 << (pos % 8)
	}
}

// AddHashes bulk-inserts.
func (b *BloomFilter) AddHashes(hs []uint64) {
	for _, h := range hs {
		b.Add(h)
	}
}

// Contains reports whether every probe bit for h is set (i.e. h is
// possibly present; false positives are possible, false negatives are not).
func (b *BloomFilter) Contains(h uint64) bool {
	for i := 0; i < b.nTables; i++ {
		pos := b.probe(h, i)
		if b.bits[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// CountMatches returns how many of hs are (possibly) contained.
func (b *BloomFilter) CountMatches(hs []uint64) int {
	n := 0
	for _, h := range hs {
		if b.Contains(h) {
			n++
		}
	}
	return n
}

// Union ORs other's bits into b in place; both must have identical shape.
func (b *BloomFilter) Union(other *BloomFilter) {
	for i := range b.bits {
		b.bits[i] |= other.bits[i]
	}
}

// NOccupied returns the number of set bits, using a word-at-a-time
// popcount when the tail is wide enough to benefit and the host CPU
// reports POPCNT/AVX2 support, matching the teacher's AVX2Available gate.
func (b *BloomFilter) NOccupied() int {
	if avx2Available && len(b.bits) >= 8 {
		return countSetBitsWide(b.bits)
	}
	return countSetBitsNarrow(b.bits)
}

func countSetBitsWide(buf []byte) int {
	n := 0
	i := 0
	for ; i+8 <= len(buf); i += 8 {
		word := uint64(buf[i]) | uint64(buf[i+1])<<8 | uint64(buf[i+2])<<16 | uint64(buf[i+3])<<24 |
			uint64(buf[i+4])<<32 | uint64(buf[i+5])<<40 | uint64(buf[i+6])<<48 | uint64(buf[i+7])<<56
		n += bits.OnesCount64(word)
	}
	for ; i < len(buf); i++ {
		n += bits.OnesCount8(buf[i])
	}
	return n
}

func countSetBitsNarrow(buf []byte) int {
	n := 0
	for _, b := range buf {
		n += bits.OnesCount8(b)
	}
	return n
}

// ExpectedCollisions estimates the false-positive rate of a filter that
// is fraction p full (occupied/total bits), has k=nTables hash functions,
// and l independent lookups — the same closed-form bound the teacher's
// maxFPR helper applies to size a filter ahead of construction.
func ExpectedCollisions(p float64, k float64, l int) float64 {
	return math.Exp(-float64(l) * (k - p) * (k - p) / 2 / (1 - p))
}
