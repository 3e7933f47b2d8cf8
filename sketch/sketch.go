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

// Package sketch implements the bottom-k / scaled MinHash primitive: a
// streaming set-cardinality estimator with optional abundance tracking,
// set algebra, and derived similarity/containment/ANI estimators.
package sketch

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/twotwotwo/sorts"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
)

const maxUint64 = ^uint64(0)

// Sketch is a MinHash sketch. Exactly one of Num and Scaled is nonzero.
// Zero value is not valid; build one with New.
type Sketch struct {
	K              int
	Moltype        hashutil.Moltype
	Seed           uint32
	Num            uint64 // bounded bottom-k size, 0 if scaled sketch
	Scaled         uint64 // sampling reciprocal, 0 if num sketch
	TrackAbundance bool

	maxHash uint64 // derived: floor(2^64/scaled), meaningful only if Scaled>0

	mins  []uint64          // ascending sorted hash set
	set   map[uint64]struct{}
	abund map[uint64]uint64 // present iff TrackAbundance
}

// New creates an empty sketch. Exactly one of num/scaled must be nonzero.
func New(k int, moltype hashutil.Moltype, seed uint32, num, scaled uint64, trackAbundance bool) (*Sketch, error) {
	if (num == 0) == (scaled == 0) {
		return nil, fmt.Errorf("%w: exactly one of num/scaled must be nonzero", ErrIncompatibleSketch)
	}
	s := &Sketch{
		K:              k,
		Moltype:        moltype,
		Seed:           seed,
		Num:            num,
		Scaled:         scaled,
		TrackAbundance: trackAbundance,
		set:            make(map[uint64]struct{}),
	}
	if scaled > 0 {
		s.maxHash = maxHashFor(scaled)
	}
	if trackAbundance {
		s.abund = make(map[uint64]uint64)
	}
	return s, nil
}

func maxHashFor(scaled uint64) uint64 {
	if scaled <= 1 {
		return maxUint64
	}
	// floor(2^64 / scaled), computed without overflow: 2^64 = maxUint64+1,
	// so the quotient gains one only when scaled divides 2^64 exactly.
	if maxUint64%scaled == scaled-1 {
		return maxUint64/scaled + 1
	}
	return maxUint64 / scaled
}

// MaxHash returns floor(2^64/Scaled); only meaningful for scaled sketches.
func (s *Sketch) MaxHash() uint64 { return s.maxHash }

// Len returns the number of retained hashes.
func (s *Sketch) Len() int { return len(s.mins) }

// sameParams checks ksize/moltype/seed compatibility, the precondition for
// every pairwise operation.
func sameParams(a, b *Sketch) bool {
	return a.K == b.K && a.Moltype == b.Moltype && a.Seed == b.Seed
}

// AddHash inserts a single hash, respecting num/scaled admission rules and
// updating the abundance count on acceptance.
func (s *Sketch) AddHash(h uint64) {
	if s.Scaled > 0 {
		if h >= s.maxHash {
			return
		}
		s.insertUnbounded(h)
		return
	}
	s.insertBounded(h)
}

// AddHashes inserts many hashes. For large batches against a scaled sketch
// (where every admissible hash is kept and insertion order doesn't affect
// the result), the batch is pre-sorted with a parallel sort so the
// downstream binary-search insertions run against runs of nearby values.
func (s *Sketch) AddHashes(hs []uint64) {
	if s.Scaled > 0 && len(hs) >= 1<<16 {
		cp := make([]uint64, len(hs))
		copy(cp, hs)
		sortHashesParallel(cp)
		hs = cp
	}
	for _, h := range hs {
		s.AddHash(h)
	}
}

func (s *Sketch) bumpAbundance(h uint64) {
	if s.TrackAbundance {
		s.abund[h]++
	}
}

func (s *Sketch) insertUnbounded(h uint64) {
	if _, ok := s.set[h]; ok {
		s.bumpAbundance(h)
		return
	}
	i := sort.Search(len(s.mins), func(i int) bool { return s.mins[i] >= h })
	s.mins = append(s.mins, 0)
	copy(s.mins[i+1:], s.mins[i:])
	s.mins[i] = h
	s.set[h] = struct{}{}
	s.bumpAbundance(h)
}

func (s *Sketch) insertBounded(h uint64) {
	if _, ok := s.set[h]; ok {
		s.bumpAbundance(h)
		return
	}
	if uint64(len(s.mins)) < s.Num {
		i := sort.Search(len(s.mins), func(i int) bool { return s.mins[i] >= h })
		s.mins = append(s.mins, 0)
		copy(s.mins[i+1:], s.mins[i:])
		s.mins[i] = h
		s.set[h] = struct{}{}
		s.bumpAbundance(h)
		return
	}
	// full: evict the current maximum if h is smaller.
	if len(s.mins) == 0 {
		return
	}
	last := s.mins[len(s.mins)-1]
	if h >= last {
		return
	}
	delete(s.set, last)
	if s.TrackAbundance {
		delete(s.abund, last)
	}
	i := sort.Search(len(s.mins)-1, func(i int) bool { return s.mins[i] >= h })
	s.mins[len(s.mins)-1] = 0
	copy(s.mins[i+1:], s.mins[i:len(s.mins)-1])
	s.mins[i] = h
	s.set[h] = struct{}{}
	s.bumpAbundance(h)
}

// AddSequence streams canonical k-mers from a DNA sequence and hashes each.
// Under protein-from-DNA hashing, all six reading frames are enumerated
// first (see AddSequenceAsProtein). force silently skips windows containing
// non-alphabet characters instead of failing.
func (s *Sketch) AddSequence(seq []byte, force bool) error {
	if s.Moltype != hashutil.DNA {
		return s.AddSequenceAsProtein(seq, force)
	}
	return hashutil.CanonicalKmers(seq, s.K, force, func(kmer []byte) bool {
		s.AddHash(hashutil.HashDNA(kmer, s.Seed))
		return true
	})
}

// AddSequenceAsProtein translates a DNA sequence in all six reading frames
// and hashes every (optionally folded) amino-acid k-mer found by sliding
// a k-mer window across each translated frame. aaK is the amino-acid
// k-mer length, i.e. K/3 for non-DNA moltypes.
func (s *Sketch) AddSequenceAsProtein(seq []byte, force bool) error {
	aaK := s.K / 3
	if aaK < 1 {
		return fmt.Errorf("%w: ksize too small for protein translation", ErrInvalidKmer)
	}
	for _, frame := range hashutil.SixFrameTranslations(seq) {
		for i := 0; i+aaK <= len(frame); i++ {
			if err := s.addProteinKmer(frame[i:i+aaK], force); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddProtein streams amino-acid k-mers directly from a protein sequence,
// using the same amino-acid k-mer length K/3 as AddSequenceAsProtein.
func (s *Sketch) AddProtein(seq []byte, force bool) error {
	aaK := s.K / 3
	if aaK < 1 {
		return fmt.Errorf("%w: ksize too small for protein k-mers", ErrInvalidKmer)
	}
	for i := 0; i+aaK <= len(seq); i++ {
		if err := s.addProteinKmer(seq[i:i+aaK], force); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sketch) addProteinKmer(aa []byte, force bool) error {
	for _, b := range aa {
		if b == 'X' || b == '*' {
			if force {
				return nil
			}
			return ErrInvalidKmer
		}
	}
	folded := hashutil.FoldProtein(aa, s.Moltype)
	s.AddHash(hashutil.HashKmer(folded, s.Seed))
	return nil
}

// RemoveMany drops the given hashes (and their abundances, if any).
func (s *Sketch) RemoveMany(hashes []uint64) {
	if len(hashes) == 0 {
		return
	}
	remove := make(map[uint64]struct{}, len(hashes))
	for _, h := range hashes {
		remove[h] = struct{}{}
	}
	out := s.mins[:0]
	for _, h := range s.mins {
		if _, drop := remove[h]; drop {
			delete(s.set, h)
			if s.TrackAbundance {
				delete(s.abund, h)
			}
			continue
		}
		out = append(out, h)
	}
	s.mins = out
}

// Hashes returns a sorted copy of the retained hash set.
func (s *Sketch) Hashes() []uint64 {
	out := make([]uint64, len(s.mins))
	copy(out, s.mins)
	return out
}

// Abundances returns a copy of the abundance map, or nil if not tracked.
func (s *Sketch) Abundances() map[uint64]uint64 {
	if !s.TrackAbundance {
		return nil
	}
	out := make(map[uint64]uint64, len(s.abund))
	for k, v := range s.abund {
		out[k] = v
	}
	return out
}

// Copy returns a deep copy of s.
func (s *Sketch) Copy() *Sketch {
	out := &Sketch{
		K: s.K, Moltype: s.Moltype, Seed: s.Seed,
		Num: s.Num, Scaled: s.Scaled, TrackAbundance: s.TrackAbundance,
		maxHash: s.maxHash,
	}
	out.mins = make([]uint64, len(s.mins))
	copy(out.mins, s.mins)
	out.set = make(map[uint64]struct{}, len(s.set))
	for k := range s.set {
		out.set[k] = struct{}{}
	}
	if s.TrackAbundance {
		out.abund = make(map[uint64]uint64, len(s.abund))
		for k, v := range s.abund {
			out.abund[k] = v
		}
	}
	return out
}

// Flatten returns a copy of s with abundance tracking dropped.
func (s *Sketch) Flatten() *Sketch {
	out := s.Copy()
	out.TrackAbundance = false
	out.abund = nil
	return out
}

// Merge unions other's hashes into s in place. Abundances are summed when
// both sketches track them. The two sketches must share ksize/moltype/seed
// and must both be num sketches with equal Num, or both scaled sketches
// with other's Scaled no finer than s's.
func (s *Sketch) Merge(other *Sketch) error {
	if !sameParams(s, other) {
		return ErrIncompatibleSketch
	}
	if (s.Num > 0) != (other.Num > 0) {
		return ErrIncompatibleSketch
	}
	if s.Num > 0 && s.Num != other.Num {
		return ErrIncompatibleSketch
	}
	if s.Scaled > 0 && other.Scaled < s.Scaled {
		return ErrIncompatibleSketch
	}
	for _, h := range other.mins {
		if s.Scaled > 0 && h >= s.maxHash {
			continue
		}
		s.insertFromMerge(h)
	}
	if s.TrackAbundance && other.TrackAbundance {
		for h, a := range other.abund {
			if _, ok := s.set[h]; ok {
				s.abund[h] += a
			}
		}
	}
	return nil
}

// insertFromMerge inserts a hash during merge without double-incrementing
// abundance (that's handled separately, by addition, after the union).
func (s *Sketch) insertFromMerge(h uint64) {
	if _, ok := s.set[h]; ok {
		return
	}
	if s.Num > 0 {
		if uint64(len(s.mins)) < s.Num {
			s.rawInsert(h)
			return
		}
		last := s.mins[len(s.mins)-1]
		if h >= last {
			return
		}
		delete(s.set, last)
		if s.TrackAbundance {
			delete(s.abund, last)
		}
		s.mins = s.mins[:len(s.mins)-1]
		s.rawInsert(h)
		return
	}
	s.rawInsert(h)
}

func (s *Sketch) rawInsert(h uint64) {
	i := sort.Search(len(s.mins), func(i int) bool { return s.mins[i] >= h })
	s.mins = append(s.mins, 0)
	copy(s.mins[i+1:], s.mins[i:])
	s.mins[i] = h
	s.set[h] = struct{}{}
}

// Intersection returns the (flattened) hash-set intersection of s and
// other, expressed at their common coarser resolution. Both inputs must
// share ksize/moltype/seed.
func Intersection(a, b *Sketch) (*Sketch, error) {
	if !sameParams(a, b) {
		return nil, ErrIncompatibleSketch
	}
	fa, fb, scaled, num, err := commonResolution(a, b)
	if err != nil {
		return nil, err
	}
	out, _ := New(a.K, a.Moltype, a.Seed, num, scaled, false)
	small, big := fa, fb
	if len(fb.mins) < len(fa.mins) {
		small, big = fb, fa
	}
	for _, h := range small.mins {
		if _, ok := big.set[h]; ok {
			out.rawInsert(h)
		}
	}
	return out, nil
}

// commonResolution flattens a and b and, if they are scaled sketches at
// different scaled values, downsamples both to the coarser one. Num
// sketches must already share Num.
func commonResolution(a, b *Sketch) (fa, fb *Sketch, scaled, num uint64, err error) {
	fa, fb = a.Flatten(), b.Flatten()
	if a.Num > 0 || b.Num > 0 {
		if a.Num != b.Num {
			return nil, nil, 0, 0, ErrIncompatibleSketch
		}
		return fa, fb, 0, a.Num, nil
	}
	scaled = a.Scaled
	if b.Scaled > scaled {
		scaled = b.Scaled
	}
	if a.Scaled != scaled {
		fa, err = fa.Downsample(0, scaled)
		if err != nil {
			return nil, nil, 0, 0, err
		}
	}
	if b.Scaled != scaled {
		fb, err = fb.Downsample(0, scaled)
		if err != nil {
			return nil, nil, 0, 0, err
		}
	}
	return fa, fb, scaled, 0, nil
}

// Downsample returns a new sketch at lower resolution. Exactly one of
// num/scaled must be given (the other zero), and it must represent a
// decrease in resolution relative to s.
func (s *Sketch) Downsample(num, scaled uint64) (*Sketch, error) {
	if (num == 0) == (scaled == 0) {
		return nil, fmt.Errorf("%w: exactly one of num/scaled must be given", ErrIncompatibleSketch)
	}
	if scaled > 0 {
		if s.Scaled == 0 {
			return nil, ErrIncompatibleSketch
		}
		if scaled < s.Scaled {
			return nil, ErrCannotDownsample
		}
		out, _ := New(s.K, s.Moltype, s.Seed, 0, scaled, s.TrackAbundance)
		newMax := maxHashFor(scaled)
		for _, h := range s.mins {
			if h < newMax {
				out.rawInsert(h)
				if s.TrackAbundance {
					out.abund[h] = s.abund[h]
				}
			}
		}
		return out, nil
	}
	if s.Num == 0 {
		return nil, ErrIncompatibleSketch
	}
	if num > s.Num {
		return nil, ErrCannotDownsample
	}
	out, _ := New(s.K, s.Moltype, s.Seed, num, 0, s.TrackAbundance)
	limit := int(num)
	if limit > len(s.mins) {
		limit = len(s.mins)
	}
	for _, h := range s.mins[:limit] {
		out.rawInsert(h)
		if s.TrackAbundance {
			out.abund[h] = s.abund[h]
		}
	}
	return out, nil
}

// MD5 returns the identity hash of the sketch: md5(ksize || sorted(hashes)),
// independent of insertion order and abundances.
func (s *Sketch) MD5() string {
	h := md5.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(s.K))
	h.Write(buf[:])
	for _, v := range s.mins {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// sortHashesParallel is used by AddHashes for very large batches; it
// mirrors the teacher's use of a parallel sort for large slices instead of
// the single-threaded standard-library sort.
func sortHashesParallel(xs []uint64) {
	if len(xs) < 1<<16 {
		sort.Sort(uint64Slice(xs))
		return
	}
	sorts.Quicksort(uint64Slice(xs))
}

type uint64Slice []uint64

func (s uint64Slice) Len() int           { return len(s) }
func (s uint64Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint64Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
