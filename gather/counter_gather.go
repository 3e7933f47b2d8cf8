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

package gather

import (
	"container/heap"

	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/index"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// minSharedHashes is the floor below which a candidate is no longer
// reported, regardless of threshold_bp.
const minSharedHashes = 5

// candidateRecord is one reference held alive by a CounterGather after a
// successful prefetch, indexed by a dense small-integer id per the spec's
// "arena of reference records" guidance.
type candidateRecord struct {
	id        int
	signature *signature.Signature
	location  string
	flat      *sketch.Sketch      // flattened reference sketch
	hashSet   map[uint64]struct{} // flat.Hashes() as a set, for consume's overlap test
	count     int                 // live |currentQuery ∩ R|
	dead      bool
}

// heapItem is a lazy-deletion max-heap entry: it is stale, and discarded
// on pop, whenever its count no longer matches the live candidateRecord.
// Equal counts are ordered by reference md5, ascending.
type heapItem struct {
	id    int
	count int
	md5   string
}

type maxHeap []heapItem

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count > h[j].count
	}
	return h[i].md5 < h[j].md5
}
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CounterGather is the per-index accelerator the spec's §4.7 names: built
// once via a prefetch pass, it answers repeated peek/consume calls as the
// caller's current query shrinks, without ever rescanning the full index.
type CounterGather struct {
	scaled     uint64
	candidates map[int]*candidateRecord
	heap       maxHeap
	unionFound map[uint64]struct{}
}

// NewCounterGather runs idx.Prefetch(query, thresholdBP) and builds the
// counter over every reference whose intersection with query is nonempty.
func NewCounterGather(idx index.Index, query *sketch.Sketch, thresholdBP uint64) (*CounterGather, error) {
	results, err := idx.Prefetch(query, thresholdBP)
	if err != nil {
		return nil, errors.Wrap(err, "gather: prefetch")
	}

	flatQuery := query.Flatten()
	cg := &CounterGather{
		scaled:     query.Scaled,
		candidates: make(map[int]*candidateRecord, len(results)),
		unionFound: map[uint64]struct{}{},
	}

	for i, res := range results {
		candSketch := res.Signature.Sketch.Flatten()
		if candSketch.Scaled > cg.scaled {
			cg.scaled = candSketch.Scaled
		}
		inter, err := sketch.Intersection(flatQuery, candSketch)
		if err != nil {
			return nil, errors.Wrap(err, "gather: computing candidate intersection")
		}
		if inter.Len() == 0 {
			continue
		}
		rec := &candidateRecord{
			id:        i,
			signature: res.Signature,
			location:  res.Location,
			flat:      candSketch,
			hashSet:   hashSetOf(candSketch),
			count:     inter.Len(),
		}
		cg.candidates[rec.id] = rec
		cg.heap = append(cg.heap, heapItem{id: rec.id, count: rec.count, md5: rec.signature.MD5()})
	}
	heap.Init(&cg.heap)
	return cg, nil
}

func hashSetOf(s *sketch.Sketch) map[uint64]struct{} {
	hs := s.Hashes()
	out := make(map[uint64]struct{}, len(hs))
	for _, h := range hs {
		out[h] = struct{}{}
	}
	return out
}

// peekBest discards stale heap entries and returns the live candidate with
// maximum count, leaving the heap's top entry in place.
func (cg *CounterGather) peekBest() (*candidateRecord, bool) {
	for cg.heap.Len() > 0 {
		top := cg.heap[0]
		rec, ok := cg.candidates[top.id]
		if !ok || rec.dead || rec.count != top.count {
			heap.Pop(&cg.heap)
			continue
		}
		return rec, true
	}
	return nil, false
}

// Peek returns the best candidate against currentQuery and its current
// intersection, without mutating any live state, or false if nothing
// clears thresholdBP and the five-shared-hash floor.
func (cg *CounterGather) Peek(currentQuery *sketch.Sketch, thresholdBP uint64) (*candidateRecord, *sketch.Sketch, bool) {
	rec, ok := cg.peekBest()
	if !ok {
		return nil, nil, false
	}
	inter, err := sketch.Intersection(currentQuery, rec.flat)
	if err != nil || inter.Len() < minSharedHashes {
		return nil, nil, false
	}
	if uint64(inter.Len())*cg.scaled < thresholdBP {
		return nil, nil, false
	}
	return rec, inter, true
}

// Consume decrements every live candidate's count by its overlap with
// intersect, dropping entries that reach zero, and folds intersect into
// UnionFound.
func (cg *CounterGather) Consume(intersect *sketch.Sketch) {
	hashes := intersect.Hashes()
	intersectSet := make(map[uint64]struct{}, len(hashes))
	for _, h := range hashes {
		intersectSet[h] = struct{}{}
		cg.unionFound[h] = struct{}{}
	}

	for id, rec := range cg.candidates {
		if rec.dead {
			continue
		}
		overlap := 0
		for h := range intersectSet {
			if _, ok := rec.hashSet[h]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		rec.count -= overlap
		if rec.count <= 0 {
			rec.dead = true
			delete(cg.candidates, id)
			continue
		}
		heap.Push(&cg.heap, heapItem{id: id, count: rec.count, md5: rec.signature.MD5()})
	}
}

// UnionFound returns the union of every intersect folded in so far.
func (cg *CounterGather) UnionFound() []uint64 {
	out := make([]uint64, 0, len(cg.unionFound))
	for h := range cg.unionFound {
		out = append(out, h)
	}
	return out
}

// Empty reports whether every candidate has been exhausted.
func (cg *CounterGather) Empty() bool {
	return len(cg.candidates) == 0
}
