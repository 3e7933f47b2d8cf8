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

package sbt

import (
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// ContainmentSearch prunes subtrees whose Bloom-filter match count cannot
// possibly clear threshold, and scores leaves by exact containment of
// query in the leaf's sketch.
type ContainmentSearch struct {
	MinScore float64
	best     float64
	BestOnly bool
}

func (s *ContainmentSearch) Threshold() float64 {
	if s.BestOnly && s.best > s.MinScore {
		return s.best
	}
	return s.MinScore
}

// UpperBound treats every query hash found in the subtree's Bloom filter
// as a possible true positive: the best containment any leaf below could
// achieve is matchesInFilter/queryLen, an admissible overestimate (it can
// only shrink as you descend) since Bloom filters only produce false
// positives, never false negatives.
func (s *ContainmentSearch) UpperBound(queryLen, matchesInFilter, minNBelow int) float64 {
	if queryLen == 0 {
		return 0
	}
	return float64(matchesInFilter) / float64(queryLen)
}

func (s *ContainmentSearch) ExactScore(query []uint64, sig *signature.Signature) float64 {
	if len(query) == 0 {
		return 0
	}
	present := 0
	set := make(map[uint64]struct{}, sig.Sketch.Len())
	for _, h := range sig.Sketch.Hashes() {
		set[h] = struct{}{}
	}
	for _, h := range query {
		if _, ok := set[h]; ok {
			present++
		}
	}
	score := float64(present) / float64(len(query))
	if s.BestOnly && score > s.best {
		s.best = score
	}
	return score
}

// JaccardSearch prunes and scores by Jaccard similarity. Its upper bound
// is looser than containment's, since the union term can only shrink the
// score as more of the subtree's hashes are ruled in.
type JaccardSearch struct {
	MinScore float64
	best     float64
	BestOnly bool
}

func (s *JaccardSearch) Threshold() float64 {
	if s.BestOnly && s.best > s.MinScore {
		return s.best
	}
	return s.MinScore
}

func (s *JaccardSearch) UpperBound(queryLen, matchesInFilter, minNBelow int) float64 {
	if queryLen == 0 || minNBelow == 0 {
		return 0
	}
	common := matchesInFilter
	if common > minNBelow {
		common = minNBelow
	}
	union := queryLen + minNBelow - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

func (s *JaccardSearch) ExactScore(query []uint64, sig *signature.Signature) float64 {
	set := make(map[uint64]struct{}, sig.Sketch.Len())
	for _, h := range sig.Sketch.Hashes() {
		set[h] = struct{}{}
	}
	common := 0
	for _, h := range query {
		if _, ok := set[h]; ok {
			common++
		}
	}
	union := len(query) + sig.Sketch.Len() - common
	score := 0.0
	if union > 0 {
		score = float64(common) / float64(union)
	}
	if s.BestOnly && score > s.best {
		s.best = score
	}
	return score
}

// queryHashesAt downsamples query to the tree's fixed scaled resolution
// before a Find call, the precondition §4.5's compatibility rule states.
func queryHashesAt(query *sketch.Sketch, treeScaled uint64) ([]uint64, error) {
	if treeScaled == 0 || query.Scaled == 0 {
		return query.Hashes(), nil
	}
	if query.Scaled == treeScaled {
		return query.Hashes(), nil
	}
	if query.Scaled > treeScaled {
		return nil, ErrIncompatibleIndex
	}
	down, err := query.Downsample(0, treeScaled)
	if err != nil {
		return nil, err
	}
	return down.Hashes(), nil
}
