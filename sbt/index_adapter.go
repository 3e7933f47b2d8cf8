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
	"github.com/sourmash-bio/sourmash-sub002/index"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// AsIndex adapts a Tree to the generic index.Index interface, so it can
// be used anywhere a LinearIndex or ManifestIndex could be, including inside
// gather's multi-index CounterGather fan-out.
type AsIndex struct{ Tree *Tree }

func (a AsIndex) Signatures() ([]*signature.Signature, error) {
	return a.Tree.Leaves(), nil
}

func (a AsIndex) SignaturesWithLocation() ([]index.Located, error) {
	sigs := a.Tree.Leaves()
	out := make([]index.Located, len(sigs))
	for i, s := range sigs {
		out[i] = index.Located{Signature: s, Location: "sbt"}
	}
	return out, nil
}

func (a AsIndex) Select(p index.SelectParams) (index.Index, error) {
	if p.Ksize != 0 && p.Ksize != a.Tree.Ksize {
		return nil, index.ErrIncompatibleIndex
	}
	if p.Moltype != "" && p.Moltype != a.Tree.Moltype {
		return nil, index.ErrIncompatibleIndex
	}
	if p.Scaled != 0 {
		if !p.Containment && p.Scaled != a.Tree.Scaled {
			return nil, index.ErrIncompatibleIndex
		}
		if p.Containment && p.Scaled < a.Tree.Scaled {
			return nil, index.ErrIncompatibleIndex
		}
	}
	return a, nil
}

func (a AsIndex) Find(search index.Search, query *sketch.Sketch) ([]index.Result, error) {
	hashes, err := queryHashesAt(query, a.Tree.Scaled)
	if err != nil {
		return nil, err
	}
	treeSearch := &containmentAdapter{inner: search, qLen: len(hashes)}
	sigs, err := a.Tree.Find(treeSearch, hashes)
	if err != nil {
		return nil, err
	}
	out := make([]index.Result, len(sigs))
	for i, s := range sigs {
		out[i] = index.Result{Signature: s, Score: treeSearch.lastScore(s)}
	}
	return out, nil
}

func (a AsIndex) BestContainment(query *sketch.Sketch, thresholdBP uint64) (*index.Result, error) {
	results, err := a.Prefetch(query, thresholdBP)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	index.SortResultsDescending(results)
	return &results[0], nil
}

func (a AsIndex) Prefetch(query *sketch.Sketch, thresholdBP uint64) ([]index.Result, error) {
	hashes, err := queryHashesAt(query, a.Tree.Scaled)
	if err != nil {
		return nil, err
	}
	scaled := a.Tree.Scaled
	if scaled == 0 {
		scaled = 1
	}
	minCommon := int(thresholdBP / scaled)
	search := &ContainmentSearch{MinScore: 0}
	if len(hashes) > 0 {
		search.MinScore = float64(minCommon) / float64(len(hashes))
	}
	sigs, err := a.Tree.Find(search, hashes)
	if err != nil {
		return nil, err
	}
	out := make([]index.Result, len(sigs))
	for i, s := range sigs {
		out[i] = index.Result{Signature: s, Score: search.ExactScore(hashes, s)}
	}
	return out, nil
}

// containmentAdapter bridges index.Search's 4-cardinality scoring
// contract onto SearchFn's bound/exact-score split, tracking each
// signature's last computed score so AsIndex.Find can report it.
type containmentAdapter struct {
	inner index.Search
	qLen  int
	last  map[string]float64
}

func (c *containmentAdapter) Threshold() float64 { return c.inner.Threshold() }

func (c *containmentAdapter) UpperBound(queryLen, matchesInFilter, minNBelow int) float64 {
	if queryLen == 0 {
		return 0
	}
	return float64(matchesInFilter) / float64(queryLen)
}

func (c *containmentAdapter) ExactScore(query []uint64, sig *signature.Signature) float64 {
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
	union := c.qLen + sig.Sketch.Len() - common
	score := c.inner.Score(c.qLen, common, sig.Sketch.Len(), union)
	if c.last == nil {
		c.last = make(map[string]float64)
	}
	c.last[sig.MD5()] = score
	c.inner.Collect(score, sig)
	return score
}

func (c *containmentAdapter) lastScore(sig *signature.Signature) float64 {
	if c.last == nil {
		return 0
	}
	return c.last[sig.MD5()]
}
