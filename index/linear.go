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

package index

import (
	"github.com/sourmash-bio/sourmash-sub002/sketch"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// LinearIndex is the simplest Index: an in-memory slice of signatures,
// scanned in full on every query. It is the reference against which the
// pruning behavior of the SBT is tested.
type LinearIndex struct {
	entries []Located
}

// NewLinearIndex builds a LinearIndex over sigs, all loaded from location.
func NewLinearIndex(sigs []*signature.Signature, location string) *LinearIndex {
	entries := make([]Located, len(sigs))
	for i, s := range sigs {
		entries[i] = Located{Signature: s, Location: location}
	}
	return &LinearIndex{entries: entries}
}

// NewLinearIndexFromLocated builds a LinearIndex preserving per-entry
// locations, as produced by a zip or manifest backend's full load.
func NewLinearIndexFromLocated(entries []Located) *LinearIndex {
	return &LinearIndex{entries: entries}
}

func (ix *LinearIndex) Signatures() ([]*signature.Signature, error) {
	out := make([]*signature.Signature, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.Signature
	}
	return out, nil
}

func (ix *LinearIndex) SignaturesWithLocation() ([]Located, error) {
	out := make([]Located, len(ix.entries))
	copy(out, ix.entries)
	return out, nil
}

func (ix *LinearIndex) Select(p SelectParams) (Index, error) {
	var out []Located
	for _, e := range ix.entries {
		if !matchesSelect(e.Signature, p) {
			continue
		}
		out = append(out, e)
	}
	return &LinearIndex{entries: out}, nil
}

func matchesSelect(sig *signature.Signature, p SelectParams) bool {
	sk := sig.Sketch
	if p.Ksize != 0 && sk.K != p.Ksize {
		return false
	}
	if p.Moltype != "" && sk.Moltype.String() != p.Moltype {
		return false
	}
	if p.Num != 0 && sk.Num != p.Num {
		return false
	}
	if p.Scaled != 0 {
		if sk.Scaled == 0 {
			return false
		}
		if p.Containment {
			if sk.Scaled > p.Scaled {
				return false
			}
		} else if sk.Scaled != p.Scaled {
			return false
		}
	}
	if p.Abund != nil && sk.TrackAbundance != *p.Abund {
		return false
	}
	if p.Picklist != nil && !p.Picklist.Matches(sig) {
		return false
	}
	return true
}

func (ix *LinearIndex) Find(search Search, query *sketch.Sketch) ([]Result, error) {
	var out []Result
	for _, e := range ix.entries {
		subj := e.Signature.Sketch
		if search.RequireAbundance() && (!query.TrackAbundance || !subj.TrackAbundance) {
			continue
		}
		qFlat, sFlat, err := alignResolution(query, subj)
		if err != nil {
			continue
		}
		score, ok := scoreAgainst(search, qFlat, sFlat)
		if !ok {
			continue
		}
		if search.Passes(score) {
			search.Collect(score, e.Signature)
			out = append(out, Result{Score: score, Signature: e.Signature, Location: e.Location})
		}
	}
	return out, nil
}

// alignResolution downsamples the finer of query/subject to the coarser
// sketch's resolution, the precondition every Find call makes before
// scoring, per the contract that similarity is only defined at a common
// resolution.
func alignResolution(query, subj *sketch.Sketch) (*sketch.Sketch, *sketch.Sketch, error) {
	q, s := query.Flatten(), subj.Flatten()
	if q.Scaled > 0 && s.Scaled > 0 {
		scaled := q.Scaled
		if s.Scaled > scaled {
			scaled = s.Scaled
		}
		var err error
		if q.Scaled != scaled {
			q, err = q.Downsample(0, scaled)
			if err != nil {
				return nil, nil, err
			}
		}
		if s.Scaled != scaled {
			s, err = s.Downsample(0, scaled)
			if err != nil {
				return nil, nil, err
			}
		}
	}
	return q, s, nil
}

func scoreAgainst(search Search, q, s *sketch.Sketch) (float64, bool) {
	common, err := sketch.Intersection(q, s)
	if err != nil {
		return 0, false
	}
	union := q.Len() + s.Len() - common.Len()
	return search.Score(q.Len(), common.Len(), s.Len(), union), true
}

func (ix *LinearIndex) BestContainment(query *sketch.Sketch, thresholdBP uint64) (*Result, error) {
	results, err := ix.Prefetch(query, thresholdBP)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	SortResultsDescending(results)
	return &results[0], nil
}

func (ix *LinearIndex) Prefetch(query *sketch.Sketch, thresholdBP uint64) ([]Result, error) {
	var out []Result
	for _, e := range ix.entries {
		subj := e.Signature.Sketch
		q, s, err := alignResolution(query, subj)
		if err != nil {
			continue
		}
		common, err := sketch.Intersection(q, s)
		if err != nil {
			continue
		}
		scaled := q.Scaled
		if scaled == 0 {
			scaled = 1
		}
		hashThreshold := thresholdBP / scaled
		if uint64(common.Len()) < hashThreshold {
			continue
		}
		score := 0.0
		if q.Len() > 0 {
			score = float64(common.Len()) / float64(q.Len())
		}
		out = append(out, Result{Score: score, Signature: e.Signature, Location: e.Location})
	}
	return out, nil
}
