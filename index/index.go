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

// Package index provides the uniform query surface (signatures, select,
// find, best_containment, prefetch) shared by every concrete
// signature collection: an in-memory list, a zip container, or a
// manifest-backed lazy collection.
package index

import (
	"errors"
	"sort"

	"github.com/sourmash-bio/sourmash-sub002/sketch"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// ErrIncompatibleIndex is returned by Select when the underlying storage
// cannot satisfy the requested restriction (e.g. a fixed-ksize index
// queried at a different ksize).
var ErrIncompatibleIndex = errors.New("index: incompatible index parameters")

// Located pairs a Signature with the location string it was loaded from
// (a path, a zip entry name, or similar).
type Located struct {
	Signature *signature.Signature
	Location  string
}

// SelectParams restricts an Index to the subset of signatures compatible
// with a query. A zero value for any numeric field means "unconstrained".
type SelectParams struct {
	Ksize       int
	Moltype     string
	Num         uint64
	Scaled      uint64
	Containment bool
	Abund       *bool
	Picklist    *Picklist
}

// Result is one match returned by Find/Search/Prefetch: a subject
// signature plus the score the active Search computed for it.
type Result struct {
	Score     float64
	Signature *signature.Signature
	Location  string
}

// Search is the generic predicate the Find machinery scores candidates
// against. Implementations live alongside the call sites that build them
// (exact Jaccard threshold, containment threshold, best-only variants).
type Search interface {
	// Score computes a similarity score from query/subject/union
	// cardinalities: |Q|, |Q∩S|, |S|, |Q∪S|.
	Score(qSize, common, sSize, unionSize int) float64
	// Threshold is the score a candidate must meet or exceed to pass.
	Threshold() float64
	// Passes reports whether a computed score clears Threshold.
	Passes(score float64) bool
	// Collect is called once per passing candidate; searches that only
	// want the single best match (BestOnly set) use it to raise
	// their own Threshold monotonically.
	Collect(score float64, subject *signature.Signature)
	// RequireAbundance reports whether this search needs abundance-
	// tracking sketches (angular similarity) to be meaningful.
	RequireAbundance() bool
}

// Index is the abstract collection every concrete backend implements.
type Index interface {
	// Signatures returns every indexed signature.
	Signatures() ([]*signature.Signature, error)
	// SignaturesWithLocation returns every indexed signature paired with
	// its storage location.
	SignaturesWithLocation() ([]Located, error)
	// Select returns a new Index restricted to signatures meeting every
	// predicate in p, or ErrIncompatibleIndex if the backend cannot
	// satisfy the restriction at all (as opposed to it simply matching
	// zero rows).
	Select(p SelectParams) (Index, error)
	// Find scores every candidate compatible with search's moltype/ksize
	// against query, yielding those that pass.
	Find(search Search, query *sketch.Sketch) ([]Result, error)
	// BestContainment returns the single subject with maximum containment
	// of query meeting the hash-count threshold implied by thresholdBP.
	BestContainment(query *sketch.Sketch, thresholdBP uint64) (*Result, error)
	// Prefetch returns every subject whose containment of query meets the
	// hash-count threshold implied by thresholdBP.
	Prefetch(query *sketch.Sketch, thresholdBP uint64) ([]Result, error)
}

// Search implementation helpers shared by cmd/ and gather/ callers.

// ContainmentSearch passes candidates whose containment of the query
// sketch is at least Threshold. Score is |Q∩S|/|Q|.
type ContainmentSearch struct {
	MinScore  float64
	BestOnly  bool
	best      float64
	Abund     bool
}

func (s *ContainmentSearch) Score(qSize, common, sSize, unionSize int) float64 {
	if qSize == 0 {
		return 0
	}
	return float64(common) / float64(qSize)
}

func (s *ContainmentSearch) Threshold() float64 {
	if s.BestOnly && s.best > s.MinScore {
		return s.best
	}
	return s.MinScore
}

func (s *ContainmentSearch) Passes(score float64) bool { return score >= s.Threshold() }

func (s *ContainmentSearch) Collect(score float64, subj *signature.Signature) {
	if s.BestOnly && score > s.best {
		s.best = score
	}
}

func (s *ContainmentSearch) RequireAbundance() bool { return s.Abund }

// JaccardSearch passes candidates whose Jaccard similarity to the query
// meets Threshold.
type JaccardSearch struct {
	MinScore float64
	BestOnly bool
	best     float64
}

func (s *JaccardSearch) Score(qSize, common, sSize, unionSize int) float64 {
	if unionSize == 0 {
		return 0
	}
	return float64(common) / float64(unionSize)
}

func (s *JaccardSearch) Threshold() float64 {
	if s.BestOnly && s.best > s.MinScore {
		return s.best
	}
	return s.MinScore
}

func (s *JaccardSearch) Passes(score float64) bool { return score >= s.Threshold() }

func (s *JaccardSearch) Collect(score float64, subj *signature.Signature) {
	if s.BestOnly && score > s.best {
		s.best = score
	}
}

func (s *JaccardSearch) RequireAbundance() bool { return false }

// SortResultsDescending sorts results by descending score, breaking ties
// by ascending subject md5 for determinism (matching gather's tie rule).
func SortResultsDescending(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Signature.MD5() < results[j].Signature.MD5()
	})
}
