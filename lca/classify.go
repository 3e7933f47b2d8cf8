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

package lca

import (
	"sort"

	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// Status is the verdict Classify reaches for a query.
type Status string

// The three classification outcomes Classify reports.
const (
	StatusFound    Status = "found"
	StatusDisagree Status = "disagree"
	StatusNoMatch  Status = "nomatch"
)

// Classification is the aggregate verdict across every hash of a query.
type Classification struct {
	Status   Status
	Lineage  Lineage
	NHashes  int // total hashes considered
	Votes    int // hash count supporting the returned lineage
}

// perHashLCA computes, for one query hash, the deepest trie node shared
// by every lineage that hash maps to, returning nil if the hash is
// entirely absent from the database.
func (db *Database) perHashLCA(h uint64) (Lineage, bool) {
	lineages := db.LineagesForHash(h)
	if len(lineages) == 0 {
		return nil, false
	}
	root := newTrieNode("")
	for _, l := range lineages {
		root.insert(l)
	}
	depth, found := root.lca()
	_ = found
	return lineageAtDepth(lineages, depth), true
}

// Classify aggregates the per-hash LCA of every hash in query (downsampled
// to db.Scaled first) into a single verdict, following the original
// command_classify.py's two modes:
//
//   - majority mode: take only the single most-voted lineage, and accept
//     it (status "found") if its raw hash count clears threshold; if it
//     doesn't, the verdict is "nomatch" rather than falling back.
//   - default mode: take every lineage with at least threshold votes and
//     compute their LCA, reporting "found" if they agree on a leaf or
//     "disagree" (lineage truncated to the shared prefix) if they don't.
func (db *Database) Classify(query *sketch.Sketch, majority bool, threshold int) (Classification, error) {
	q := query
	if db.Scaled > 0 && query.Scaled > 0 && query.Scaled != db.Scaled {
		var err error
		q, err = query.Downsample(0, db.Scaled)
		if err != nil {
			return Classification{}, err
		}
	}

	counts := map[string]int{}
	byKey := map[string]Lineage{}
	voting := 0
	for _, h := range q.Hashes() {
		l, ok := db.perHashLCA(h)
		if !ok {
			continue
		}
		voting++
		key := l.key()
		counts[key]++
		byKey[key] = l
	}

	if voting == 0 {
		return Classification{Status: StatusNoMatch, NHashes: q.Len()}, nil
	}

	var agg []Lineage
	totalVotes := 0
	if majority {
		bestKey, bestCount := "", 0
		for k, c := range counts {
			if c > bestCount {
				bestKey, bestCount = k, c
			}
		}
		if bestCount > threshold {
			agg = []Lineage{byKey[bestKey]}
			totalVotes = bestCount
		}
	} else {
		for k, c := range counts {
			if c >= threshold {
				agg = append(agg, byKey[k])
				totalVotes += c
			}
		}
	}
	if len(agg) == 0 {
		return Classification{Status: StatusNoMatch, NHashes: q.Len()}, nil
	}

	root := newTrieNode("")
	for _, l := range agg {
		root.insert(l)
	}
	depth, found := root.lca()
	status := StatusDisagree
	if found {
		status = StatusFound
	}
	return Classification{
		Status:  status,
		Lineage: lineageAtDepth(agg, depth),
		NHashes: q.Len(),
		Votes:   totalVotes,
	}, nil
}

// SummaryRow is one entry of a full-detail summarization: the count of
// hashes voting for lineage at every observed prefix depth, instead of
// collapsing to a single verdict.
type SummaryRow struct {
	Lineage Lineage
	Count   int
}

// Summarize reports vote counts at every lineage prefix reached by at
// least minVotes hashes, sorted by descending count then lineage depth.
func (db *Database) Summarize(query *sketch.Sketch, minVotes int) ([]SummaryRow, error) {
	q := query
	if db.Scaled > 0 && query.Scaled > 0 && query.Scaled != db.Scaled {
		var err error
		q, err = query.Downsample(0, db.Scaled)
		if err != nil {
			return nil, err
		}
	}

	prefixCounts := map[string]int{}
	prefixLineage := map[string]Lineage{}
	for _, h := range q.Hashes() {
		l, ok := db.perHashLCA(h)
		if !ok {
			continue
		}
		for depth := 1; depth <= len(l); depth++ {
			prefix := l[:depth]
			key := prefix.key()
			prefixCounts[key]++
			prefixLineage[key] = prefix
		}
	}

	var rows []SummaryRow
	for key, c := range prefixCounts {
		if c < minVotes {
			continue
		}
		rows = append(rows, SummaryRow{Lineage: prefixLineage[key], Count: c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return len(rows[i].Lineage) > len(rows[j].Lineage)
	})
	return rows, nil
}
