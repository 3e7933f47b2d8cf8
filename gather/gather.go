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

// Package gather implements the iterative greedy min-set-cover
// decomposition of a mixture query against one or more reference indexes,
// backed by a per-index CounterGather accelerator.
package gather

import (
	"math"
	"sort"

	"github.com/sourmash-bio/sourmash-sub002/index"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// Row is one emitted line of gather output: the winning reference plus the
// statistics computed against both the original and the current residual
// query.
type Row struct {
	Signature *signature.Signature
	Location  string
	Rank      int

	IntersectBP    uint64
	FOrigQuery     float64
	FMatch         float64
	FUniqueToQuery float64

	AverageAbund float64
	MedianAbund  float64
	StdAbund     float64

	RemainingBP uint64

	PotentialFalseNegative bool
	SizeMayBeInaccurate    bool
}

// aniConfidence is the fixed confidence level the spec names for the
// size-may-be-inaccurate check ("untrustworthy at 95% confidence").
const aniConfidence = 0.95

// Gather runs the main loop of §4.7 over query (a mixture sketch) against
// every index in indexes, stopping once no candidate clears thresholdBP or
// the five-shared-hash floor. pfnThreshold is the probability above which
// a row's potential_false_negative flag is raised.
func Gather(query *sketch.Sketch, indexes []index.Index, thresholdBP uint64, pfnThreshold float64) ([]Row, error) {
	if query.Len() == 0 {
		return nil, nil
	}
	if pfnThreshold <= 0 {
		pfnThreshold = defaultPFNThreshold
	}

	originalAbund := query.Abundances() // immutable side reference; never copied as current shrinks
	origLen := query.Len()

	counters := make([]*CounterGather, 0, len(indexes))
	for _, idx := range indexes {
		cg, err := NewCounterGather(idx, query, thresholdBP)
		if err != nil {
			return nil, err
		}
		counters = append(counters, cg)
	}

	current := query.Flatten()
	var rows []Row
	rank := 0

	for current.Len() > 0 {
		var bestRec *candidateRecord
		var bestInter *sketch.Sketch
		bestScore := -1.0

		for _, cg := range counters {
			rec, inter, ok := cg.Peek(current, thresholdBP)
			if !ok {
				continue
			}
			score := float64(inter.Len()) / float64(current.Len())
			better := score > bestScore
			tie := !better && score == bestScore && bestRec != nil && rec.signature.MD5() < bestRec.signature.MD5()
			if bestRec == nil || better || tie {
				bestScore = score
				bestRec = rec
				bestInter = inter
			}
		}
		if bestRec == nil {
			break
		}

		rows = append(rows, buildRow(bestRec, bestInter, current, origLen, originalAbund, rank, pfnThreshold))

		current.RemoveMany(bestInter.Hashes())
		for _, cg := range counters {
			cg.Consume(bestInter)
		}
		rank++
	}

	return rows, nil
}

func buildRow(rec *candidateRecord, inter, current *sketch.Sketch, origLen int, originalAbund map[uint64]uint64, rank int, pfnThreshold float64) Row {
	scaled := inter.Scaled
	if scaled == 0 {
		scaled = 1
	}

	row := Row{
		Signature:   rec.signature,
		Location:    rec.location,
		Rank:        rank,
		IntersectBP: uint64(inter.Len()) * scaled,
	}
	if origLen > 0 {
		row.FOrigQuery = float64(inter.Len()) / float64(origLen)
	}
	if rec.flat.Len() > 0 {
		row.FMatch = float64(inter.Len()) / float64(rec.flat.Len())
	}
	if current.Len() > 0 {
		row.FUniqueToQuery = float64(inter.Len()) / float64(current.Len())
	}

	if originalAbund != nil {
		row.AverageAbund, row.MedianAbund, row.StdAbund = abundStats(inter.Hashes(), originalAbund)
	}

	remaining := current.Len() - inter.Len()
	if remaining < 0 {
		remaining = 0
	}
	row.RemainingBP = uint64(remaining) * scaled

	if inter.Len() > 0 && row.FMatch > 0 {
		ani, err := sketch.ANIFromContainment(row.FMatch, rec.signature.Sketch.K, inter.Len(), aniConfidence)
		if err == nil {
			row.PotentialFalseNegative = ani.PFalseNegative > pfnThreshold
			row.SizeMayBeInaccurate = ani.SizeMayBeInaccurate
		}
	}

	return row
}

// defaultPFNThreshold is the PFalseNegative cutoff above which a row is
// flagged as a potential false negative; callers needing a different
// threshold should compare ANIFromContainment's PFalseNegative directly
// rather than rely on flags.
const defaultPFNThreshold = 1e-3

func abundStats(hashes []uint64, abund map[uint64]uint64) (mean, median, std float64) {
	if len(hashes) == 0 {
		return 0, 0, 0
	}
	vals := make([]float64, len(hashes))
	var sum float64
	for i, h := range hashes {
		v := float64(abund[h])
		vals[i] = v
		sum += v
	}
	mean = sum / float64(len(vals))

	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		median = vals[n/2]
	} else {
		median = (vals[n/2-1] + vals[n/2]) / 2
	}

	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	std = math.Sqrt(sq / float64(n))
	return mean, median, std
}
