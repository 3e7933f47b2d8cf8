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

// Package compare computes the full pairwise similarity matrix over a
// collection of signatures, the one explicit concurrency seam the core is
// allowed: each worker goroutine owns a disjoint output row, so the only
// synchronization needed is the closing WaitGroup barrier.
package compare

import (
	"runtime"
	"sync"

	"github.com/smallnest/ringbuffer"

	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// Metric scores one pair of sketches; Jaccard, Containment, and
// MaxContainment from the sketch package all satisfy this shape.
type Metric func(a, b *sketch.Sketch) (float64, error)

// Matrix is a dense similarity matrix aligned to Signatures by index.
type Matrix struct {
	Signatures []*signature.Signature
	Values     [][]float64
}

// AllPairs computes the full n×n similarity matrix of sigs under metric.
// Work is dispatched one row per goroutine, bounded to threads concurrent
// workers via a ringbuffer-backed token bucket (faster than an unbuffered
// channel for this many short-lived acquire/release cycles, the same
// tradeoff the teacher's per-index search fan-out makes). Each goroutine
// writes only its own row, so no per-cell locking is required; metric is
// evaluated twice per unordered pair (once from each row) to keep every
// worker's writes confined to a disjoint row instead of splitting the
// upper triangle across workers, which would scatter writes across rows.
func AllPairs(sigs []*signature.Signature, metric Metric, threads int) (*Matrix, error) {
	n := len(sigs)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1.0
	}
	if n < 2 {
		return &Matrix{Signatures: sigs, Values: values}, nil
	}
	if threads <= 0 {
		threads = n
	}

	var wg sync.WaitGroup
	tokens := ringbuffer.New(threads)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		// The ring buffer is non-blocking: WriteByte fails while all
		// threads tokens are held, so wait for a worker to release one.
		for tokens.WriteByte(0) != nil {
			runtime.Gosched()
		}
		go func(i int) {
			defer wg.Done()
			defer tokens.ReadByte()
			row := values[i]
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				score, err := metric(sigs[i].Sketch, sigs[j].Sketch)
				if err != nil {
					errs[i] = err
					return
				}
				row[j] = score
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &Matrix{Signatures: sigs, Values: values}, nil
}
