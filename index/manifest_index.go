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
	"github.com/sourmash-bio/sourmash-sub002/manifest"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// RowLoader materializes the signature a manifest row describes. Select
// never calls it; every other Index method calls it only for rows that
// survived selection, the "select before load" discipline a standalone
// manifest file or a zip container both want.
type RowLoader func(r manifest.Row) (*signature.Signature, error)

// ManifestIndex is a manifest-backed Index: Select filters purely against
// manifest.Row fields, deferring Load to whatever rows remain.
type ManifestIndex struct {
	Manifest *manifest.Manifest
	Load     RowLoader
}

// NewManifestIndex pairs a manifest with the loader that can materialize
// any of its rows.
func NewManifestIndex(m *manifest.Manifest, load RowLoader) *ManifestIndex {
	return &ManifestIndex{Manifest: m, Load: load}
}

func (ix *ManifestIndex) loadAll() ([]Located, error) {
	out := make([]Located, 0, len(ix.Manifest.Rows))
	for _, r := range ix.Manifest.Rows {
		sig, err := ix.Load(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Located{Signature: sig, Location: r.InternalLocation})
	}
	return out, nil
}

func (ix *ManifestIndex) Signatures() ([]*signature.Signature, error) {
	located, err := ix.loadAll()
	if err != nil {
		return nil, err
	}
	out := make([]*signature.Signature, len(located))
	for i, l := range located {
		out[i] = l.Signature
	}
	return out, nil
}

func (ix *ManifestIndex) SignaturesWithLocation() ([]Located, error) {
	return ix.loadAll()
}

func (ix *ManifestIndex) Select(p SelectParams) (Index, error) {
	mp := manifest.Predicate{
		Ksize: p.Ksize, Moltype: p.Moltype, Num: p.Num, Scaled: p.Scaled,
		Containment: p.Containment, Abund: p.Abund,
	}
	selected := ix.Manifest.Select(mp)
	if p.Picklist != nil {
		var rows []manifest.Row
		for _, r := range selected.Rows {
			if p.Picklist.MatchesRow(r) {
				rows = append(rows, r)
			}
		}
		selected = &manifest.Manifest{Rows: rows}
	}
	return &ManifestIndex{Manifest: selected, Load: ix.Load}, nil
}

func (ix *ManifestIndex) Find(search Search, query *sketch.Sketch) ([]Result, error) {
	located, err := ix.loadAll()
	if err != nil {
		return nil, err
	}
	return NewLinearIndexFromLocated(located).Find(search, query)
}

func (ix *ManifestIndex) BestContainment(query *sketch.Sketch, thresholdBP uint64) (*Result, error) {
	located, err := ix.loadAll()
	if err != nil {
		return nil, err
	}
	return NewLinearIndexFromLocated(located).BestContainment(query, thresholdBP)
}

func (ix *ManifestIndex) Prefetch(query *sketch.Sketch, thresholdBP uint64) ([]Result, error) {
	located, err := ix.loadAll()
	if err != nil {
		return nil, err
	}
	return NewLinearIndexFromLocated(located).Prefetch(query, thresholdBP)
}
