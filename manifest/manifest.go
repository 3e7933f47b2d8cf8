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

// Package manifest implements the tabular pre-load index of a signature
// collection: one row per sketch, cheap enough to scan in full before
// deciding which signature files are worth opening.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Header is the exact column order every manifest CSV carries.
var Header = []string{
	"internal_location", "md5", "md5short", "ksize", "moltype",
	"num", "scaled", "n_hashes", "with_abundance", "name", "filename",
}

// Row is one signature's worth of manifest metadata.
type Row struct {
	InternalLocation string
	MD5              string
	MD5Short         string
	Ksize            int
	Moltype          string
	Num              uint64
	Scaled           uint64
	NHashes          int
	WithAbundance    bool
	Name             string
	Filename         string
}

// Manifest is an ordered sequence of Rows.
type Manifest struct {
	Rows []Row
}

// New builds a Manifest from explicit rows, preserving their order.
func New(rows []Row) *Manifest {
	return &Manifest{Rows: rows}
}

// Predicate filters rows by a subset of its columns; a zero-value field
// (empty string, or 0) means "don't filter on this column". Picklist is
// left to the index package, which layers picklist membership on top.
type Predicate struct {
	Ksize       int
	Moltype     string
	Num         uint64
	Scaled      uint64
	Containment bool // when true and Scaled>0, rows with finer (smaller, nonzero) Scaled than requested still pass
	Abund       *bool
}

// Select returns the sub-manifest of rows matching every set predicate
// field, preserving row order.
func (m *Manifest) Select(p Predicate) *Manifest {
	var out []Row
	for _, r := range m.Rows {
		if p.Ksize != 0 && r.Ksize != p.Ksize {
			continue
		}
		if p.Moltype != "" && r.Moltype != p.Moltype {
			continue
		}
		if p.Num != 0 && r.Num != p.Num {
			continue
		}
		if p.Scaled != 0 {
			if p.Containment {
				if r.Scaled == 0 || r.Scaled > p.Scaled {
					continue
				}
			} else if r.Scaled != p.Scaled {
				continue
			}
		}
		if p.Abund != nil && r.WithAbundance != *p.Abund {
			continue
		}
		out = append(out, r)
	}
	return &Manifest{Rows: out}
}

// Write emits the manifest in the `#`-prefixed, versioned CSV form every
// sourmash-compatible zip container and standalone manifest file uses.
func Write(w io.Writer, m *Manifest) error {
	if _, err := fmt.Fprintln(w, "# SOURMASH-MANIFEST-VERSION: 1.0"); err != nil {
		return errors.Wrap(err, "manifest: writing comment header")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "manifest: writing header row")
	}
	for _, r := range m.Rows {
		abund := "0"
		if r.WithAbundance {
			abund = "1"
		}
		rec := []string{
			r.InternalLocation, r.MD5, r.MD5Short,
			strconv.Itoa(r.Ksize), r.Moltype,
			strconv.FormatUint(r.Num, 10), strconv.FormatUint(r.Scaled, 10),
			strconv.Itoa(r.NHashes), abund, r.Name, r.Filename,
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "manifest: writing row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read parses a manifest CSV, tolerating (and discarding) a leading
// `#`-prefixed comment line that names the manifest format version.
func Read(r io.Reader) (*Manifest, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "manifest: reading CSV")
	}
	if len(records) == 0 {
		return &Manifest{}, nil
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(Header) {
			return nil, fmt.Errorf("manifest: row has %d fields, want %d", len(rec), len(Header))
		}
		ksize, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, errors.Wrap(err, "manifest: parsing ksize")
		}
		num, err := strconv.ParseUint(rec[5], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "manifest: parsing num")
		}
		scaled, err := strconv.ParseUint(rec[6], 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "manifest: parsing scaled")
		}
		nHashes, err := strconv.Atoi(rec[7])
		if err != nil {
			return nil, errors.Wrap(err, "manifest: parsing n_hashes")
		}
		rows = append(rows, Row{
			InternalLocation: rec[0],
			MD5:              rec[1],
			MD5Short:         rec[2],
			Ksize:            ksize,
			Moltype:          rec[4],
			Num:              num,
			Scaled:           scaled,
			NHashes:          nHashes,
			WithAbundance:    rec[8] == "1",
			Name:             rec[9],
			Filename:         rec[10],
		})
	}
	return &Manifest{Rows: rows}, nil
}
