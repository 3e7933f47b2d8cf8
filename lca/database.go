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
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// Database is the inverted taxonomic index: parameters fixed at
// construction, plus the four maps the spec's data model names.
type Database struct {
	Ksize   int
	Scaled  uint64
	Moltype hashutil.Moltype

	identToIdx   map[string]int
	idxToLid     map[int]int
	lidToLineage map[int]Lineage
	hashToIdx    map[uint64]map[int]struct{}

	nextIdx int
	nextLid int
	lineageKeyToLid map[string]int
}

// NewDatabase creates an empty database fixed to the given parameters;
// every signature later added is required to match them after
// downsampling to Scaled.
func NewDatabase(ksize int, scaled uint64, moltype hashutil.Moltype) *Database {
	return &Database{
		Ksize: ksize, Scaled: scaled, Moltype: moltype,
		identToIdx:      map[string]int{},
		idxToLid:        map[int]int{},
		lidToLineage:    map[int]Lineage{},
		hashToIdx:       map[uint64]map[int]struct{}{},
		lineageKeyToLid: map[string]int{},
	}
}

// taxonRow is the shape breader parses one taxonomy CSV line into.
type taxonRow struct {
	ident   string
	lineage Lineage
}

// LoadTaxonomy parses a lineage taxonomy CSV: a header beginning with
// `identifiers` (or `accession`) followed by the fixed Ranks columns, and
// returns ident -> Lineage.
func LoadTaxonomy(path string) (map[string]Lineage, error) {
	parseFunc := func(line string) (interface{}, bool, error) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, false, nil
		}
		if strings.HasPrefix(line, "identifiers") || strings.HasPrefix(line, "accession") {
			return nil, false, nil
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return nil, false, nil
		}
		ident := fields[0]
		names := fields[1:]
		return taxonRow{ident: ident, lineage: NewLineage(names)}, true, nil
	}

	reader, err := breader.NewBufferedReader(path, 4, 100, parseFunc)
	if err != nil {
		return nil, errors.Wrap(err, "lca: opening taxonomy file")
	}

	out := map[string]Lineage{}
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrap(chunk.Err, "lca: parsing taxonomy file")
		}
		for _, data := range chunk.Data {
			row := data.(taxonRow)
			out[row.ident] = row.lineage
		}
	}
	return out, nil
}

// Insert downsamples sig to the database's Scaled and records its hashes
// under a freshly (or previously) assigned idx/lid. Duplicate md5s are
// skipped, matching the spec's "duplicate md5s are skipped with a
// warning" rule; the warning itself is left to the caller (cmd/ logs it).
func (db *Database) Insert(sig *signature.Signature, ident string, lineage Lineage) (skipped bool, err error) {
	sk := sig.Sketch
	if sk.K != db.Ksize || sk.Moltype != db.Moltype {
		return false, errors.New("lca: signature does not match database ksize/moltype")
	}
	downsampled := sk
	if db.Scaled > 0 && sk.Scaled > 0 && sk.Scaled != db.Scaled {
		downsampled, err = sk.Downsample(0, db.Scaled)
		if err != nil {
			return false, errors.Wrap(err, "lca: downsampling signature to database scaled")
		}
	}

	md5 := sig.MD5()
	if _, exists := db.identToIdx[md5]; exists {
		return true, nil
	}

	idx := db.nextIdx
	db.nextIdx++
	db.identToIdx[md5] = idx

	lid, ok := db.lineageKeyToLid[lineage.key()]
	if !ok {
		lid = db.nextLid
		db.nextLid++
		db.lineageKeyToLid[lineage.key()] = lid
		db.lidToLineage[lid] = lineage
	}
	db.idxToLid[idx] = lid

	for _, h := range downsampled.Hashes() {
		set, ok := db.hashToIdx[h]
		if !ok {
			set = map[int]struct{}{}
			db.hashToIdx[h] = set
		}
		set[idx] = struct{}{}
	}
	return false, nil
}

// LineagesForHash returns every distinct lineage assigned to any
// signature containing hash.
func (db *Database) LineagesForHash(h uint64) []Lineage {
	idxs, ok := db.hashToIdx[h]
	if !ok {
		return nil
	}
	seen := map[int]struct{}{}
	var out []Lineage
	for idx := range idxs {
		lid := db.idxToLid[idx]
		if _, dup := seen[lid]; dup {
			continue
		}
		seen[lid] = struct{}{}
		out = append(out, db.lidToLineage[lid])
	}
	return out
}

// String implements a debug-friendly summary, used by cmd/ `lca index` to
// report what it built.
func (db *Database) String() string {
	return fmt.Sprintf("lca.Database{ksize=%d scaled=%d moltype=%s signatures=%d lineages=%d}",
		db.Ksize, db.Scaled, db.Moltype, len(db.identToIdx), len(db.lidToLineage))
}
