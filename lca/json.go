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
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
)

const databaseVersion = "2.1"
const databaseType = "sourmash_lca"

type databaseDoc struct {
	Version       string                `json:"version"`
	Type          string                `json:"type"`
	Ksize         int                   `json:"ksize"`
	Scaled        uint64                `json:"scaled"`
	Moltype       string                `json:"moltype"`
	LidToLineage  map[string][][2]string `json:"lid_to_lineage"`
	HashvalToIdx  map[string][]int      `json:"hashval_to_idx"`
	IdentToIdx    map[string]int        `json:"ident_to_idx"`
	IdxToLid      map[string]int        `json:"idx_to_lid"`
}

// WriteJSON serializes db in the {version, type, ksize, scaled, moltype,
// lid_to_lineage, hashval_to_idx, ident_to_idx, idx_to_lid} layout.
func (db *Database) WriteJSON(w io.Writer, gzipped bool) error {
	doc := databaseDoc{
		Version: databaseVersion,
		Type:    databaseType,
		Ksize:   db.Ksize,
		Scaled:  db.Scaled,
		Moltype: db.Moltype.String(),

		LidToLineage: map[string][][2]string{},
		HashvalToIdx: map[string][]int{},
		IdentToIdx:   map[string]int{},
		IdxToLid:     map[string]int{},
	}
	for lid, lineage := range db.lidToLineage {
		pairs := make([][2]string, len(lineage))
		for i, rn := range lineage {
			pairs[i] = [2]string{rn.Rank, rn.Name}
		}
		doc.LidToLineage[strconv.Itoa(lid)] = pairs
	}
	for h, idxs := range db.hashToIdx {
		list := make([]int, 0, len(idxs))
		for idx := range idxs {
			list = append(list, idx)
		}
		doc.HashvalToIdx[strconv.FormatUint(h, 10)] = list
	}
	for ident, idx := range db.identToIdx {
		doc.IdentToIdx[ident] = idx
	}
	for idx, lid := range db.idxToLid {
		doc.IdxToLid[strconv.Itoa(idx)] = lid
	}

	if gzipped {
		gz := gzip.NewWriter(w)
		if err := json.NewEncoder(gz).Encode(doc); err != nil {
			gz.Close()
			return errors.Wrap(err, "lca: encoding gzipped database")
		}
		return gz.Close()
	}
	return errors.Wrap(json.NewEncoder(w).Encode(doc), "lca: encoding database")
}

// ReadJSON decodes a database document, transparently detecting gzip by
// magic bytes the same way signature.Read does.
func ReadJSON(r io.Reader) (*Database, error) {
	peeked, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "lca: reading database document")
	}
	var reader io.Reader = bytes.NewReader(peeked)
	if len(peeked) >= 2 && peeked[0] == 0x1F && peeked[1] == 0x8B {
		gz, err := gzip.NewReader(bytes.NewReader(peeked))
		if err != nil {
			return nil, errors.Wrap(err, "lca: opening gzip stream")
		}
		defer gz.Close()
		reader = gz
	}

	var doc databaseDoc
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "lca: decoding database document")
	}
	if doc.Type != "" && doc.Type != databaseType {
		return nil, errors.Errorf("lca: unexpected document type %q", doc.Type)
	}

	moltype, ok := hashutil.ParseMoltype(doc.Moltype)
	if !ok {
		return nil, errors.Errorf("lca: unknown moltype %q", doc.Moltype)
	}
	db := NewDatabase(doc.Ksize, doc.Scaled, moltype)

	for lidStr, pairs := range doc.LidToLineage {
		lid, err := strconv.Atoi(lidStr)
		if err != nil {
			return nil, errors.Wrap(err, "lca: parsing lid")
		}
		lineage := make(Lineage, len(pairs))
		for i, p := range pairs {
			lineage[i] = RankName{Rank: p[0], Name: p[1]}
		}
		db.lidToLineage[lid] = lineage
		db.lineageKeyToLid[lineage.key()] = lid
		if lid >= db.nextLid {
			db.nextLid = lid + 1
		}
	}
	for ident, idx := range doc.IdentToIdx {
		db.identToIdx[ident] = idx
		if idx >= db.nextIdx {
			db.nextIdx = idx + 1
		}
	}
	for idxStr, lid := range doc.IdxToLid {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, errors.Wrap(err, "lca: parsing idx")
		}
		db.idxToLid[idx] = lid
	}
	for hStr, idxs := range doc.HashvalToIdx {
		h, err := strconv.ParseUint(hStr, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "lca: parsing hashval")
		}
		set := make(map[int]struct{}, len(idxs))
		for _, idx := range idxs {
			set[idx] = struct{}{}
		}
		db.hashToIdx[h] = set
	}

	return db, nil
}
