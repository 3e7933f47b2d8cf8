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
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/signature"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

const manifestVersion = 6

// manifestDoc is the wire form of a .sbt.json tree descriptor.
type manifestDoc struct {
	Version int                    `json:"version"`
	D       int                    `json:"d"`
	Factory factoryDoc             `json:"factory"`
	Storage storageDoc             `json:"storage"`
	Nodes   map[string]nodeDoc     `json:"nodes"`
	Sigs    map[string]sigDoc      `json:"signatures"`
}

type factoryDoc struct {
	Class string        `json:"class"`
	Args  []interface{} `json:"args"`
}

type storageDoc struct {
	Backend string            `json:"backend"`
	Args    map[string]string `json:"args"`
}

type nodeDoc struct {
	Filename string        `json:"filename"`
	Name     string        `json:"name"`
	Metadata nodeMetaDoc   `json:"metadata"`
}

type nodeMetaDoc struct {
	MinNBelow int `json:"min_n_below"`
}

type sigDoc struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	MD5      string `json:"md5"`
}

// Save writes the tree's structural manifest as `.sbt.json` plus one
// payload file per node/leaf through t.storage: Bloom filter bytes for
// internal nodes, signature JSON for leaves.
func (t *Tree) Save() ([]byte, error) {
	if t.storage == nil {
		return nil, errors.New("sbt: tree has no storage backend to save into")
	}
	doc := manifestDoc{
		Version: manifestVersion,
		D:       t.D,
		Factory: factoryDoc{
			Class: "GraphFactory",
			Args:  []interface{}{t.Factory.Ksize, t.Factory.BFSizeBits, t.Factory.NTables},
		},
		Storage: storageDoc{Backend: "FSStorage", Args: map[string]string{}},
		Nodes:   map[string]nodeDoc{},
		Sigs:    map[string]sigDoc{},
	}

	for pos, n := range t.nodes {
		path := fmt.Sprintf("internal.%d.bf", pos)
		if n.filter != nil {
			if err := t.storage.Save(path, n.filter.bits); err != nil {
				return nil, errors.Wrapf(err, "sbt: saving node %d", pos)
			}
		}
		doc.Nodes[fmt.Sprintf("%d", pos)] = nodeDoc{
			Filename: path,
			Name:     fmt.Sprintf("internal.%d", pos),
			Metadata: nodeMetaDoc{MinNBelow: n.minNBelow},
		}
	}

	for pos, lf := range t.leaves {
		md5 := lf.sig.MD5()
		path := fmt.Sprintf("signatures/%s.sig.json", md5)
		data, err := json.Marshal(leafDocFromSig(lf.sig))
		if err != nil {
			return nil, errors.Wrapf(err, "sbt: encoding leaf %d", pos)
		}
		if err := t.storage.Save(path, data); err != nil {
			return nil, errors.Wrapf(err, "sbt: saving leaf %d", pos)
		}
		doc.Sigs[fmt.Sprintf("%d", pos)] = sigDoc{Filename: path, Name: lf.sig.Name, MD5: md5}
	}

	return json.Marshal(doc)
}

// leafSigDoc is the minimal self-describing leaf payload: enough to
// rebuild a Signature without depending on the signature package's full
// multi-sketch JSON array format, since an SBT leaf is always exactly
// one sketch.
type leafSigDoc struct {
	Name     string   `json:"name"`
	Filename string   `json:"filename"`
	Ksize    int      `json:"ksize"`
	Moltype  string   `json:"moltype"`
	Seed     uint32   `json:"seed"`
	Num      uint64   `json:"num"`
	Scaled   uint64   `json:"scaled"`
	Mins     []uint64 `json:"mins"`
}

func leafDocFromSig(sig *signature.Signature) leafSigDoc {
	sk := sig.Sketch
	return leafSigDoc{
		Name: sig.Name, Filename: sig.Filename,
		Ksize: sk.K, Moltype: sk.Moltype.String(), Seed: sk.Seed,
		Num: sk.Num, Scaled: sk.Scaled, Mins: sk.Hashes(),
	}
}

// Load rebuilds a Tree's structure and leaves from a previously-Saved
// manifest document and its storage backend. Internal node Bloom filters
// are left unloaded (loaded lazily through the NodeCache on first Find).
func Load(manifest []byte, storage Storage, cacheCapacity int) (*Tree, error) {
	var doc manifestDoc
	if err := json.Unmarshal(manifest, &doc); err != nil {
		return nil, errors.Wrap(err, "sbt: decoding manifest")
	}

	t := &Tree{
		D:       doc.D,
		nodes:   make(map[int]*node),
		leaves:  make(map[int]*leaf),
		storage: storage,
		cache:   NewNodeCache(cacheCapacity),
	}
	if len(doc.Factory.Args) == 3 {
		if k, ok := doc.Factory.Args[0].(float64); ok {
			t.Factory.Ksize = int(k)
			t.Ksize = int(k)
		}
		if sz, ok := doc.Factory.Args[1].(float64); ok {
			t.Factory.BFSizeBits = uint64(sz)
		}
		if nt, ok := doc.Factory.Args[2].(float64); ok {
			t.Factory.NTables = int(nt)
		}
	}

	for posStr, nd := range doc.Nodes {
		pos := 0
		fmt.Sscanf(posStr, "%d", &pos)
		t.nodes[pos] = &node{minNBelow: nd.Metadata.MinNBelow, loaded: false}
		_ = nd.Filename // resolved lazily by loadNode via storage
	}

	for posStr, sd := range doc.Sigs {
		pos := 0
		fmt.Sscanf(posStr, "%d", &pos)
		raw, err := storage.Load(sd.Filename)
		if err != nil {
			return nil, errors.Wrapf(err, "sbt: loading leaf at %s", sd.Filename)
		}
		var ld leafSigDoc
		if err := json.Unmarshal(raw, &ld); err != nil {
			return nil, errors.Wrapf(err, "sbt: decoding leaf at %s", sd.Filename)
		}
		moltype, ok := hashutil.ParseMoltype(ld.Moltype)
		if !ok {
			return nil, fmt.Errorf("sbt: leaf %s has unknown moltype %q", sd.Filename, ld.Moltype)
		}
		sk, err := rebuildSketch(ld, moltype)
		if err != nil {
			return nil, err
		}
		t.leaves[pos] = &leaf{sig: signature.New(sk, ld.Name, ld.Filename)}
	}

	return t, nil
}

func rebuildSketch(ld leafSigDoc, moltype hashutil.Moltype) (*sketch.Sketch, error) {
	sk, err := sketch.New(ld.Ksize, moltype, ld.Seed, ld.Num, ld.Scaled, false)
	if err != nil {
		return nil, errors.Wrap(err, "sbt: rebuilding leaf sketch")
	}
	sk.AddHashes(ld.Mins)
	return sk, nil
}
