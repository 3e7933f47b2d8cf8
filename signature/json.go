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

package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/hashutil"
	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

// hashFunction is the only hash-function identifier this package will
// read or write; readers must reject anything else.
const hashFunction = "0.murmur64"

const signatureClass = "sourmash_signature"

// ErrWrongHashFunction is returned when a signature record names a hash
// function other than the one this implementation understands.
var ErrWrongHashFunction = errors.New("signature: unsupported hash_function")

// ErrMD5Mismatch is returned by Read when a sketch's recomputed md5sum
// does not match the stored one and ignoreMD5 was not requested.
var ErrMD5Mismatch = errors.New("signature: md5sum mismatch")

// sketchDoc is the wire form of one sketch inside a signature record.
type sketchDoc struct {
	Ksize       int      `json:"ksize"`
	Num         uint64   `json:"num"`
	MaxHash     uint64   `json:"max_hash"`
	Seed        uint32   `json:"seed"`
	Molecule    string   `json:"molecule"`
	Mins        []uint64 `json:"mins"`
	Abundances  []uint64 `json:"abundances,omitempty"`
	MD5Sum      string   `json:"md5sum"`
}

// recordDoc is the wire form of one top-level array entry: one-or-more
// sketches sharing a (name, filename) pair.
type recordDoc struct {
	Class        string      `json:"class"`
	Email        string      `json:"email,omitempty"`
	HashFunction string      `json:"hash_function"`
	Filename     string      `json:"filename,omitempty"`
	Name         string      `json:"name,omitempty"`
	Version      float64     `json:"version"`
	Sketches     []sketchDoc `json:"signatures"`
}

// ReadOptions controls Read's tolerance for non-conforming input.
type ReadOptions struct {
	// IgnoreMD5 skips the round-trip md5 verification that Read performs
	// by default on every decoded sketch.
	IgnoreMD5 bool
}

// Read decodes a signature JSON document (optionally gzip-compressed,
// detected by the 1F 8B magic bytes) into zero or more Signatures. Every
// sketchDoc becomes its own Signature sharing its record's name/filename.
func Read(r io.Reader, opts ReadOptions) ([]*Signature, error) {
	br := bufReader(r)
	magic, err := br.Peek(2)
	if err == nil && len(magic) == 2 && magic[0] == 0x1F && magic[1] == 0x8B {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			return nil, errors.Wrap(gzErr, "signature: opening gzip stream")
		}
		defer gz.Close()
		return decode(gz, opts)
	}
	return decode(br, opts)
}

// peekReader is the minimal interface Read needs from a buffered reader.
type peekReader interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

func bufReader(r io.Reader) peekReader {
	if pr, ok := r.(peekReader); ok {
		return pr
	}
	return newBufio(r)
}

func decode(r io.Reader, opts ReadOptions) ([]*Signature, error) {
	var records []recordDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(err, "signature: decoding JSON")
	}

	var out []*Signature
	for _, rec := range records {
		if rec.HashFunction != "" && rec.HashFunction != hashFunction {
			return nil, errors.Wrapf(ErrWrongHashFunction, "got %q", rec.HashFunction)
		}
		for _, sd := range rec.Sketches {
			sig, err := sketchDocToSignature(sd, rec.Name, rec.Filename, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, sig)
		}
	}
	return out, nil
}

func sketchDocToSignature(sd sketchDoc, name, filename string, opts ReadOptions) (*Signature, error) {
	moltype, ok := hashutil.ParseMoltype(sd.Molecule)
	if !ok {
		return nil, fmt.Errorf("signature: unknown molecule %q", sd.Molecule)
	}

	var scaled uint64
	if sd.MaxHash > 0 {
		scaled = uint64(math.Round(18446744073709551616.0 / float64(sd.MaxHash)))
	}
	trackAbundance := len(sd.Abundances) > 0

	sk, err := sketch.New(sd.Ksize, moltype, sd.Seed, sd.Num, scaled, trackAbundance)
	if err != nil {
		return nil, errors.Wrap(err, "signature: rebuilding sketch")
	}
	if trackAbundance && len(sd.Abundances) != len(sd.Mins) {
		return nil, errors.New("signature: abundances length does not match mins length")
	}
	for i, h := range sd.Mins {
		sk.AddHash(h)
		if trackAbundance {
			for j := uint64(1); j < sd.Abundances[i]; j++ {
				sk.AddHash(h)
			}
		}
	}

	sig := New(sk, name, filename)
	if !opts.IgnoreMD5 && sd.MD5Sum != "" {
		if sig.MD5() != sd.MD5Sum {
			return nil, errors.Wrapf(ErrMD5Mismatch, "stored %q recomputed %q", sd.MD5Sum, sig.MD5())
		}
	}
	return sig, nil
}

// Write serializes signatures grouped by (name, filename) into a single
// top-level JSON array, in the wire form Read can parse back.
func Write(w io.Writer, sigs []*Signature) error {
	groups := map[string][]*Signature{}
	var order []string
	for _, sig := range sigs {
		key := sig.Name + "\x00" + sig.Filename
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sig)
	}

	records := make([]recordDoc, 0, len(order))
	for _, key := range order {
		group := groups[key]
		rec := recordDoc{
			Class:        signatureClass,
			HashFunction: hashFunction,
			Name:         group[0].Name,
			Filename:     group[0].Filename,
			Version:      0.4,
		}
		for _, sig := range group {
			rec.Sketches = append(rec.Sketches, signatureToDoc(sig))
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

func signatureToDoc(sig *Signature) sketchDoc {
	sk := sig.Sketch
	mins := sk.Hashes()
	sort.Slice(mins, func(i, j int) bool { return mins[i] < mins[j] })

	sd := sketchDoc{
		Ksize:    sk.K,
		Num:      sk.Num,
		MaxHash:  sk.MaxHash(),
		Seed:     sk.Seed,
		Molecule: sk.Moltype.String(),
		Mins:     mins,
		MD5Sum:   sig.MD5(),
	}
	if sk.TrackAbundance {
		abund := sk.Abundances()
		sd.Abundances = make([]uint64, len(mins))
		for i, h := range mins {
			sd.Abundances[i] = abund[h]
		}
	}
	return sd
}

// WriteGzip serializes signatures exactly as Write does, then gzips the
// result, matching the transparent-gzip convention signature readers
// everywhere rely on.
func WriteGzip(w io.Writer, sigs []*Signature) error {
	gz := gzip.NewWriter(w)
	if err := Write(gz, sigs); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// bytesBufPeeker adapts a plain io.Reader into something Read can Peek
// on, by reading the whole stream into memory first. Signature files are
// small enough (bounded by indexed genome counts, not raw sequence) that
// this is the same tradeoff the teacher's breader package makes for
// record-oriented formats.
type bytesBufPeeker struct {
	buf *bytes.Reader
}

func newBufio(r io.Reader) peekReader {
	data, err := io.ReadAll(r)
	if err != nil {
		data = nil
	}
	return &bytesBufPeeker{buf: bytes.NewReader(data)}
}

func (p *bytesBufPeeker) Read(b []byte) (int, error) {
	return p.buf.Read(b)
}

func (p *bytesBufPeeker) Peek(n int) ([]byte, error) {
	cur, _ := p.buf.Seek(0, io.SeekCurrent)
	buf := make([]byte, n)
	read, err := p.buf.ReadAt(buf, cur)
	return buf[:read], err
}
