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

package cmd

import (
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/index"
	"github.com/sourmash-bio/sourmash-sub002/manifest"
	"github.com/sourmash-bio/sourmash-sub002/sbt"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// ErrIndexNotLoaded is returned when no supported format recognized path.
var ErrIndexNotLoaded = errors.New("cmd: none of the supported formats could load this path")

// loadIndex opens path as whichever of the supported on-disk forms it is:
// a zip container, a standalone manifest CSV, an SBT json tree, or a plain
// signature JSON (one or more sketches, loaded as a LinearIndex). Each
// candidate format's DeserializationError is swallowed and the next format
// tried, matching the loader priority order from the error-handling design.
func loadIndex(path string) (index.Index, error) {
	path = expandPath(path)

	switch {
	case strings.HasSuffix(path, ".sbt.json"):
		return loadSBT(path)
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path)
	case strings.HasSuffix(path, "manifest.csv") || strings.HasSuffix(path, ".manifest.csv"):
		return loadManifest(path)
	}

	if ix, err := loadSignatures(path); err == nil {
		return ix, nil
	}
	if ix, err := loadZip(path); err == nil {
		return ix, nil
	}
	if ix, err := loadManifest(path); err == nil {
		return ix, nil
	}
	if ix, err := loadSBT(path); err == nil {
		return ix, nil
	}
	return nil, errors.Wrapf(ErrIndexNotLoaded, "%s", path)
}

func loadSignatures(path string) (index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sigs, err := signature.Read(f, signature.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("cmd: no signatures decoded")
	}
	return index.NewLinearIndex(sigs, path), nil
}

func loadZip(path string) (index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	ix, err := index.OpenZip(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return ix, nil
}

func loadManifest(path string) (index.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := manifest.Read(f)
	if err != nil {
		return nil, err
	}
	load := func(r manifest.Row) (*signature.Signature, error) {
		sf, err := os.Open(r.InternalLocation)
		if err != nil {
			return nil, err
		}
		defer sf.Close()
		sigs, err := signature.Read(sf, signature.ReadOptions{})
		if err != nil {
			return nil, err
		}
		for _, s := range sigs {
			if s.MD5() == r.MD5 {
				return s, nil
			}
		}
		if len(sigs) > 0 {
			return sigs[0], nil
		}
		return nil, errors.Errorf("cmd: %s contained no signatures", r.InternalLocation)
	}
	return index.NewManifestIndex(m, load), nil
}

func loadSBT(path string) (index.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	storage, err := sbt.NewFSStorage(path+".d", 1<<20)
	if err != nil {
		return nil, err
	}
	tree, err := sbt.Load(data, storage, 64)
	if err != nil {
		return nil, err
	}
	return sbt.AsIndex{Tree: tree}, nil
}

// loadQuery reads exactly one signature to use as a query sketch, the
// convention every search/gather/prefetch subcommand shares.
func loadQuery(path string) (*signature.Signature, error) {
	f, err := os.Open(expandPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cmd: opening query %s", path)
	}
	defer f.Close()
	sigs, err := signature.Read(f, signature.ReadOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "cmd: decoding query %s", path)
	}
	if len(sigs) == 0 {
		return nil, errors.Errorf("cmd: %s contains no signatures", path)
	}
	return sigs[0], nil
}
