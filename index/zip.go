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
	"archive/zip"
	"io"

	"github.com/pkg/errors"

	"github.com/sourmash-bio/sourmash-sub002/manifest"
	"github.com/sourmash-bio/sourmash-sub002/signature"
)

// zipManifestName is the fixed root entry every zip container carries.
const zipManifestName = "SOURMASH-MANIFEST.csv"

// OpenZip opens a zip container of the given size from ra (typically an
// *os.File), reading SOURMASH-MANIFEST.csv and wrapping the result in a
// ManifestIndex whose loader opens signatures/<md5>.sig.gz entries lazily.
// Entries are stored rather than re-deflated by the writer side, since the
// .sig.gz payload is already gzip-compressed; archive/zip's reader handles
// either method transparently.
func OpenZip(ra io.ReaderAt, size int64) (*ManifestIndex, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, errors.Wrap(err, "index: opening zip container")
	}

	byName := make(map[string]*zip.File, len(zr.File))
	var manifestFile *zip.File
	for _, f := range zr.File {
		byName[f.Name] = f
		if f.Name == zipManifestName {
			manifestFile = f
		}
	}
	if manifestFile == nil {
		return nil, errors.Errorf("index: zip container missing %s", zipManifestName)
	}

	rc, err := manifestFile.Open()
	if err != nil {
		return nil, errors.Wrap(err, "index: opening manifest entry")
	}
	defer rc.Close()
	m, err := manifest.Read(rc)
	if err != nil {
		return nil, errors.Wrap(err, "index: parsing manifest entry")
	}

	load := func(r manifest.Row) (*signature.Signature, error) {
		f, ok := byName[r.InternalLocation]
		if !ok {
			return nil, errors.Errorf("index: zip container missing entry %s", r.InternalLocation)
		}
		entry, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(err, "index: opening signature entry")
		}
		defer entry.Close()
		sigs, err := signature.Read(entry, signature.ReadOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "index: decoding signature entry")
		}
		for _, sig := range sigs {
			if sig.MD5() == r.MD5 {
				return sig, nil
			}
		}
		if len(sigs) > 0 {
			return sigs[0], nil
		}
		return nil, errors.Errorf("index: zip entry %s contained no signatures", r.InternalLocation)
	}

	return NewManifestIndex(m, load), nil
}

// WriteZip builds a zip container from located: SOURMASH-MANIFEST.csv at
// the root plus one signatures/<md5>.sig.gz entry per signature,
// stored rather than deflated since each entry is already gzipped.
func WriteZip(w io.Writer, located []Located) error {
	zw := zip.NewWriter(w)

	rows := make([]manifest.Row, len(located))
	for i, l := range located {
		internalLocation := "signatures/" + l.Signature.MD5() + ".sig.gz"
		rows[i] = manifest.RowFromSignature(l.Signature, internalLocation)

		fw, err := zw.CreateHeader(&zip.FileHeader{Name: internalLocation, Method: zip.Store})
		if err != nil {
			return errors.Wrap(err, "index: creating zip entry")
		}
		if err := signature.WriteGzip(fw, []*signature.Signature{l.Signature}); err != nil {
			return errors.Wrap(err, "index: writing signature entry")
		}
	}

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: zipManifestName, Method: zip.Store})
	if err != nil {
		return errors.Wrap(err, "index: creating manifest entry")
	}
	if err := manifest.Write(mw, &manifest.Manifest{Rows: rows}); err != nil {
		return errors.Wrap(err, "index: writing manifest entry")
	}

	return errors.Wrap(zw.Close(), "index: closing zip container")
}
