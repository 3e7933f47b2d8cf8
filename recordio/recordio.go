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

// Package recordio bridges FASTA/FASTQ record streams to a Sketch,
// the same seqio/fastx reader loop the teacher uses in its kmer-counting
// subcommands, generalized to feed sketch.Sketch.AddSequence/AddProtein
// instead of the teacher's 2-bit-packed k-mer encoder.
package recordio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/sourmash-bio/sourmash-sub002/sketch"
)

func init() {
	seq.ValidateSeq = false
}

// AddFile streams every record of a FASTA/FASTQ file (optionally gzipped,
// handled transparently by fastx) into sk. inputIsProtein selects which
// alphabet the file itself is written in, independent of sk's own
// moltype: protein input is always hashed directly over the amino-acid
// alphabet (sk.AddProtein), while DNA input goes through sk.AddSequence,
// which six-frame-translates internally whenever sk's moltype is not
// DNA. force skips windows containing non-alphabet characters instead
// of aborting the whole file.
func AddFile(sk *sketch.Sketch, path string, inputIsProtein, force bool) (nRecords int, err error) {
	reader, err := fastx.NewDefaultReader(path)
	if err != nil {
		return 0, errors.Wrapf(err, "recordio: opening %s", path)
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nRecords, errors.Wrapf(err, "recordio: reading %s", path)
		}

		if inputIsProtein {
			err = sk.AddProtein(record.Seq.Seq, force)
		} else {
			err = sk.AddSequence(record.Seq.Seq, force)
		}
		if err != nil {
			return nRecords, errors.Wrapf(err, "recordio: hashing record in %s", path)
		}
		nRecords++
	}
	return nRecords, nil
}

// AddFiles is AddFile over every path in order, summing the record count.
func AddFiles(sk *sketch.Sketch, paths []string, inputIsProtein, force bool) (nRecords int, err error) {
	for _, p := range paths {
		n, err := AddFile(sk, p, inputIsProtein, force)
		nRecords += n
		if err != nil {
			return nRecords, err
		}
	}
	return nRecords, nil
}
