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

// Package signature binds a Sketch to the metadata that makes it
// addressable in a collection (name, source filename, md5 identity) and
// implements the on-disk JSON form shared by every sourmash-compatible
// tool.
package signature

import "github.com/sourmash-bio/sourmash-sub002/sketch"

// Signature pairs a Sketch with the bibliographic metadata sourmash
// carries alongside it. Once returned by New or a Reader, it is treated
// as frozen: callers that need a different sketch build a new Signature
// rather than mutate Sketch in place after indexing.
type Signature struct {
	Sketch   *sketch.Sketch
	Name     string
	Filename string
}

// New wraps sk with its name and filename; the md5 identity is computed
// from the sketch each time MD5 is called.
func New(sk *sketch.Sketch, name, filename string) *Signature {
	return &Signature{Sketch: sk, Name: name, Filename: filename}
}

// MD5 returns the identity hash of the underlying sketch.
func (s *Signature) MD5() string {
	return s.Sketch.MD5()
}

// MD5Short returns the first 8 hex characters of MD5, the form used as a
// manifest's md5short column.
func (s *Signature) MD5Short() string {
	full := s.MD5()
	if len(full) < 8 {
		return full
	}
	return full[:8]
}
