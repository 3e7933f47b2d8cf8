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

package sketch

import "errors"

// ErrIncompatibleSketch is returned when two sketches cannot be compared or
// combined: mismatched ksize/moltype/seed, or mixing num with scaled.
var ErrIncompatibleSketch = errors.New("sketch: incompatible sketch parameters")

// ErrCannotDownsample is returned when a downsample request would increase
// resolution (decrease scaled, or increase num).
var ErrCannotDownsample = errors.New("sketch: cannot downsample to a higher resolution")

// ErrAbundanceRequired is returned when an abundance-only operation is
// attempted on a sketch that does not track abundance.
var ErrAbundanceRequired = errors.New("sketch: operation requires track_abundance")

// ErrAbundanceForbidden is returned when an operation that requires flat
// sketches is given an abundance-tracking one.
var ErrAbundanceForbidden = errors.New("sketch: operation forbids track_abundance")

// ErrInvalidKmer is returned when a k-mer contains a character outside the
// expected alphabet and force mode was not requested.
var ErrInvalidKmer = errors.New("sketch: invalid k-mer")
