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

package manifest

import "github.com/sourmash-bio/sourmash-sub002/signature"

// RowFromSignature builds the manifest row describing sig, as it would
// appear stored at internalLocation.
func RowFromSignature(sig *signature.Signature, internalLocation string) Row {
	sk := sig.Sketch
	md5 := sig.MD5()
	short := md5
	if len(short) > 8 {
		short = short[:8]
	}
	return Row{
		InternalLocation: internalLocation,
		MD5:              md5,
		MD5Short:         short,
		Ksize:            sk.K,
		Moltype:          sk.Moltype.String(),
		Num:              sk.Num,
		Scaled:           sk.Scaled,
		NHashes:          sk.Len(),
		WithAbundance:    sk.TrackAbundance,
		Name:             sig.Name,
		Filename:         sig.Filename,
	}
}
