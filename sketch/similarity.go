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

import "math"

// counts returns |A|, |B|, |A∩B| at the coarser of the two sketches'
// resolutions, flattening abundance away.
func counts(a, b *Sketch) (sizeA, sizeB, common int, err error) {
	if !sameParams(a, b) {
		return 0, 0, 0, ErrIncompatibleSketch
	}
	fa, fb, _, _, err := commonResolution(a, b)
	if err != nil {
		return 0, 0, 0, err
	}
	small, big := fa, fb
	if len(fb.mins) < len(fa.mins) {
		small, big = fb, fa
	}
	n := 0
	for _, h := range small.mins {
		if _, ok := big.set[h]; ok {
			n++
		}
	}
	return len(fa.mins), len(fb.mins), n, nil
}

// Jaccard estimates |A∩B| / |A∪B|.
func Jaccard(a, b *Sketch) (float64, error) {
	sizeA, sizeB, common, err := counts(a, b)
	if err != nil {
		return 0, err
	}
	union := sizeA + sizeB - common
	if union == 0 {
		return 0, nil
	}
	return float64(common) / float64(union), nil
}

// Containment estimates |A∩B| / |A|, i.e. the fraction of a contained in b.
func Containment(a, b *Sketch) (float64, error) {
	sizeA, _, common, err := counts(a, b)
	if err != nil {
		return 0, err
	}
	if sizeA == 0 {
		return 0, nil
	}
	return float64(common) / float64(sizeA), nil
}

// MaxContainment returns max(containment(a,b), containment(b,a)).
func MaxContainment(a, b *Sketch) (float64, error) {
	sizeA, sizeB, common, err := counts(a, b)
	if err != nil {
		return 0, err
	}
	denom := sizeA
	if sizeB < denom {
		denom = sizeB
	}
	if denom == 0 {
		return 0, nil
	}
	return float64(common) / float64(denom), nil
}

// AvgContainment returns the arithmetic mean of containment(a,b) and
// containment(b,a).
func AvgContainment(a, b *Sketch) (float64, error) {
	cab, err := Containment(a, b)
	if err != nil {
		return 0, err
	}
	cba, err := Containment(b, a)
	if err != nil {
		return 0, err
	}
	return (cab + cba) / 2, nil
}

// ContainmentDebiased corrects the containment estimate for the sampling
// bias inherent to scaled sketches: with scaled s, a set with total_denom
// distinct hashes covering [0, max_hash) is sampled independently per
// hash, so the expected number of "false absences" shrinks the estimate
// by a factor that depends on the total number of distinct elements
// considered, not just the sample. Flat (num) sketches have no such bias
// and debiased containment equals plain containment.
func ContainmentDebiased(a, b *Sketch, totalDenom int) (float64, error) {
	c, err := Containment(a, b)
	if err != nil {
		return 0, err
	}
	if a.Scaled == 0 || totalDenom <= 0 {
		return c, nil
	}
	biasFactor := 1.0 - math.Pow(1.0-1.0/float64(a.Scaled), float64(totalDenom))
	if biasFactor <= 0 {
		return c, nil
	}
	return c / biasFactor, nil
}

// AngularSimilarity computes the abundance-weighted cosine similarity,
// expressed as 1 - (2/pi)*arccos(cosine), matching the angular-distance
// convention used for similarity between two abundance-tracking sketches.
func AngularSimilarity(a, b *Sketch) (float64, error) {
	if !sameParams(a, b) {
		return 0, ErrIncompatibleSketch
	}
	if !a.TrackAbundance || !b.TrackAbundance {
		return 0, ErrAbundanceRequired
	}
	var dot, normA, normB float64
	for h, av := range a.abund {
		normA += float64(av) * float64(av)
		if bv, ok := b.abund[h]; ok {
			dot += float64(av) * float64(bv)
		}
	}
	for _, bv := range b.abund {
		normB += float64(bv) * float64(bv)
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cosine > 1 {
		cosine = 1
	}
	if cosine < -1 {
		cosine = -1
	}
	return 1 - (2/math.Pi)*math.Acos(cosine), nil
}
