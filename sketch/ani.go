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

import (
	"errors"
	"math"
)

// ErrCannotEstimateANI is returned when the inputs make the Bernoulli
// mutation model inapplicable (e.g. zero containment, or ksize<1).
var ErrCannotEstimateANI = errors.New("sketch: cannot estimate ANI from these inputs")

// ANIEstimate is a point estimate plus confidence interval and data-quality
// flags, mirroring the fields the original distance_utils module returns
// alongside a containment- or Jaccard-derived identity estimate.
type ANIEstimate struct {
	ANI                  float64
	ANILow               float64
	ANIHigh              float64
	ConfidenceLevel      float64
	PFalseNegative       float64 // probability the two genomes share nothing despite observed containment
	SizeMayBeInaccurate  bool    // Chernoff-bound flag: n_kmers too small to trust the point estimate
}

// r1ToQ converts a per-base mutation probability r1 into the probability
// q that a single k-mer is mutated (i.e. differs from its ungapped
// original): q = 1 - (1-r1)^k.
func r1ToQ(k int, r1 float64) float64 {
	return 1 - math.Pow(1-r1, float64(k))
}

// qToR1 inverts r1ToQ.
func qToR1(k int, q float64) float64 {
	if q >= 1 {
		return 1
	}
	return 1 - math.Pow(1-q, 1/float64(k))
}

// varNMutated is the variance of the number of mutated k-mers among nKmers
// trials with per-kmer mutation probability q, under the k-mer-run
// correlation model (adjacent k-mers sharing a mutated base are not
// independent events).
func varNMutated(nKmers, k int, r1 float64) float64 {
	if r1 == 0 {
		return 0
	}
	if r1 == 1 {
		return 0
	}
	q := r1ToQ(k, r1)
	n := float64(nKmers)
	kf := float64(k)

	varN := n*(1-q)*(q*(2*kf+(2/r1)-1) - 2*kf) +
		kf*(kf-1)*(1-q)*(1-q)
	varN += n * q
	// Clamp numerical noise near the boundaries to nonnegative.
	if varN < 0 {
		varN = 0
	}
	return varN
}

// probit approximates the inverse standard normal CDF (quantile function)
// via Acklam's rational approximation, accurate to about 1.15e-9 — ample
// for a 95%-style confidence interval. The stdlib has no statistics
// package, and nothing in the example pack provides inverse-normal /
// erfinv, so the rational approximation is implemented directly here.
func probit(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	// Peter Acklam's algorithm.
	a := [...]float64{-3.969683028665376e+01, 2.209460984245205e+02,
		-2.759285104469687e+02, 1.383577518672690e+02,
		-3.066479806614716e+01, 2.506628277459239e+00}
	b := [...]float64{-5.447609879822406e+01, 1.615858368580409e+02,
		-1.556989798598866e+02, 6.680131188771972e+01,
		-1.328068155288572e+01}
	c := [...]float64{-7.784894002430293e-03, -3.223964580411365e-01,
		-2.400758277161838e+00, -2.549732539343734e+00,
		4.374664141464968e+00, 2.938163982698783e+00}
	d := [...]float64{7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00}

	const pLow = 0.02425
	var q, r float64
	switch {
	case p < pLow:
		q = math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-pLow:
		q = math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q = p - 0.5
		r = q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}

// expProbabilityNothingCommon is the probability, under a Poisson model of
// scaled sampling, that two sequences sharing mutation rate r1 would show
// zero shared hashes purely by chance — used to flag "surprisingly low
// containment" results.
func expProbabilityNothingCommon(r1 float64, k int, nUnique float64, scaled uint64) float64 {
	q := r1ToQ(k, r1)
	pNothing := math.Pow(1-(1.0/float64(scaled))*(1-q), nUnique)
	return pNothing
}

// ANIFromContainment derives a point estimate and confidence interval for
// average nucleotide identity from an observed containment fraction,
// following the Bernoulli-mutation-model inversion: containment estimates
// 1-q (the fraction of k-mers surviving mutation), which inverts to a
// per-base mutation rate r1 via qToR1, and ANI = 1 - r1. The interval is
// obtained by inverting the containment variance at the two tails of a
// normal approximation using Brent's method, exactly as the original
// confidence-interval routine does.
func ANIFromContainment(containment float64, ksize int, nKmers int, confidence float64) (ANIEstimate, error) {
	if ksize < 1 {
		return ANIEstimate{}, ErrCannotEstimateANI
	}
	if containment <= 0 {
		return ANIEstimate{}, ErrCannotEstimateANI
	}
	if containment > 1 {
		containment = 1
	}

	q := 1 - containment
	r1 := qToR1(ksize, q)
	ani := 1 - r1

	est := ANIEstimate{
		ANI:             ani,
		ANILow:          ani,
		ANIHigh:         ani,
		ConfidenceLevel: confidence,
	}

	if nKmers <= 0 || containment >= 1 {
		return est, nil
	}

	alpha := 1 - confidence
	z := probit(1 - alpha/2)

	// f(r1) = observed_containment_std_distance(r1) - z, solved for the two
	// tails by bracketing r1 away from the point estimate in each direction.
	containmentAt := func(trialR1 float64) float64 {
		return 1 - r1ToQ(ksize, trialR1)
	}
	stdAt := func(trialR1 float64) float64 {
		v := varNMutated(nKmers, ksize, trialR1)
		return math.Sqrt(v) / float64(nKmers)
	}

	lowFn := func(trialR1 float64) float64 {
		return containmentAt(trialR1) + z*stdAt(trialR1) - containment
	}
	highFn := func(trialR1 float64) float64 {
		return containmentAt(trialR1) - z*stdAt(trialR1) - containment
	}

	if r1Low, err := brentq(lowFn, 1e-12, 1-1e-12, 1e-8, 100); err == nil {
		est.ANIHigh = 1 - r1Low
	}
	if r1High, err := brentq(highFn, 1e-12, 1-1e-12, 1e-8, 100); err == nil {
		est.ANILow = 1 - r1High
	}
	if est.ANILow > est.ANIHigh {
		est.ANILow, est.ANIHigh = est.ANIHigh, est.ANILow
	}
	if est.ANILow < 0 {
		est.ANILow = 0
	}
	if est.ANIHigh > 1 {
		est.ANIHigh = 1
	}

	est.PFalseNegative = expProbabilityNothingCommon(r1, ksize, float64(nKmers), 1)
	est.SizeMayBeInaccurate = sizeMayBeInaccurate(nKmers, ksize, r1)

	return est, nil
}

// sizeMayBeInaccurate applies a Chernoff-bound style check: if the
// expected number of mutated k-mers is too small relative to its standard
// deviation, the point estimate for r1 is unreliable and downstream
// consumers should treat the ANI value with caution.
func sizeMayBeInaccurate(nKmers, k int, r1 float64) bool {
	if nKmers <= 0 {
		return true
	}
	varN := varNMutated(nKmers, k, r1)
	expN := float64(nKmers) * r1ToQ(k, r1)
	if expN <= 0 {
		return false
	}
	relStd := math.Sqrt(varN) / expN
	return relStd > 1.0
}
