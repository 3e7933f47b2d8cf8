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
	"math"
	"testing"
)

func TestANIFromContainmentOfOneIsOne(t *testing.T) {
	est, err := ANIFromContainment(1.0, 21, 10000, 0.95)
	if err != nil {
		t.Fatalf("ANIFromContainment: %v", err)
	}
	if math.Abs(est.ANI-1.0) > 1e-9 {
		t.Fatalf("ANI = %f, want 1.0", est.ANI)
	}
}

func TestANIFromContainmentDecreasesAsContainmentDrops(t *testing.T) {
	high, err := ANIFromContainment(0.99, 21, 10000, 0.95)
	if err != nil {
		t.Fatalf("ANIFromContainment(high): %v", err)
	}
	low, err := ANIFromContainment(0.80, 21, 10000, 0.95)
	if err != nil {
		t.Fatalf("ANIFromContainment(low): %v", err)
	}
	if !(high.ANI > low.ANI) {
		t.Fatalf("expected ANI(containment=0.99)=%f > ANI(containment=0.80)=%f", high.ANI, low.ANI)
	}
}

func TestANIFromContainmentConfidenceIntervalBracketsPointEstimate(t *testing.T) {
	est, err := ANIFromContainment(0.9, 21, 5000, 0.95)
	if err != nil {
		t.Fatalf("ANIFromContainment: %v", err)
	}
	if !(est.ANILow <= est.ANI && est.ANI <= est.ANIHigh) {
		t.Fatalf("expected ANILow(%f) <= ANI(%f) <= ANIHigh(%f)", est.ANILow, est.ANI, est.ANIHigh)
	}
}

func TestANIFromContainmentRejectsZeroContainment(t *testing.T) {
	if _, err := ANIFromContainment(0, 21, 1000, 0.95); err != ErrCannotEstimateANI {
		t.Fatalf("err = %v, want ErrCannotEstimateANI", err)
	}
}

func TestProbitIsInverseOfStandardNormalAtMedian(t *testing.T) {
	if math.Abs(probit(0.5)) > 1e-9 {
		t.Fatalf("probit(0.5) = %f, want 0", probit(0.5))
	}
}

func TestProbitOfCommonConfidenceLevel(t *testing.T) {
	// z for a two-sided 95% interval is the well-known 1.959963985...
	z := probit(0.975)
	if math.Abs(z-1.959963985) > 1e-6 {
		t.Fatalf("probit(0.975) = %f, want ~1.959963985", z)
	}
}

func TestBrentqFindsRootOfSimplePolynomial(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	root, err := brentq(f, 0, 2, 1e-12, 100)
	if err != nil {
		t.Fatalf("brentq: %v", err)
	}
	if math.Abs(root-math.Sqrt2) > 1e-8 {
		t.Fatalf("root = %f, want sqrt(2) = %f", root, math.Sqrt2)
	}
}

func TestBrentqRejectsUnbracketedRoot(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	if _, err := brentq(f, 0, 2, 1e-12, 100); err != ErrRootNotBracketed {
		t.Fatalf("err = %v, want ErrRootNotBracketed", err)
	}
}
