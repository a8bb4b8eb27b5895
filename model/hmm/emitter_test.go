// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/akualab/seqmix/model"
)

func TestValidateMultinomial(t *testing.T) {

	cfg := EmitterConfig{Family: Multinomial}

	if err := cfg.Validate([][][]float64{symbols(0, 1, 2, 1)}); err != nil {
		t.Fatalf("valid dataset rejected: %s", err)
	}
	// Symbol 1 missing, not contiguous.
	if err := cfg.Validate([][][]float64{symbols(0, 2)}); !errors.Is(err, ErrSymbols) {
		t.Errorf("expected ErrSymbols for gap, got %v", err)
	}
	if err := cfg.Validate([][][]float64{symbols(0, 1.5)}); !errors.Is(err, ErrSymbols) {
		t.Errorf("expected ErrSymbols for fraction, got %v", err)
	}
	if err := cfg.Validate([][][]float64{symbols(-1, 0)}); !errors.Is(err, ErrSymbols) {
		t.Errorf("expected ErrSymbols for negative, got %v", err)
	}
	if err := cfg.Validate(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestValidatePoisson(t *testing.T) {

	cfg := EmitterConfig{Family: Poisson}
	if err := cfg.Validate([][][]float64{symbols(0, 3, 7)}); err != nil {
		t.Fatalf("valid dataset rejected: %s", err)
	}
	if err := cfg.Validate([][][]float64{symbols(1, 2.5)}); !errors.Is(err, ErrCounts) {
		t.Errorf("expected ErrCounts, got %v", err)
	}
}

func TestValidateExponential(t *testing.T) {

	cfg := EmitterConfig{Family: Exponential}
	if err := cfg.Validate([][][]float64{symbols(0.5, 2.25, 0)}); err != nil {
		t.Fatalf("valid dataset rejected: %s", err)
	}
	if err := cfg.Validate([][][]float64{symbols(0.5, -0.1)}); !errors.Is(err, ErrNegative) {
		t.Errorf("expected ErrNegative, got %v", err)
	}
}

func TestValidateGaussian(t *testing.T) {

	cfg := EmitterConfig{Family: Gaussian, Dim: 2}
	good := [][][]float64{{{1, 2}, {3, 4}}}
	if err := cfg.Validate(good); err != nil {
		t.Fatalf("valid dataset rejected: %s", err)
	}
	bad := [][][]float64{{{1, 2}, {3}}}
	if err := cfg.Validate(bad); !errors.Is(err, ErrDim) {
		t.Errorf("expected ErrDim, got %v", err)
	}
}

func TestPoissonLogProb(t *testing.T) {

	e := NewPoissonEmitter(2)
	e.Rates = []float64{2, 50}

	lp := e.LogProb(symbols(3))
	// x=3, lambda=2: 3*log(2) - 2 - log(6)
	want := 3*math.Log(2) - 2 - math.Log(6)
	closeEnough(t, "poisson log prob", lp[0][0], want, epsilon)

	if lp[0][0] < lp[0][1] {
		t.Errorf("count 3 should favor rate 2 over rate 50")
	}
}

func TestExponentialLogProb(t *testing.T) {

	e := NewExponentialEmitter(1)
	e.Rates = []float64{0.5}
	lp := e.LogProb(symbols(3))
	closeEnough(t, "exponential log prob", lp[0][0], math.Log(0.5)-0.5*3, epsilon)
}

func TestGaussianLogProbDiag(t *testing.T) {

	e := NewGaussianEmitter(1, 2)
	e.Means[0] = []float64{1, -1}
	e.Vars[0] = []float64{4, 1}

	lp := e.LogProb([][]float64{{1, -1}})
	// At the mean the density is 1/(2*pi*sqrt(det)).
	want := -0.5 * (2*log2Pi + math.Log(4))
	closeEnough(t, "gaussian log prob at mean", lp[0][0], want, epsilon)
}

func TestGaussianFullMatchesDiag(t *testing.T) {

	// A full-covariance emitter with a diagonal matrix must agree
	// with the diag emitter.
	d := NewGaussianEmitter(1, 2)
	d.Means[0] = []float64{0.5, -2}
	d.Vars[0] = []float64{2, 3}

	f := NewGaussianEmitter(1, 2, Cov(CovFull))
	f.Means[0] = []float64{0.5, -2}
	f.CovMats[0] = diagSym([]float64{2, 3})

	x := [][]float64{{1.5, -1}, {0, 0}}
	lpd := d.LogProb(x)
	lpf := f.LogProb(x)
	for i := range x {
		closeEnough(t, "full vs diag", lpf[i][0], lpd[i][0], 1e-6)
	}
}

func TestGaussianMaximize(t *testing.T) {

	e := NewGaussianEmitter(1, 1)
	st := &Stats{}
	e.allocStats(st)

	// Observations 1..4 with unit posteriors on the single state.
	seq := symbols(1, 2, 3, 4)
	post := [][]float64{{1}, {1}, {1}, {1}}
	e.accumulate(st, seq, post)
	e.maximize(st)

	closeEnough(t, "gaussian mean", e.Means[0][0], 2.5, epsilon)
	closeEnough(t, "gaussian var", e.Vars[0][0], 1.25, epsilon)
}

func TestPoissonMaximize(t *testing.T) {

	e := NewPoissonEmitter(1)
	st := &Stats{}
	e.allocStats(st)
	e.accumulate(st, symbols(2, 4, 6), [][]float64{{1}, {1}, {1}})
	e.maximize(st)
	closeEnough(t, "poisson rate", e.Rates[0], 4.0, epsilon)
}

func TestExponentialMaximize(t *testing.T) {

	e := NewExponentialEmitter(1)
	st := &Stats{}
	e.allocStats(st)
	e.accumulate(st, symbols(1, 2, 3), [][]float64{{1}, {1}, {1}})
	e.maximize(st)
	closeEnough(t, "exponential rate", e.Rates[0], 0.5, epsilon)
}

func TestEmitterSamples(t *testing.T) {

	r := rand.New(rand.NewSource(model.DefaultSeed))

	p := NewPoissonEmitter(1)
	p.Rates = []float64{10}
	var sum float64
	n := 5000
	for i := 0; i < n; i++ {
		v := p.Sample(0, r)
		if v[0] < 0 || v[0] != math.Trunc(v[0]) {
			t.Fatalf("poisson sample is not a count: %v", v[0])
		}
		sum += v[0]
	}
	closeEnough(t, "poisson sample mean", sum/float64(n), 10, 0.3)

	x := NewExponentialEmitter(1)
	x.Rates = []float64{2}
	sum = 0
	for i := 0; i < n; i++ {
		v := x.Sample(0, r)
		if v[0] < 0 {
			t.Fatalf("exponential sample is negative: %v", v[0])
		}
		sum += v[0]
	}
	closeEnough(t, "exponential sample mean", sum/float64(n), 0.5, 0.05)
}

func TestInitFromData(t *testing.T) {

	r := rand.New(rand.NewSource(model.DefaultSeed))

	m := NewMultinomialEmitter(2, 0)
	m.initFromData([][][]float64{symbols(0, 1, 2, 3, 2, 1)}, r)
	if m.NSymbols != 4 {
		t.Errorf("discovered alphabet size %d, want 4", m.NSymbols)
	}
	for j := 0; j < m.NStates; j++ {
		var sum float64
		for s := 0; s < m.NSymbols; s++ {
			sum += math.Exp(m.LogEmit[j][s])
		}
		closeEnough(t, "emission row sum", sum, 1.0, epsilon)
	}

	p := NewPoissonEmitter(3)
	p.initFromData([][][]float64{symbols(10, 20, 30)}, r)
	for _, rate := range p.Rates {
		if rate <= 0 {
			t.Errorf("poisson rate not positive: %v", rate)
		}
	}
}
