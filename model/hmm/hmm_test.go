// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"encoding/json"
	"flag"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/akualab/seqmix/floatx"
	"github.com/akualab/seqmix/model"
)

const epsilon = 1e-8

func init() {
	flag.Set("logtostderr", "true")
	flag.Set("v", "1")
}

func closeEnough(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v", name, got, want)
	}
}

// makeTestHMM returns a 2-state multinomial HMM with fixed parameters.
func makeTestHMM() *HMM {

	e := NewMultinomialEmitter(2, 2)
	floatx.Apply(floatx.Log, []float64{0.7, 0.3}, e.LogEmit[0])
	floatx.Apply(floatx.Log, []float64{0.2, 0.8}, e.LogEmit[1])
	return New(2, e,
		InitProbs([]float64{0.6, 0.4}),
		TransProbs([][]float64{{0.9, 0.1}, {0.3, 0.7}}))
}

func symbols(xs ...float64) [][]float64 {

	seq := make([][]float64, len(xs))
	for i, x := range xs {
		seq[i] = []float64{x}
	}
	return seq
}

// bruteForceLogProb sums the joint probability over every state path.
func bruteForceLogProb(h *HMM, seq [][]float64) float64 {

	b := h.FrameLogProb(seq)
	T := len(seq)
	nPaths := 1
	for t := 0; t < T; t++ {
		nPaths *= h.NS
	}
	var sum float64
	for p := 0; p < nPaths; p++ {
		path := make([]int, T)
		x := p
		for t := 0; t < T; t++ {
			path[t] = x % h.NS
			x /= h.NS
		}
		lp := h.LogInit[path[0]] + b[0][path[0]]
		for t := 1; t < T; t++ {
			lp += h.LogTrans[path[t-1]][path[t]] + b[t][path[t]]
		}
		sum += math.Exp(lp)
	}
	return math.Log(sum)
}

func TestForwardPass(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(0, 1, 1, 0)

	lp, fwd := h.ForwardPass(h.FrameLogProb(seq))
	want := bruteForceLogProb(h, seq)
	closeEnough(t, "sequence log prob", lp, want, epsilon)

	if len(fwd) != len(seq) || len(fwd[0]) != h.NS {
		t.Fatalf("forward lattice has shape %dx%d, want %dx%d",
			len(fwd), len(fwd[0]), len(seq), h.NS)
	}
	t.Logf("log prob: %f", lp)
}

func TestForwardPassLengthOne(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(1)
	lp, _ := h.ForwardPass(h.FrameLogProb(seq))
	// P(x=1) = 0.6*0.3 + 0.4*0.8
	closeEnough(t, "single frame log prob", lp, math.Log(0.6*0.3+0.4*0.8), epsilon)
}

func TestPosteriors(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(0, 0, 1, 1, 0)
	b := h.FrameLogProb(seq)
	_, fwd := h.ForwardPass(b)
	bwd := h.BackwardPass(b)
	gamma := h.Posteriors(fwd, bwd)

	for tt, row := range gamma {
		var sum float64
		for _, v := range row {
			if v < 0 || v > 1 {
				t.Errorf("posterior out of range at t=%d: %v", tt, v)
			}
			sum += v
		}
		closeEnough(t, "posterior row sum", sum, 1.0, epsilon)
	}
}

func TestViterbi(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(0, 0, 0, 1, 1, 1)
	path, vlp := h.Viterbi(seq)

	lp, _ := h.ForwardPass(h.FrameLogProb(seq))
	if vlp > lp+epsilon {
		t.Errorf("viterbi log prob [%f] exceeds total log prob [%f]", vlp, lp)
	}

	// The emitters strongly prefer state 0 for symbol 0 and state 1
	// for symbol 1, and the chain is sticky.
	want := []int{0, 0, 0, 1, 1, 1}
	for i, s := range want {
		if path[i] != s {
			t.Fatalf("viterbi path %v, want %v", path, want)
		}
	}
}

func TestSampleStats(t *testing.T) {

	h := makeTestHMM()
	r := rand.New(rand.NewSource(model.DefaultSeed))

	n := 20000
	counts := make([]float64, 2)
	obs, states := h.Sample(n, r)
	if len(obs) != n || len(states) != n {
		t.Fatalf("sample returned %d obs, %d states", len(obs), len(states))
	}
	for t := range obs {
		counts[int(obs[t][0])]++
	}
	// Stationary distribution of the chain is (0.75, 0.25), so
	// P(x=0) = 0.75*0.7 + 0.25*0.2 = 0.575.
	closeEnough(t, "sampled symbol frequency", counts[0]/float64(n), 0.575, 0.02)
}

func TestEMImprovesLogProb(t *testing.T) {

	r := rand.New(rand.NewSource(model.DefaultSeed))

	// Generate training data from a reference model.
	ref := makeTestHMM()
	var seqs [][][]float64
	for i := 0; i < 20; i++ {
		obs, _ := ref.Sample(50, r)
		seqs = append(seqs, obs)
	}

	h := New(2, NewMultinomialEmitter(2, 2))
	h.Init(seqs, r)

	prev := math.Inf(-1)
	for iter := 0; iter < 5; iter++ {
		st := h.NewStats()
		var total float64
		for _, seq := range seqs {
			b := h.FrameLogProb(seq)
			lp, fwd := h.ForwardPass(b)
			bwd := h.BackwardPass(b)
			gamma := h.Posteriors(fwd, bwd)
			h.AccumulateStats(st, seq, b, fwd, bwd, gamma, model.AllParams)
			total += lp
		}
		t.Logf("iter %d: log prob %f", iter, total)
		if total < prev-epsilon {
			t.Fatalf("log prob decreased from %f to %f at iter %d", prev, total, iter)
		}
		prev = total
		h.Maximize(st, model.AllParams)
	}
}

func TestAccumulateStatsLengthOne(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(0)
	b := h.FrameLogProb(seq)
	_, fwd := h.ForwardPass(b)
	bwd := h.BackwardPass(b)
	gamma := h.Posteriors(fwd, bwd)

	st := h.NewStats()
	h.AccumulateStats(st, seq, b, fwd, bwd, gamma, model.AllParams)

	var startSum, transSum float64
	for i := 0; i < h.NS; i++ {
		startSum += st.Start[i]
		for j := 0; j < h.NS; j++ {
			transSum += st.Trans[i][j]
		}
	}
	closeEnough(t, "start mass", startSum, 1.0, epsilon)
	closeEnough(t, "transition mass", transSum, 0.0, epsilon)
}

func TestStatsAddScaled(t *testing.T) {

	h := makeTestHMM()
	seq := symbols(0, 1, 0)
	b := h.FrameLogProb(seq)
	_, fwd := h.ForwardPass(b)
	bwd := h.BackwardPass(b)
	gamma := h.Posteriors(fwd, bwd)

	src := h.NewStats()
	h.AccumulateStats(src, seq, b, fwd, bwd, gamma, model.AllParams)

	dst := h.NewStats()
	dst.AddScaled(src, 0.25)
	dst.AddScaled(src, 0.75)
	for i := range dst.Start {
		closeEnough(t, "folded start stats", dst.Start[i], src.Start[i], epsilon)
	}
	for i := range dst.Obs {
		for s := range dst.Obs[i] {
			closeEnough(t, "folded emission stats", dst.Obs[i][s], src.Obs[i][s], epsilon)
		}
	}

	dst.Zero()
	for i := range dst.Start {
		closeEnough(t, "zeroed stats", dst.Start[i], 0, 0)
	}
}

func TestJSONRoundTrip(t *testing.T) {

	families := []Emitter{
		NewMultinomialEmitter(2, 3),
		NewPoissonEmitter(2),
		NewExponentialEmitter(2),
		NewGaussianEmitter(2, 3, Cov(CovFull)),
	}

	for _, out := range families {
		h := New(2, out, Name("test-"+out.Family().String()))
		b, err := json.Marshal(h)
		if err != nil {
			t.Fatalf("marshal [%s]: %s", out.Family(), err)
		}
		var h2 HMM
		if err := json.Unmarshal(b, &h2); err != nil {
			t.Fatalf("unmarshal [%s]: %s", out.Family(), err)
		}
		if h2.Name() != h.Name() || h2.NS != h.NS {
			t.Fatalf("round trip lost identity for [%s]", out.Family())
		}
		if h2.Out.Family() != out.Family() {
			t.Fatalf("round trip family [%s], want [%s]", h2.Out.Family(), out.Family())
		}
		for i := range h.LogTrans {
			for j := range h.LogTrans[i] {
				closeEnough(t, "round trip trans", h2.LogTrans[i][j], h.LogTrans[i][j], epsilon)
			}
		}
	}
}
