// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hmm provides hidden Markov models with a closed set of
emission families (multinomial, poisson, exponential, gaussian).

All lattice computations are done in the log domain without scaling so
that forward and backward lattices can be combined directly when
accumulating sufficient statistics. Zero probability is represented by
-Inf, never NaN.
*/
package hmm

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/akualab/seqmix/floatx"
	"github.com/akualab/seqmix/model"
)

const (
	// paramFloor keeps re-estimated probabilities away from exact
	// zero so no state or transition degenerates permanently.
	paramFloor = 1e-20

	// lnetaCap bounds log counts before exponentiating.
	lnetaCap = 700
)

// HMM is a hidden Markov model with one emission distribution per
// state supplied by an Emitter.
type HMM struct {

	// Model name.
	ModelName string `json:"name,omitempty"`

	// Number of hidden states.
	NS int `json:"num_states"`

	// Initial state distribution in the log domain.
	LogInit []float64 `json:"log_init"`

	// State transition matrix in the log domain.
	LogTrans [][]float64 `json:"log_trans"`

	// Dirichlet pseudocounts for the maximization step. Nil means
	// uniform (all ones).
	InitPrior  []float64   `json:"init_prior,omitempty"`
	TransPrior [][]float64 `json:"trans_prior,omitempty"`

	// Emission distribution shared by all states.
	Out Emitter `json:"-"`
}

// Option type is used to pass options to New().
type Option func(*HMM)

// New creates an HMM with ns states and the given emitter. The default
// chain has a uniform initial distribution and a sticky transition
// matrix (0.8 self-loop).
func New(ns int, out Emitter, options ...Option) *HMM {

	h := &HMM{
		ModelName: "HMM",
		NS:        ns,
		Out:       out,
	}
	for _, option := range options {
		option(h)
	}

	if h.LogInit == nil {
		h.LogInit = make([]float64, ns)
		floatx.Apply(floatx.SetValueFunc(-math.Log(float64(ns))), h.LogInit, nil)
	}
	if h.LogTrans == nil {
		h.LogTrans = floatx.MakeFloat2D(ns, ns)
		for i := 0; i < ns; i++ {
			for j := 0; j < ns; j++ {
				if i == j || ns == 1 {
					h.LogTrans[i][j] = math.Log(0.8)
				} else {
					h.LogTrans[i][j] = math.Log(0.2 / float64(ns-1))
				}
			}
		}
		if ns == 1 {
			h.LogTrans[0][0] = 0
		}
	}
	return h
}

// Name returns the name of the model.
func (h *HMM) Name() string { return h.ModelName }

// Name is an option to set the model name.
func Name(name string) Option {
	return func(h *HMM) { h.ModelName = name }
}

// InitProbs is an option to set the initial state distribution
// (linear domain).
func InitProbs(p []float64) Option {
	return func(h *HMM) {
		h.LogInit = make([]float64, len(p))
		floatx.Apply(floatx.Log, p, h.LogInit)
	}
}

// TransProbs is an option to set the transition matrix (linear domain).
func TransProbs(p [][]float64) Option {
	return func(h *HMM) {
		h.LogTrans = floatx.CopyFloat2D(p)
		for _, row := range h.LogTrans {
			floatx.Apply(floatx.Log, row, nil)
		}
	}
}

// Init estimates default parameters from the dataset. The chain is
// left at its sticky default; the emitter draws randomized parameters
// around the data moments to break symmetry between components.
func (h *HMM) Init(seqs [][][]float64, r *rand.Rand) {

	h.Out.initFromData(seqs, r)
	glog.V(2).Infof("initialized hmm [%s] from %d sequences", h.ModelName, len(seqs))
}

// FrameLogProb returns the per-timestep emission log-likelihood table
// for seq with shape [T][NS].
func (h *HMM) FrameLogProb(seq [][]float64) [][]float64 {

	return h.Out.LogProb(seq)
}

// ForwardPass runs the forward recursion on a frame log-likelihood
// table and returns the total sequence log-likelihood and the forward
// lattice (log domain, unscaled).
func (h *HMM) ForwardPass(frameLogProb [][]float64) (float64, [][]float64) {

	T, ns := floatx.Check2D(frameLogProb)
	fwd := floatx.MakeFloat2D(T, ns)
	wk := make([]float64, ns)

	for j := 0; j < ns; j++ {
		fwd[0][j] = h.LogInit[j] + frameLogProb[0][j]
	}
	for t := 1; t < T; t++ {
		for j := 0; j < ns; j++ {
			for i := 0; i < ns; i++ {
				wk[i] = fwd[t-1][i] + h.LogTrans[i][j]
			}
			fwd[t][j] = floatx.LogSumExp(wk) + frameLogProb[t][j]
		}
	}
	return floatx.LogSumExp(fwd[T-1]), fwd
}

// BackwardPass runs the backward recursion and returns the backward
// lattice (log domain, unscaled).
func (h *HMM) BackwardPass(frameLogProb [][]float64) [][]float64 {

	T, ns := floatx.Check2D(frameLogProb)
	bwd := floatx.MakeFloat2D(T, ns)
	wk := make([]float64, ns)

	for t := T - 2; t >= 0; t-- {
		for i := 0; i < ns; i++ {
			for j := 0; j < ns; j++ {
				wk[j] = h.LogTrans[i][j] + frameLogProb[t+1][j] + bwd[t+1][j]
			}
			bwd[t][i] = floatx.LogSumExp(wk)
		}
	}
	return bwd
}

// Posteriors returns the state-occupation probabilities gamma with
// shape [T][NS]. Rows sum to one.
func (h *HMM) Posteriors(fwd, bwd [][]float64) [][]float64 {

	T, ns := floatx.Check2D(fwd)
	gamma := floatx.MakeFloat2D(T, ns)
	for t := 0; t < T; t++ {
		for j := 0; j < ns; j++ {
			gamma[t][j] = fwd[t][j] + bwd[t][j]
		}
		floatx.LogNormalize(gamma[t])
		floatx.Apply(floatx.Exp, gamma[t], nil)
	}
	return gamma
}

// LogProb returns the total log-likelihood of seq under the model.
func (h *HMM) LogProb(seq [][]float64) float64 {

	lp, _ := h.ForwardPass(h.FrameLogProb(seq))
	return lp
}

// NewStats allocates a zeroed sufficient-statistics record shaped for
// this model.
func (h *HMM) NewStats() *Stats {

	st := &Stats{
		Start: make([]float64, h.NS),
		Trans: floatx.MakeFloat2D(h.NS, h.NS),
	}
	h.Out.allocStats(st)
	return st
}

// AccumulateStats adds the statistics of one sequence to st using the
// unweighted posteriors of that sequence's forward-backward pass.
// Sequences of length one contribute start counts but no transition
// counts.
func (h *HMM) AccumulateStats(st *Stats, seq, frameLogProb, fwd, bwd, posteriors [][]float64, p model.ParamSet) {

	if p.Has(model.ParamChain) {
		floats.Add(st.Start, posteriors[0])
		T := len(frameLogProb)
		if T > 1 {
			h.accumulateTrans(st, frameLogProb, fwd, bwd)
		}
	}
	if p.Has(model.ParamEmissions) {
		h.Out.accumulate(st, seq, posteriors)
	}
}

// accumulateTrans adds the expected transition counts. For each state
// pair the counts are summed over time in the log domain:
//
//	lneta(t,i,j) = fwd(t,i) + a(i,j) + b(j,t+1) + bwd(t+1,j) - lnP
func (h *HMM) accumulateTrans(st *Stats, frameLogProb, fwd, bwd [][]float64) {

	T := len(frameLogProb)
	lnP := floatx.LogSumExp(fwd[T-1])
	for i := 0; i < h.NS; i++ {
		for j := 0; j < h.NS; j++ {
			acc := math.Inf(-1)
			for t := 0; t < T-1; t++ {
				x := fwd[t][i] + h.LogTrans[i][j] + frameLogProb[t+1][j] + bwd[t+1][j] - lnP
				acc = floatx.LogAdd(acc, x)
			}
			if acc > lnetaCap {
				acc = lnetaCap
			}
			st.Trans[i][j] += math.Exp(acc)
		}
	}
}

// Maximize re-estimates the selected parameter groups from st. The
// chain update is a Dirichlet MAP estimate floored away from zero.
func (h *HMM) Maximize(st *Stats, p model.ParamSet) {

	if p.Has(model.ParamChain) {
		start := make([]float64, h.NS)
		for i := range start {
			prior := 1.0
			if h.InitPrior != nil {
				prior = h.InitPrior[i]
			}
			start[i] = prior - 1.0 + st.Start[i]
		}
		floatx.Apply(floatx.Floor(paramFloor), start, nil)
		floatx.Normalize(start)
		floatx.Apply(floatx.Log, start, h.LogInit)

		row := make([]float64, h.NS)
		for i := 0; i < h.NS; i++ {
			for j := 0; j < h.NS; j++ {
				prior := 1.0
				if h.TransPrior != nil {
					prior = h.TransPrior[i][j]
				}
				row[j] = prior - 1.0 + st.Trans[i][j]
			}
			floatx.Apply(floatx.Floor(paramFloor), row, nil)
			floatx.Normalize(row)
			floatx.Apply(floatx.Log, row, h.LogTrans[i])
		}
	}
	if p.Has(model.ParamEmissions) {
		h.Out.maximize(st)
	}
}

// Viterbi returns the most probable state sequence for seq and its
// joint log-likelihood.
func (h *HMM) Viterbi(seq [][]float64) ([]int, float64) {

	b := h.FrameLogProb(seq)
	T, ns := floatx.Check2D(b)

	delta := floatx.MakeFloat2D(T, ns)
	index := make([][]int, T)
	for t := range index {
		index[t] = make([]int, ns)
	}

	for j := 0; j < ns; j++ {
		delta[0][j] = h.LogInit[j] + b[0][j]
	}
	for t := 1; t < T; t++ {
		for j := 0; j < ns; j++ {
			max := delta[t-1][0] + h.LogTrans[0][j]
			argmax := 0
			for i := 1; i < ns; i++ {
				if v := delta[t-1][i] + h.LogTrans[i][j]; v > max {
					max = v
					argmax = i
				}
			}
			delta[t][j] = max + b[t][j]
			index[t][j] = argmax
		}
	}

	bt := make([]int, T)
	best := delta[T-1][0]
	for j := 1; j < ns; j++ {
		if delta[T-1][j] > best {
			best = delta[T-1][j]
			bt[T-1] = j
		}
	}
	for t := T - 2; t >= 0; t-- {
		bt[t] = index[t+1][bt[t+1]]
	}
	return bt, best
}

// Sample generates an observation sequence of the given length along
// with the hidden state sequence.
func (h *HMM) Sample(length int, r *rand.Rand) ([][]float64, []int) {

	obs := make([][]float64, length)
	states := make([]int, length)

	init := make([]float64, h.NS)
	floatx.Apply(floatx.Exp, h.LogInit, init)
	s, err := model.RandIntFromDist(init, r)
	if err != nil {
		glog.Fatalf("failed to sample initial state: %s", err)
	}
	row := make([]float64, h.NS)
	for t := 0; t < length; t++ {
		states[t] = s
		obs[t] = h.Out.Sample(s, r)
		floatx.Apply(floatx.Exp, h.LogTrans[s], row)
		s, err = model.RandIntFromDist(row, r)
		if err != nil {
			glog.Fatalf("failed to sample state transition: %s", err)
		}
	}
	return obs, states
}

// hmmJSON is the serialization envelope. The emitter is tagged with
// its family so the concrete type can be restored.
type hmmJSON struct {
	Name       string          `json:"name,omitempty"`
	NS         int             `json:"num_states"`
	LogInit    []float64       `json:"log_init"`
	LogTrans   [][]float64     `json:"log_trans"`
	InitPrior  []float64       `json:"init_prior,omitempty"`
	TransPrior [][]float64     `json:"trans_prior,omitempty"`
	Family     string          `json:"family"`
	Emitter    json.RawMessage `json:"emitter"`
}

// MarshalJSON implements the json.Marshaler interface.
func (h *HMM) MarshalJSON() ([]byte, error) {

	raw, err := json.Marshal(h.Out)
	if err != nil {
		return nil, err
	}
	return json.Marshal(hmmJSON{
		Name:       h.ModelName,
		NS:         h.NS,
		LogInit:    h.LogInit,
		LogTrans:   h.LogTrans,
		InitPrior:  h.InitPrior,
		TransPrior: h.TransPrior,
		Family:     h.Out.Family().String(),
		Emitter:    raw,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (h *HMM) UnmarshalJSON(b []byte) error {

	var env hmmJSON
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	family, err := ParseFamily(env.Family)
	if err != nil {
		return err
	}

	var out Emitter
	switch family {
	case Multinomial:
		e := &MultinomialEmitter{}
		err = json.Unmarshal(env.Emitter, e)
		out = e
	case Poisson:
		e := &PoissonEmitter{}
		err = json.Unmarshal(env.Emitter, e)
		out = e
	case Exponential:
		e := &ExponentialEmitter{}
		err = json.Unmarshal(env.Emitter, e)
		out = e
	case Gaussian:
		e := &GaussianEmitter{}
		err = json.Unmarshal(env.Emitter, e)
		out = e
	}
	if err != nil {
		return fmt.Errorf("cannot unmarshal emitter of family [%s]: %s", env.Family, err)
	}

	h.ModelName = env.Name
	h.NS = env.NS
	h.LogInit = env.LogInit
	h.LogTrans = env.LogTrans
	h.InitPrior = env.InitPrior
	h.TransPrior = env.TransPrior
	h.Out = out
	return nil
}
