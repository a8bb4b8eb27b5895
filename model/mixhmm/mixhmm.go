// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package mixhmm implements a mixture of hidden Markov models trained
with a nested expectation-maximization procedure.

Each training sequence is assumed to be generated by exactly one of K
component HMMs, chosen with mixture weight w_k. The outer E-step
computes per-sequence component responsibilities from the component
log-likelihoods, the inner E-step runs forward-backward within each
component, and the M-step re-estimates weights, chains and emission
parameters from responsibility-weighted sufficient statistics.
*/
package mixhmm

import (
	"fmt"
	"io"
	"math"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/akualab/seqmix/floatx"
	"github.com/akualab/seqmix/model"
	"github.com/akualab/seqmix/model/hmm"
)

const (
	// weightFloor keeps mixture weights away from exact zero so no
	// component is lost permanently.
	weightFloor = 1e-20

	// weightSumTol is the tolerance when validating user weights.
	weightSumTol = 1e-8

	defaultMaxIter = 10
	defaultTol     = 1e-2
)

// Model is a mixture of hidden Markov models. All components share the
// same number of states and the same emission family.
type Model struct {

	// Model name.
	ModelName string `json:"name,omitempty"`

	// Number of mixture components.
	NC int `json:"num_components"`

	// Number of hidden states per component.
	NS int `json:"num_states"`

	// Emission configuration shared by all components.
	Config hmm.EmitterConfig `json:"config"`

	// Mixture weights in the log domain.
	LogWeights []float64 `json:"log_weights"`

	// Dirichlet pseudocounts for the weight M-step. Nil means
	// uniform (all ones, maximum likelihood).
	WeightsPrior []float64 `json:"weights_prior,omitempty"`

	// Component HMMs.
	Comps []*hmm.HMM `json:"components"`

	// Per-iteration log likelihood of the most recent Fit call.
	Trail []float64 `json:"-"`

	maxIter      int
	tol          float64
	initParams   model.ParamSet
	updateParams model.ParamSet
	seed         uint64
	verbose      int
	verboseOut   io.Writer
}

// Option type is used to pass options to NewModel().
type Option func(*Model)

// NewModel creates a mixture of numComponents HMMs with numStates
// states each and emissions built from cfg.
func NewModel(numComponents, numStates int, cfg hmm.EmitterConfig, options ...Option) *Model {

	m := &Model{
		ModelName:    "MixHMM",
		NC:           numComponents,
		NS:           numStates,
		Config:       cfg,
		maxIter:      defaultMaxIter,
		tol:          defaultTol,
		initParams:   model.AllParams,
		updateParams: model.AllParams,
		seed:         model.DefaultSeed,
	}
	for _, option := range options {
		option(m)
	}

	if m.LogWeights == nil {
		m.LogWeights = make([]float64, numComponents)
		floatx.Apply(floatx.SetValueFunc(-math.Log(float64(numComponents))), m.LogWeights, nil)
	}
	if m.Comps == nil {
		m.Comps = make([]*hmm.HMM, numComponents)
		for c := range m.Comps {
			m.Comps[c] = hmm.New(numStates, hmm.NewEmitter(numStates, cfg),
				hmm.Name(fmt.Sprintf("%s-%d", m.ModelName, c)))
		}
	}
	return m
}

// Name returns the name of the model.
func (m *Model) Name() string { return m.ModelName }

// Name is an option to set the model name.
func Name(name string) Option {
	return func(m *Model) { m.ModelName = name }
}

// MaxIter is an option to set the maximum number of EM iterations.
func MaxIter(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxIter = n
		}
	}
}

// Tol is an option to set the convergence threshold on the gain in
// log likelihood between iterations.
func Tol(v float64) Option {
	return func(m *Model) {
		if v > 0 {
			m.tol = v
		}
	}
}

// InitParams is an option to select which parameter groups Fit
// initializes from data before training. Use model.NoParams for a
// warm restart from caller-supplied parameters.
func InitParams(p model.ParamSet) Option {
	return func(m *Model) { m.initParams = p }
}

// UpdateParams is an option to select which parameter groups the
// M-step re-estimates.
func UpdateParams(p model.ParamSet) Option {
	return func(m *Model) { m.updateParams = p }
}

// Seed is an option to set the random seed used for initialization.
func Seed(seed uint64) Option {
	return func(m *Model) { m.seed = seed }
}

// Verbose is an option to set the progress reporting level (0 silent,
// 1 logarithmic schedule, 2 every iteration).
func Verbose(level int, w io.Writer) Option {
	return func(m *Model) {
		m.verbose = level
		m.verboseOut = w
	}
}

// Components is an option to supply pre-built component HMMs, e.g.
// for a warm restart. The slice length must match the number of
// components.
func Components(comps []*hmm.HMM) Option {
	return func(m *Model) { m.Comps = comps }
}

// Prior is an option to set the Dirichlet pseudocounts for the
// mixture weight M-step.
func Prior(alpha []float64) Option {
	return func(m *Model) { m.WeightsPrior = alpha }
}

// Weights returns a copy of the mixture weights in the linear domain.
func (m *Model) Weights() []float64 {

	w := make([]float64, m.NC)
	floatx.Apply(floatx.Exp, m.LogWeights, w)
	return w
}

// SetWeights replaces the mixture weights. A nil argument draws
// weights from a uniform Dirichlet using r (or the model seed when r
// is nil). Weights containing zeros are floored and renormalized;
// otherwise they must sum to one.
func (m *Model) SetWeights(w []float64, r *rand.Rand) error {

	if w == nil {
		if r == nil {
			r = rand.New(rand.NewSource(m.seed))
		}
		alpha := m.WeightsPrior
		if alpha == nil {
			alpha = make([]float64, m.NC)
			floatx.Apply(floatx.SetValueFunc(1.0), alpha, nil)
		}
		w = model.RandDirichlet(alpha, r)
	}
	if len(w) != m.NC {
		return fmt.Errorf("mixhmm: got [%d] weights, expected [%d]", len(w), m.NC)
	}
	hasZero := false
	for _, v := range w {
		if v < 0 {
			return fmt.Errorf("mixhmm: weight [%v] is negative", v)
		}
		if v < weightFloor {
			hasZero = true
		}
	}
	cp := make([]float64, m.NC)
	copy(cp, w)
	if hasZero {
		floatx.Apply(floatx.Floor(weightFloor), cp, nil)
		floatx.Normalize(cp)
	} else if s := floats.Sum(cp); math.Abs(s-1) > weightSumTol {
		return fmt.Errorf("mixhmm: weights sum to [%v], expected 1", s)
	}
	floatx.Apply(floatx.Log, cp, m.LogWeights)
	return nil
}

// Fit trains the mixture on seqs with nested EM. Training stops when
// the log likelihood gain falls below the tolerance or after the
// maximum number of iterations.
func (m *Model) Fit(seqs [][][]float64) error {

	if len(seqs) == 0 {
		return hmm.ErrEmpty
	}
	if err := m.Config.Validate(seqs); err != nil {
		return err
	}

	r := rand.New(rand.NewSource(m.seed))
	if m.initParams.Has(model.ParamWeights) {
		if err := m.SetWeights(nil, r); err != nil {
			return err
		}
	}
	if m.initParams.Has(model.ParamEmissions) {
		for _, h := range m.Comps {
			h.Init(seqs, r)
		}
	}

	rp := newReporter(m.verbose, m.verboseOut)
	outer := newStats(m.Comps)
	seqStats := make([]*hmm.Stats, m.NC)
	for c, h := range m.Comps {
		seqStats[c] = h.NewStats()
	}

	m.Trail = m.Trail[:0]
	prev := math.Inf(-1)
	logJoint := make([]float64, m.NC)

	for iter := 0; iter < m.maxIter; iter++ {

		outer.zero()
		var curLogProb float64

		for _, seq := range seqs {
			for c, h := range m.Comps {
				seqStats[c].Zero()
				b := h.FrameLogProb(seq)
				lp, fwd := h.ForwardPass(b)
				bwd := h.BackwardPass(b)
				gamma := h.Posteriors(fwd, bwd)
				h.AccumulateStats(seqStats[c], seq, b, fwd, bwd, gamma, m.updateParams)
				logJoint[c] = lp + m.LogWeights[c]
			}
			curLogProb += floatx.LogNormalize(logJoint)
			floatx.Apply(floatx.Exp, logJoint, nil)
			outer.fold(seqStats, logJoint)
		}

		m.Trail = append(m.Trail, curLogProb)
		rp.report(iter, curLogProb)
		glog.V(2).Infof("mixhmm [%s] iter %d log prob %f", m.ModelName, iter, curLogProb)

		if iter > 0 {
			delta := curLogProb - prev
			if delta < 0 {
				glog.Warningf("mixhmm [%s] log prob decreased by %f at iter %d",
					m.ModelName, -delta, iter)
			}
			if math.Abs(delta) < m.tol {
				rp.converged(iter, curLogProb)
				glog.V(1).Infof("mixhmm [%s] converged at iter %d", m.ModelName, iter)
				return nil
			}
		}
		prev = curLogProb

		m.maximize(outer)
	}

	glog.Warningf("mixhmm [%s] did not converge after %d iterations", m.ModelName, m.maxIter)
	return nil
}

// maximize re-estimates the selected parameter groups from the folded
// statistics. The weight update is a Dirichlet MAP estimate floored
// away from zero.
func (m *Model) maximize(outer *stats) {

	if m.updateParams.Has(model.ParamWeights) {
		w := make([]float64, m.NC)
		for c := range w {
			prior := 1.0
			if m.WeightsPrior != nil {
				prior = m.WeightsPrior[c]
			}
			w[c] = prior - 1.0 + outer.weights[c]
		}
		floatx.Apply(floatx.Floor(weightFloor), w, nil)
		floatx.Normalize(w)
		floatx.Apply(floatx.Log, w, m.LogWeights)
	}
	for c, h := range m.Comps {
		h.Maximize(outer.comps[c], m.updateParams)
	}
}

// ScoreSample returns the log likelihood of one sequence under the
// mixture and the per-component log responsibilities.
func (m *Model) ScoreSample(seq [][]float64) (float64, []float64) {

	logResp := make([]float64, m.NC)
	for c, h := range m.Comps {
		logResp[c] = h.LogProb(seq) + m.LogWeights[c]
	}
	lp := floatx.LogNormalize(logResp)
	return lp, logResp
}

// ScoreSamples returns the per-sequence log likelihoods and the
// responsibility matrix (linear domain, rows sum to one).
func (m *Model) ScoreSamples(seqs [][][]float64) ([]float64, [][]float64) {

	lps := make([]float64, len(seqs))
	resp := make([][]float64, len(seqs))
	for i, seq := range seqs {
		lp, lr := m.ScoreSample(seq)
		lps[i] = lp
		floatx.Apply(floatx.Exp, lr, nil)
		resp[i] = lr
	}
	return lps, resp
}

// Score returns the log likelihood of each sequence under the mixture.
func (m *Model) Score(seqs [][][]float64) []float64 {

	lps, _ := m.ScoreSamples(seqs)
	return lps
}

// TotalLogProb returns the log likelihood of the whole dataset.
func (m *Model) TotalLogProb(seqs [][][]float64) float64 {

	return floats.Sum(m.Score(seqs))
}

// PredictProba returns the per-sequence component responsibilities in
// the linear domain.
func (m *Model) PredictProba(seqs [][][]float64) [][]float64 {

	_, resp := m.ScoreSamples(seqs)
	return resp
}

// Predict returns the most responsible component for each sequence.
func (m *Model) Predict(seqs [][][]float64) []int {

	_, resp := m.ScoreSamples(seqs)
	out := make([]int, len(seqs))
	for i, row := range resp {
		out[i] = floats.MaxIdx(row)
	}
	return out
}

// Decode assigns seq to its most responsible component and returns
// that component's index, its Viterbi state path and the path's joint
// log likelihood.
func (m *Model) Decode(seq [][]float64) (int, []int, float64) {

	_, logResp := m.ScoreSample(seq)
	c := floats.MaxIdx(logResp)
	path, lp := m.Comps[c].Viterbi(seq)
	return c, path, lp
}

// Sample generates nSeqs observation sequences with lengths drawn
// uniformly from [minLen, maxLen]. It returns the component that
// generated each sequence, the sequences and the hidden state paths.
func (m *Model) Sample(nSeqs, minLen, maxLen int, r *rand.Rand) ([]int, [][][]float64, [][]int) {

	if r == nil {
		r = rand.New(rand.NewSource(m.seed))
	}
	w := m.Weights()
	seqs := make([][][]float64, nSeqs)
	comps := make([]int, nSeqs)
	states := make([][]int, nSeqs)
	for i := 0; i < nSeqs; i++ {
		c, err := model.RandIntFromDist(w, r)
		if err != nil {
			glog.Fatalf("failed to sample component: %s", err)
		}
		length := minLen
		if maxLen > minLen {
			length += r.Intn(maxLen - minLen + 1)
		}
		seqs[i], states[i] = m.Comps[c].Sample(length, r)
		comps[i] = c
	}
	return comps, seqs, states
}
