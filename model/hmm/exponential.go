// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/akualab/seqmix/floatx"
)

// ExponentialEmitter emits a non-negative real per timestep with one
// rate per state.
type ExponentialEmitter struct {

	// Number of hidden states.
	NStates int `json:"num_states"`

	// Per-state rates (inverse means).
	Rates []float64 `json:"rates,omitempty"`

	// Relative spread used to randomize initial rates.
	Spread float64 `json:"spread,omitempty"`
}

// NewExponentialEmitter creates an exponential emitter for ns states.
// Rates default to one until initFromData or a maximization step runs.
func NewExponentialEmitter(ns int, options ...EOption) *ExponentialEmitter {

	o := defaultEmitterOpts(options)
	e := &ExponentialEmitter{
		NStates: ns,
		Rates:   make([]float64, ns),
		Spread:  o.ratesVar,
	}
	floatx.Apply(floatx.SetValueFunc(1.0), e.Rates, nil)
	return e
}

// Family returns the distribution family tag.
func (e *ExponentialEmitter) Family() Family { return Exponential }

// Dim is the dimensionality of one observation vector.
func (e *ExponentialEmitter) Dim() int { return 1 }

// NumStates is the number of hidden states.
func (e *ExponentialEmitter) NumStates() int { return e.NStates }

// LogProb returns the frame log-likelihood table for seq:
//
//	log(lambda) - lambda*x
func (e *ExponentialEmitter) LogProb(seq [][]float64) [][]float64 {

	T := len(seq)
	lp := floatx.MakeFloat2D(T, e.NStates)
	for t := 0; t < T; t++ {
		x := seq[t][0]
		for j := 0; j < e.NStates; j++ {
			lp[t][j] = math.Log(e.Rates[j]) - e.Rates[j]*x
		}
	}
	return lp
}

// Sample draws one observation from state s.
func (e *ExponentialEmitter) Sample(s int, r *rand.Rand) []float64 {

	d := distuv.Exponential{Rate: e.Rates[s], Src: r}
	return []float64{d.Rand()}
}

func (e *ExponentialEmitter) initFromData(seqs [][][]float64, r *rand.Rand) {

	mean := scalarMean(seqs)
	if mean < minRate {
		mean = minRate
	}
	for i := range e.Rates {
		f := 1.0 + e.Spread*(r.Float64()-0.5)
		e.Rates[i] = math.Max(minRate, f/mean)
	}
}

func (e *ExponentialEmitter) allocStats(st *Stats) {

	st.Post = make([]float64, e.NStates)
	st.Obs = floatx.MakeFloat2D(e.NStates, 1)
}

func (e *ExponentialEmitter) accumulate(st *Stats, seq [][]float64, posteriors [][]float64) {

	accumulateScalar(st, seq, posteriors, e.NStates)
}

func (e *ExponentialEmitter) maximize(st *Stats) {

	for j := 0; j < e.NStates; j++ {
		if st.Post[j] <= 0 || st.Obs[j][0] <= 0 {
			continue
		}
		e.Rates[j] = math.Max(minRate, st.Post[j]/st.Obs[j][0])
	}
}
