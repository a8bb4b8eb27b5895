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

// minRate keeps poisson and exponential rates strictly positive.
const minRate = 1e-8

// PoissonEmitter emits a non-negative count per timestep with one
// rate per state.
type PoissonEmitter struct {

	// Number of hidden states.
	NStates int `json:"num_states"`

	// Per-state rates (lambda).
	Rates []float64 `json:"rates,omitempty"`

	// Relative spread used to randomize initial rates.
	Spread float64 `json:"spread,omitempty"`
}

// NewPoissonEmitter creates a poisson emitter for ns states. Rates
// default to one until initFromData or a maximization step runs.
func NewPoissonEmitter(ns int, options ...EOption) *PoissonEmitter {

	o := defaultEmitterOpts(options)
	e := &PoissonEmitter{
		NStates: ns,
		Rates:   make([]float64, ns),
		Spread:  o.ratesVar,
	}
	floatx.Apply(floatx.SetValueFunc(1.0), e.Rates, nil)
	return e
}

// Family returns the distribution family tag.
func (e *PoissonEmitter) Family() Family { return Poisson }

// Dim is the dimensionality of one observation vector.
func (e *PoissonEmitter) Dim() int { return 1 }

// NumStates is the number of hidden states.
func (e *PoissonEmitter) NumStates() int { return e.NStates }

// LogProb returns the frame log-likelihood table for seq:
//
//	x*log(lambda) - lambda - log(x!)
func (e *PoissonEmitter) LogProb(seq [][]float64) [][]float64 {

	T := len(seq)
	lp := floatx.MakeFloat2D(T, e.NStates)
	for t := 0; t < T; t++ {
		x := seq[t][0]
		lg, _ := math.Lgamma(x + 1)
		for j := 0; j < e.NStates; j++ {
			lp[t][j] = x*math.Log(e.Rates[j]) - e.Rates[j] - lg
		}
	}
	return lp
}

// Sample draws one count from state s.
func (e *PoissonEmitter) Sample(s int, r *rand.Rand) []float64 {

	d := distuv.Poisson{Lambda: e.Rates[s], Src: r}
	return []float64{d.Rand()}
}

func (e *PoissonEmitter) initFromData(seqs [][][]float64, r *rand.Rand) {

	mean := scalarMean(seqs)
	for i := range e.Rates {
		f := 1.0 + e.Spread*(r.Float64()-0.5)
		e.Rates[i] = math.Max(minRate, mean*f)
	}
}

func (e *PoissonEmitter) allocStats(st *Stats) {

	st.Post = make([]float64, e.NStates)
	st.Obs = floatx.MakeFloat2D(e.NStates, 1)
}

func (e *PoissonEmitter) accumulate(st *Stats, seq [][]float64, posteriors [][]float64) {

	accumulateScalar(st, seq, posteriors, e.NStates)
}

func (e *PoissonEmitter) maximize(st *Stats) {

	for j := 0; j < e.NStates; j++ {
		if st.Post[j] <= 0 {
			continue
		}
		e.Rates[j] = math.Max(minRate, st.Obs[j][0]/st.Post[j])
	}
}

// scalarMean returns the mean of a scalar dataset.
func scalarMean(seqs [][][]float64) float64 {

	var sum float64
	var n int
	for _, seq := range seqs {
		for _, v := range seq {
			sum += v[0]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// accumulateScalar adds posterior-weighted occupation and observation
// sums for the scalar families.
func accumulateScalar(st *Stats, seq [][]float64, posteriors [][]float64, ns int) {

	for t, v := range seq {
		for j := 0; j < ns; j++ {
			st.Post[j] += posteriors[t][j]
			st.Obs[j][0] += posteriors[t][j] * v[0]
		}
	}
}
