// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"math"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"

	"github.com/akualab/seqmix/floatx"
	"github.com/akualab/seqmix/model"
)

// MultinomialEmitter emits one symbol from a finite alphabet per
// timestep. Observations are scalar vectors holding the symbol index.
type MultinomialEmitter struct {

	// Number of hidden states.
	NStates int `json:"num_states"`

	// Alphabet size. May be zero until initFromData discovers it.
	NSymbols int `json:"num_symbols"`

	// Per-state emission probabilities in the log domain, shape
	// [NStates][NSymbols].
	LogEmit [][]float64 `json:"log_emit,omitempty"`

	// Dirichlet pseudocount for the maximization step.
	Prior float64 `json:"prior,omitempty"`
}

// NewMultinomialEmitter creates a multinomial emitter for ns states
// and an alphabet of nsymbols symbols. With nsymbols zero the alphabet
// size is discovered from data during initialization.
func NewMultinomialEmitter(ns, nsymbols int, options ...EOption) *MultinomialEmitter {

	o := defaultEmitterOpts(options)
	e := &MultinomialEmitter{
		NStates:  ns,
		NSymbols: nsymbols,
		Prior:    o.emitPrior,
	}
	if nsymbols > 0 {
		e.LogEmit = floatx.MakeFloat2D(ns, nsymbols)
		lp := -math.Log(float64(nsymbols))
		for i := range e.LogEmit {
			floatx.Apply(floatx.SetValueFunc(lp), e.LogEmit[i], nil)
		}
	}
	return e
}

// Family returns the distribution family tag.
func (e *MultinomialEmitter) Family() Family { return Multinomial }

// Dim is the dimensionality of one observation vector.
func (e *MultinomialEmitter) Dim() int { return 1 }

// NumStates is the number of hidden states.
func (e *MultinomialEmitter) NumStates() int { return e.NStates }

// LogProb returns the frame log-likelihood table for seq. Symbols
// outside the alphabet get -Inf.
func (e *MultinomialEmitter) LogProb(seq [][]float64) [][]float64 {

	T := len(seq)
	lp := floatx.MakeFloat2D(T, e.NStates)
	for t := 0; t < T; t++ {
		s := int(seq[t][0])
		for j := 0; j < e.NStates; j++ {
			if s < 0 || s >= e.NSymbols {
				lp[t][j] = math.Inf(-1)
				continue
			}
			lp[t][j] = e.LogEmit[j][s]
		}
	}
	return lp
}

// Sample draws one symbol from state s.
func (e *MultinomialEmitter) Sample(s int, r *rand.Rand) []float64 {

	p := make([]float64, e.NSymbols)
	floatx.Apply(floatx.Exp, e.LogEmit[s], p)
	k, err := model.RandIntFromDist(p, r)
	if err != nil {
		glog.Fatalf("failed to sample symbol: %s", err)
	}
	return []float64{float64(k)}
}

func (e *MultinomialEmitter) initFromData(seqs [][][]float64, r *rand.Rand) {

	max := 0
	for _, seq := range seqs {
		for _, v := range seq {
			if s := int(v[0]); s > max {
				max = s
			}
		}
	}
	if n := max + 1; n > e.NSymbols {
		e.NSymbols = n
	}

	// Random emission rows break symmetry between states.
	alpha := make([]float64, e.NSymbols)
	floatx.Apply(floatx.SetValueFunc(1.0), alpha, nil)
	e.LogEmit = floatx.MakeFloat2D(e.NStates, e.NSymbols)
	for i := 0; i < e.NStates; i++ {
		row := model.RandDirichlet(alpha, r)
		floatx.Apply(floatx.Log, row, e.LogEmit[i])
	}
}

func (e *MultinomialEmitter) allocStats(st *Stats) {

	st.Obs = floatx.MakeFloat2D(e.NStates, e.NSymbols)
}

func (e *MultinomialEmitter) accumulate(st *Stats, seq [][]float64, posteriors [][]float64) {

	for t, v := range seq {
		s := int(v[0])
		for j := 0; j < e.NStates; j++ {
			st.Obs[j][s] += posteriors[t][j]
		}
	}
}

func (e *MultinomialEmitter) maximize(st *Stats) {

	row := make([]float64, e.NSymbols)
	for j := 0; j < e.NStates; j++ {
		for s := 0; s < e.NSymbols; s++ {
			row[s] = e.Prior - 1.0 + st.Obs[j][s]
		}
		floatx.Apply(floatx.Floor(paramFloor), row, nil)
		floatx.Normalize(row)
		floatx.Apply(floatx.Log, row, e.LogEmit[j])
	}
}
