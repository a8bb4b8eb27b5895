// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/akualab/seqmix/floatx"
)

// Stats holds the sufficient statistics needed to re-estimate the
// parameters of one HMM. Start and Trans are always present; the
// remaining fields are allocated by the emitter that needs them.
// Stats records are transient: created for one estimation pass,
// consumed once by Maximize, then discarded.
type Stats struct {

	// Start accumulates state-occupation mass at t=0.
	Start []float64

	// Trans accumulates expected transition counts.
	Trans [][]float64

	// Post accumulates state-occupation mass over all timesteps
	// (poisson, exponential, gaussian).
	Post []float64

	// Obs accumulates posterior-weighted observations. Multinomial
	// uses [state][symbol] counts; the other families use
	// [state][dim] sums.
	Obs [][]float64

	// ObsSq accumulates posterior-weighted squared observations
	// (gaussian with spherical or diagonal covariance).
	ObsSq [][]float64

	// ObsObsT accumulates posterior-weighted outer products
	// (gaussian with tied or full covariance).
	ObsObsT []*mat.SymDense
}

// Zero resets all accumulated values in place.
func (st *Stats) Zero() {

	floatx.Clear(st.Start)
	floatx.Clear2D(st.Trans)
	if st.Post != nil {
		floatx.Clear(st.Post)
	}
	if st.Obs != nil {
		floatx.Clear2D(st.Obs)
	}
	if st.ObsSq != nil {
		floatx.Clear2D(st.ObsSq)
	}
	for _, m := range st.ObsObsT {
		m.Zero()
	}
}

// AddScaled folds src into st with weight w: st += w * src. The two
// records must have been allocated by HMMs with the same shape.
func (st *Stats) AddScaled(src *Stats, w float64) {

	floats.AddScaled(st.Start, w, src.Start)
	for i := range st.Trans {
		floats.AddScaled(st.Trans[i], w, src.Trans[i])
	}
	if st.Post != nil {
		floats.AddScaled(st.Post, w, src.Post)
	}
	for i := range st.Obs {
		floats.AddScaled(st.Obs[i], w, src.Obs[i])
	}
	for i := range st.ObsSq {
		floats.AddScaled(st.ObsSq[i], w, src.ObsSq[i])
	}
	for i, dst := range st.ObsObsT {
		d := dst.RawSymmetric().Data
		s := src.ObsObsT[i].RawSymmetric().Data
		floats.AddScaled(d, w, s)
	}
}
