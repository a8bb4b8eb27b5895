// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mixhmm

import (
	"github.com/akualab/seqmix/floatx"
	"github.com/akualab/seqmix/model/hmm"
)

// stats accumulates one estimation pass over the whole dataset.
// Component statistics are folded in weighted by the responsibility
// of the component for each sequence.
type stats struct {

	// weights accumulates responsibility mass per component.
	weights []float64

	// comps holds the folded per-component HMM statistics.
	comps []*hmm.Stats
}

func newStats(comps []*hmm.HMM) *stats {

	st := &stats{
		weights: make([]float64, len(comps)),
		comps:   make([]*hmm.Stats, len(comps)),
	}
	for c, h := range comps {
		st.comps[c] = h.NewStats()
	}
	return st
}

func (st *stats) zero() {

	floatx.Clear(st.weights)
	for _, cs := range st.comps {
		cs.Zero()
	}
}

// fold adds the per-sequence component statistics weighted by the
// responsibilities resp (linear domain, sums to one).
func (st *stats) fold(seqStats []*hmm.Stats, resp []float64) {

	for c := range st.comps {
		st.weights[c] += resp[c]
		st.comps[c].AddScaled(seqStats[c], resp[c])
	}
}
