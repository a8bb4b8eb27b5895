// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"encoding/json"
	"math"

	"github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/akualab/seqmix/floatx"
)

const (
	// minVariance keeps re-estimated variances away from zero.
	minVariance = 1e-3

	log2Pi = 1.8378770664093453
)

// GaussianEmitter emits a real-valued feature vector per timestep.
// The covariance structure is selected by CovKind: diag and spherical
// store variances directly, tied and full store covariance matrices.
type GaussianEmitter struct {

	// Number of hidden states.
	NStates int

	// Observation vector dimension.
	NDim int

	// Covariance structure.
	CovKind CovType

	// Per-state means, shape [NStates][NDim].
	Means [][]float64

	// Per-state variances. Diag uses [NStates][NDim], spherical
	// uses [NStates][1]. Nil for tied and full.
	Vars [][]float64

	// Covariance matrices. Tied uses a single shared matrix at
	// index 0, full uses one per state. Nil for diag and spherical.
	CovMats []*mat.SymDense

	// Spread, in data standard deviations, used to randomize
	// initial means.
	Spread float64
}

// NewGaussianEmitter creates a gaussian emitter for ns states and
// dim-dimensional observations. Parameters default to standard
// normals until initFromData or a maximization step runs.
func NewGaussianEmitter(ns, dim int, options ...EOption) *GaussianEmitter {

	if dim == 0 {
		dim = 1
	}
	o := defaultEmitterOpts(options)
	e := &GaussianEmitter{
		NStates: ns,
		NDim:    dim,
		CovKind: o.cov,
		Means:   floatx.MakeFloat2D(ns, dim),
		Spread:  o.meansVar,
	}
	switch e.CovKind {
	case CovSpherical:
		e.Vars = floatx.MakeFloat2D(ns, 1)
		for i := range e.Vars {
			e.Vars[i][0] = 1
		}
	case CovTied:
		e.CovMats = []*mat.SymDense{identitySym(dim)}
	case CovFull:
		e.CovMats = make([]*mat.SymDense, ns)
		for i := range e.CovMats {
			e.CovMats[i] = identitySym(dim)
		}
	default:
		e.CovKind = CovDiag
		e.Vars = floatx.MakeFloat2D(ns, dim)
		for i := range e.Vars {
			floatx.Apply(floatx.SetValueFunc(1.0), e.Vars[i], nil)
		}
	}
	return e
}

func identitySym(dim int) *mat.SymDense {

	m := mat.NewSymDense(dim, nil)
	for d := 0; d < dim; d++ {
		m.SetSym(d, d, 1)
	}
	return m
}

// Family returns the distribution family tag.
func (e *GaussianEmitter) Family() Family { return Gaussian }

// Dim is the dimensionality of one observation vector.
func (e *GaussianEmitter) Dim() int { return e.NDim }

// NumStates is the number of hidden states.
func (e *GaussianEmitter) NumStates() int { return e.NStates }

// stateCov returns the covariance matrix for state s (tied and full
// only).
func (e *GaussianEmitter) stateCov(s int) *mat.SymDense {

	if e.CovKind == CovTied {
		return e.CovMats[0]
	}
	return e.CovMats[s]
}

// stateVar returns the variance for state s and dimension d (diag and
// spherical only).
func (e *GaussianEmitter) stateVar(s, d int) float64 {

	if e.CovKind == CovSpherical {
		return e.Vars[s][0]
	}
	return e.Vars[s][d]
}

// LogProb returns the frame log-likelihood table for seq.
func (e *GaussianEmitter) LogProb(seq [][]float64) [][]float64 {

	T := len(seq)
	lp := floatx.MakeFloat2D(T, e.NStates)

	if e.CovKind == CovTied || e.CovKind == CovFull {
		for j := 0; j < e.NStates; j++ {
			n, ok := distmv.NewNormal(e.Means[j], e.stateCov(j), nil)
			if !ok {
				glog.Fatalf("covariance matrix for state [%d] is not positive definite", j)
			}
			for t := 0; t < T; t++ {
				lp[t][j] = n.LogProb(seq[t])
			}
		}
		return lp
	}

	for j := 0; j < e.NStates; j++ {
		for t := 0; t < T; t++ {
			var acc float64
			for d := 0; d < e.NDim; d++ {
				v := e.stateVar(j, d)
				diff := seq[t][d] - e.Means[j][d]
				acc += log2Pi + math.Log(v) + diff*diff/v
			}
			lp[t][j] = -0.5 * acc
		}
	}
	return lp
}

// Sample draws one observation vector from state s.
func (e *GaussianEmitter) Sample(s int, r *rand.Rand) []float64 {

	if e.CovKind == CovTied || e.CovKind == CovFull {
		n, ok := distmv.NewNormal(e.Means[s], e.stateCov(s), r)
		if !ok {
			glog.Fatalf("covariance matrix for state [%d] is not positive definite", s)
		}
		return n.Rand(nil)
	}
	v := make([]float64, e.NDim)
	for d := 0; d < e.NDim; d++ {
		v[d] = r.NormFloat64()*math.Sqrt(e.stateVar(s, d)) + e.Means[s][d]
	}
	return v
}

func (e *GaussianEmitter) initFromData(seqs [][][]float64, r *rand.Rand) {

	mean := make([]float64, e.NDim)
	sq := make([]float64, e.NDim)
	var n float64
	for _, seq := range seqs {
		for _, v := range seq {
			for d := 0; d < e.NDim; d++ {
				mean[d] += v[d]
				sq[d] += v[d] * v[d]
			}
			n++
		}
	}
	variance := make([]float64, e.NDim)
	for d := 0; d < e.NDim; d++ {
		mean[d] /= n
		variance[d] = math.Max(minVariance, sq[d]/n-mean[d]*mean[d])
	}

	// Means are jittered around the data mean to break symmetry
	// between states; variances start at the data variance.
	for j := 0; j < e.NStates; j++ {
		for d := 0; d < e.NDim; d++ {
			sd := math.Sqrt(variance[d])
			e.Means[j][d] = mean[d] + e.Spread*sd*r.NormFloat64()
		}
	}
	switch e.CovKind {
	case CovDiag:
		for j := 0; j < e.NStates; j++ {
			copy(e.Vars[j], variance)
		}
	case CovSpherical:
		var avg float64
		for d := 0; d < e.NDim; d++ {
			avg += variance[d]
		}
		avg /= float64(e.NDim)
		for j := 0; j < e.NStates; j++ {
			e.Vars[j][0] = avg
		}
	case CovTied:
		e.CovMats[0] = diagSym(variance)
	case CovFull:
		for j := 0; j < e.NStates; j++ {
			e.CovMats[j] = diagSym(variance)
		}
	}
}

func diagSym(variance []float64) *mat.SymDense {

	m := mat.NewSymDense(len(variance), nil)
	for d, v := range variance {
		m.SetSym(d, d, v)
	}
	return m
}

func (e *GaussianEmitter) allocStats(st *Stats) {

	st.Post = make([]float64, e.NStates)
	st.Obs = floatx.MakeFloat2D(e.NStates, e.NDim)
	switch e.CovKind {
	case CovDiag, CovSpherical:
		st.ObsSq = floatx.MakeFloat2D(e.NStates, e.NDim)
	default:
		st.ObsObsT = make([]*mat.SymDense, e.NStates)
		for j := range st.ObsObsT {
			st.ObsObsT[j] = mat.NewSymDense(e.NDim, nil)
		}
	}
}

func (e *GaussianEmitter) accumulate(st *Stats, seq [][]float64, posteriors [][]float64) {

	outer := st.ObsObsT != nil
	for t, v := range seq {
		var vec *mat.VecDense
		if outer {
			vec = mat.NewVecDense(e.NDim, v)
		}
		for j := 0; j < e.NStates; j++ {
			w := posteriors[t][j]
			st.Post[j] += w
			for d := 0; d < e.NDim; d++ {
				st.Obs[j][d] += w * v[d]
				if st.ObsSq != nil {
					st.ObsSq[j][d] += w * v[d] * v[d]
				}
			}
			if outer {
				st.ObsObsT[j].SymRankOne(st.ObsObsT[j], w, vec)
			}
		}
	}
}

func (e *GaussianEmitter) maximize(st *Stats) {

	for j := 0; j < e.NStates; j++ {
		if st.Post[j] <= 0 {
			continue
		}
		for d := 0; d < e.NDim; d++ {
			e.Means[j][d] = st.Obs[j][d] / st.Post[j]
		}
	}

	switch e.CovKind {

	case CovDiag:
		for j := 0; j < e.NStates; j++ {
			if st.Post[j] <= 0 {
				continue
			}
			for d := 0; d < e.NDim; d++ {
				v := st.ObsSq[j][d]/st.Post[j] - e.Means[j][d]*e.Means[j][d]
				e.Vars[j][d] = math.Max(minVariance, v)
			}
		}

	case CovSpherical:
		for j := 0; j < e.NStates; j++ {
			if st.Post[j] <= 0 {
				continue
			}
			var avg float64
			for d := 0; d < e.NDim; d++ {
				avg += st.ObsSq[j][d]/st.Post[j] - e.Means[j][d]*e.Means[j][d]
			}
			e.Vars[j][0] = math.Max(minVariance, avg/float64(e.NDim))
		}

	case CovFull:
		for j := 0; j < e.NStates; j++ {
			if st.Post[j] <= 0 {
				continue
			}
			c := mat.NewSymDense(e.NDim, nil)
			c.ScaleSym(1.0/st.Post[j], st.ObsObsT[j])
			c.SymRankOne(c, -1, mat.NewVecDense(e.NDim, e.Means[j]))
			floorDiag(c, minVariance)
			e.CovMats[j] = c
		}

	case CovTied:
		var total float64
		c := mat.NewSymDense(e.NDim, nil)
		for j := 0; j < e.NStates; j++ {
			total += st.Post[j]
			c.AddSym(c, st.ObsObsT[j])
			c.SymRankOne(c, -st.Post[j], mat.NewVecDense(e.NDim, e.Means[j]))
		}
		if total <= 0 {
			return
		}
		c.ScaleSym(1.0/total, c)
		floorDiag(c, minVariance)
		e.CovMats = []*mat.SymDense{c}
	}
}

func floorDiag(c *mat.SymDense, floor float64) {

	n, _ := c.Dims()
	for d := 0; d < n; d++ {
		if c.At(d, d) < floor {
			c.SetSym(d, d, floor)
		}
	}
}

// gaussianJSON is the serialization envelope. Covariance matrices are
// stored as raw symmetric data.
type gaussianJSON struct {
	NStates int         `json:"num_states"`
	NDim    int         `json:"dim"`
	CovKind CovType     `json:"cov"`
	Means   [][]float64 `json:"means"`
	Vars    [][]float64 `json:"vars,omitempty"`
	CovMats [][]float64 `json:"cov_mats,omitempty"`
	Spread  float64     `json:"spread,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface.
func (e *GaussianEmitter) MarshalJSON() ([]byte, error) {

	env := gaussianJSON{
		NStates: e.NStates,
		NDim:    e.NDim,
		CovKind: e.CovKind,
		Means:   e.Means,
		Vars:    e.Vars,
		Spread:  e.Spread,
	}
	for _, m := range e.CovMats {
		data := m.RawSymmetric().Data
		cp := make([]float64, len(data))
		copy(cp, data)
		env.CovMats = append(env.CovMats, cp)
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (e *GaussianEmitter) UnmarshalJSON(b []byte) error {

	var env gaussianJSON
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	e.NStates = env.NStates
	e.NDim = env.NDim
	e.CovKind = env.CovKind
	e.Means = env.Means
	e.Vars = env.Vars
	e.Spread = env.Spread
	e.CovMats = nil
	for _, data := range env.CovMats {
		e.CovMats = append(e.CovMats, mat.NewSymDense(e.NDim, data))
	}
	return nil
}
