// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

// CovType selects the covariance structure of a gaussian emitter.
type CovType string

const (
	// CovDiag uses one variance per state and dimension. This is
	// the default.
	CovDiag CovType = "diag"

	// CovSpherical uses a single variance per state.
	CovSpherical CovType = "spherical"

	// CovTied uses one full covariance matrix shared by all states.
	CovTied CovType = "tied"

	// CovFull uses one full covariance matrix per state.
	CovFull CovType = "full"
)

// emitterOpts collects the hyperparameters shared by the emitter
// constructors. Zero values select the defaults.
type emitterOpts struct {
	emitPrior float64
	ratesVar  float64
	meansVar  float64
	cov       CovType
}

// EOption type is used to pass options to the emitter constructors.
type EOption func(*emitterOpts)

func defaultEmitterOpts(options []EOption) emitterOpts {

	o := emitterOpts{emitPrior: 1, ratesVar: 1, meansVar: 1, cov: CovDiag}
	for _, option := range options {
		option(&o)
	}
	return o
}

// EmitPrior is an option to set the Dirichlet pseudocount used when
// re-estimating multinomial emission probabilities. Values <= 0 keep
// the default of 1 (maximum likelihood).
func EmitPrior(v float64) EOption {
	return func(o *emitterOpts) {
		if v > 0 {
			o.emitPrior = v
		}
	}
}

// RatesVar is an option to set the relative spread used to randomize
// initial rates (poisson, exponential). Values <= 0 keep the default
// of 1.
func RatesVar(v float64) EOption {
	return func(o *emitterOpts) {
		if v > 0 {
			o.ratesVar = v
		}
	}
}

// MeansVar is an option to set the spread, in standard deviations of
// the data, used to randomize initial gaussian means. Values <= 0
// keep the default of 1.
func MeansVar(v float64) EOption {
	return func(o *emitterOpts) {
		if v > 0 {
			o.meansVar = v
		}
	}
}

// Cov is an option to set the gaussian covariance structure.
func Cov(c CovType) EOption {
	return func(o *emitterOpts) {
		if c != "" {
			o.cov = c
		}
	}
}
