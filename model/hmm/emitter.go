// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Family identifies the emission distribution of an HMM.
type Family int

const (
	// Multinomial emits one of a finite set of symbols per timestep.
	Multinomial Family = iota

	// Poisson emits a non-negative count per timestep.
	Poisson

	// Exponential emits a non-negative real per timestep.
	Exponential

	// Gaussian emits a real-valued feature vector per timestep.
	Gaussian
)

// String returns the family name used in config files and JSON.
func (f Family) String() string {

	switch f {
	case Multinomial:
		return "multinomial"
	case Poisson:
		return "poisson"
	case Exponential:
		return "exponential"
	case Gaussian:
		return "gaussian"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// ParseFamily converts a family name to its Family value.
func ParseFamily(name string) (Family, error) {

	switch name {
	case "multinomial":
		return Multinomial, nil
	case "poisson":
		return Poisson, nil
	case "exponential":
		return Exponential, nil
	case "gaussian":
		return Gaussian, nil
	}
	return 0, fmt.Errorf("unknown emission family [%s]", name)
}

// MarshalJSON implements the json.Marshaler interface. Families are
// serialized by name.
func (f Family) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *Family) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, err := ParseFamily(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (f Family) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (f *Family) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	v, err := ParseFamily(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Error kinds reported by dataset validation. Each family has one kind
// so callers can match the failure.
type Error string

func (err Error) Error() string { return string(err) }

const (
	// ErrSymbols is reported when a multinomial dataset contains
	// values that are not non-negative contiguous integers.
	ErrSymbols = Error("hmm: multinomial symbols must be non-negative contiguous integers")

	// ErrCounts is reported when a Poisson dataset contains values
	// that are not non-negative integers.
	ErrCounts = Error("hmm: poisson observations must be non-negative integers")

	// ErrNegative is reported when an exponential dataset contains
	// negative values.
	ErrNegative = Error("hmm: exponential observations must be non-negative")

	// ErrDim is reported when observation vectors do not match the
	// configured dimension.
	ErrDim = Error("hmm: observation dimension mismatch")

	// ErrEmpty is reported for datasets with no observations.
	ErrEmpty = Error("hmm: dataset has no observations")
)

// An Emitter is the emission distribution of one HMM. The set of
// implementations is closed: Multinomial, Poisson, Exponential and
// Gaussian emitters live in this package and share the Stats record.
type Emitter interface {

	// Family returns the distribution family tag.
	Family() Family

	// Dim is the dimensionality of one observation vector.
	Dim() int

	// NumStates is the number of hidden states.
	NumStates() int

	// LogProb returns the frame log-likelihood table for seq with
	// shape [len(seq)][NumStates()]. Zero probability is -Inf.
	LogProb(seq [][]float64) [][]float64

	// Sample draws one observation vector from state s.
	Sample(s int, r *rand.Rand) []float64

	initFromData(seqs [][][]float64, r *rand.Rand)
	allocStats(st *Stats)
	accumulate(st *Stats, seq [][]float64, posteriors [][]float64)
	maximize(st *Stats)
}

// EmitterConfig collects the family selection and family-specific
// hyperparameters needed to build emitters and validate datasets.
type EmitterConfig struct {

	// Family selects the emission distribution.
	Family Family `json:"family" yaml:"family"`

	// Dim is the observation vector dimension (gaussian only,
	// the discrete families are scalar).
	Dim int `json:"dim,omitempty" yaml:"dim,omitempty"`

	// Cov selects the gaussian covariance structure.
	Cov CovType `json:"cov,omitempty" yaml:"cov,omitempty"`

	// EmitPrior is the Dirichlet pseudocount for multinomial
	// emission probabilities. Zero means uniform (1.0).
	EmitPrior float64 `json:"emit_prior,omitempty" yaml:"emit_prior,omitempty"`

	// RatesVar is the spread used to randomize initial rates
	// (poisson, exponential). Zero means 1.0.
	RatesVar float64 `json:"rates_var,omitempty" yaml:"rates_var,omitempty"`

	// MeansVar is the spread used to randomize initial means
	// (gaussian). Zero means 1.0.
	MeansVar float64 `json:"means_var,omitempty" yaml:"means_var,omitempty"`
}

// NewEmitter builds a fresh emitter with ns states. Parameters are
// placeholders until initFromData or a maximization step runs.
func NewEmitter(ns int, cfg EmitterConfig) Emitter {

	switch cfg.Family {
	case Multinomial:
		return NewMultinomialEmitter(ns, 0, EmitPrior(cfg.EmitPrior))
	case Poisson:
		return NewPoissonEmitter(ns, RatesVar(cfg.RatesVar))
	case Exponential:
		return NewExponentialEmitter(ns, RatesVar(cfg.RatesVar))
	case Gaussian:
		return NewGaussianEmitter(ns, cfg.Dim, Cov(cfg.Cov), MeansVar(cfg.MeansVar))
	}
	panic(fmt.Sprintf("unknown emission family [%d]", cfg.Family))
}

// Validate checks dataset preconditions for the configured family.
// It must pass before any estimation runs.
func (cfg EmitterConfig) Validate(seqs [][][]float64) error {

	var n int
	for _, seq := range seqs {
		n += len(seq)
	}
	if n == 0 {
		return ErrEmpty
	}

	switch cfg.Family {

	case Multinomial:
		// Symbols must be non-negative contiguous integers
		// across the whole dataset.
		var max int
		seen := make(map[int]bool)
		for _, seq := range seqs {
			for _, v := range seq {
				if len(v) != 1 {
					return ErrDim
				}
				x := v[0]
				if x < 0 || x != math.Trunc(x) {
					return fmt.Errorf("%w: got [%v]", ErrSymbols, x)
				}
				s := int(x)
				seen[s] = true
				if s > max {
					max = s
				}
			}
		}
		for s := 0; s <= max; s++ {
			if !seen[s] {
				return fmt.Errorf("%w: symbol [%d] missing", ErrSymbols, s)
			}
		}

	case Poisson:
		for _, seq := range seqs {
			for _, v := range seq {
				if len(v) != 1 {
					return ErrDim
				}
				if v[0] < 0 || v[0] != math.Trunc(v[0]) {
					return fmt.Errorf("%w: got [%v]", ErrCounts, v[0])
				}
			}
		}

	case Exponential:
		for _, seq := range seqs {
			for _, v := range seq {
				if len(v) != 1 {
					return ErrDim
				}
				if v[0] < 0 {
					return fmt.Errorf("%w: got [%v]", ErrNegative, v[0])
				}
			}
		}

	case Gaussian:
		dim := cfg.Dim
		if dim == 0 {
			dim = 1
		}
		for _, seq := range seqs {
			for _, v := range seq {
				if len(v) != dim {
					return fmt.Errorf("%w: got [%d], expected [%d]", ErrDim, len(v), dim)
				}
			}
		}
	}
	return nil
}
