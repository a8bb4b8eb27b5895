// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model provides shared types for statistical sequence models.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
)

const (
	// DefaultSeed provided for model implementations.
	DefaultSeed uint64 = 33
)

// ParamSet selects groups of model parameters for estimation or
// initialization.
type ParamSet uint8

const (
	// ParamWeights selects the mixture component weights.
	ParamWeights ParamSet = 1 << iota

	// ParamChain selects the Markov chain parameters of each
	// component (initial-state and transition probabilities).
	ParamChain

	// ParamEmissions selects the emission distribution parameters.
	ParamEmissions
)

// AllParams selects every parameter group.
const AllParams = ParamWeights | ParamChain | ParamEmissions

// NoParams selects nothing. Use it as the init set to keep
// caller-supplied parameters untouched (warm restart).
const NoParams ParamSet = 0

// Has returns true if group g is in the set.
func (p ParamSet) Has(g ParamSet) bool { return p&g != 0 }

// String lists the selected groups by name.
func (p ParamSet) String() string {

	if p == NoParams {
		return "none"
	}
	var names []string
	if p.Has(ParamWeights) {
		names = append(names, "weights")
	}
	if p.Has(ParamChain) {
		names = append(names, "chain")
	}
	if p.Has(ParamEmissions) {
		names = append(names, "emissions")
	}
	return strings.Join(names, ",")
}

// ParseParams converts parameter group names to a ParamSet. The names
// "all" and "none" select everything and nothing.
func ParseParams(names []string) (ParamSet, error) {

	p := NoParams
	for _, name := range names {
		switch name {
		case "weights":
			p |= ParamWeights
		case "chain":
			p |= ParamChain
		case "emissions":
			p |= ParamEmissions
		case "all":
			p |= AllParams
		case "none":
		default:
			return NoParams, fmt.Errorf("unknown parameter group [%s]", name)
		}
	}
	return p, nil
}

// Seq is a data format to represent a sequence of observation vectors.
// We use it to read and write json data.
type Seq struct {
	Vectors [][]float64 `json:"vectors"`
	Labels  []string    `json:"labels,omitempty"`
	ID      string      `json:"id,omitempty"`
}

// Len returns the number of observation vectors in the sequence.
func (s Seq) Len() int { return len(s.Vectors) }

// ReadSeqs reads a stream of JSON-encoded Seq values separated by
// newlines. Order is preserved.
func ReadSeqs(r io.Reader) ([]Seq, error) {

	var seqs []Seq
	dec := json.NewDecoder(r)
	for {
		var s Seq
		err := dec.Decode(&s)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode sequence [%d]: %s", len(seqs), err)
		}
		seqs = append(seqs, s)
	}
	glog.V(2).Infof("read %d sequences", len(seqs))
	return seqs, nil
}

// WriteSeqs writes sequences as a stream of JSON objects.
func WriteSeqs(w io.Writer, seqs []Seq) error {

	enc := json.NewEncoder(w)
	for i, s := range seqs {
		if e := enc.Encode(s); e != nil {
			return fmt.Errorf("failed to encode sequence [%d]: %s", i, e)
		}
	}
	return nil
}

// Vectors extracts the raw observation sequences in input order.
func Vectors(seqs []Seq) [][][]float64 {

	out := make([][][]float64, len(seqs))
	for i, s := range seqs {
		out[i] = s.Vectors
	}
	return out
}
