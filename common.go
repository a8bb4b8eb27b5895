// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package seqmix provides configuration and dataset plumbing for
training and applying mixtures of hidden Markov models. The models
themselves live in model/mixhmm and model/hmm.
*/
package seqmix

import (
	"encoding/json"
	"os"

	"github.com/golang/glog"
)

// Result pairs reference and hypothesized component assignments for a
// batch of sequences.
type Result struct {
	BatchID string `json:"batchid"`
	Ref     []int  `json:"ref,omitempty"`
	Hyp     []int  `json:"hyp"`
}

// Fatal logs the error and exits if err is not nil.
func Fatal(err error) {
	if err != nil {
		glog.Fatal(err)
	}
}

// WriteJSONFile writes v to a file as JSON.
func WriteJSONFile(fn string, v interface{}) error {

	f, e := os.Create(fn)
	if e != nil {
		return e
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(v)
}

// ReadJSONFile reads JSON from a file into v.
func ReadJSONFile(fn string, v interface{}) error {

	f, e := os.Open(fn)
	if e != nil {
		return e
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}
