// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mixhmm

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"github.com/akualab/seqmix/model"
)

// Write writes the model to an io.Writer as JSON.
func (m *Model) Write(w io.Writer) error {

	enc := json.NewEncoder(w)
	return enc.Encode(m)
}

// WriteFile writes the model to a file.
func (m *Model) WriteFile(fn string) error {

	e := os.MkdirAll(filepath.Dir(fn), 0755)
	if e != nil {
		return e
	}
	f, e := os.Create(fn)
	if e != nil {
		return e
	}
	defer f.Close()

	if e := m.Write(f); e != nil {
		return e
	}
	glog.Infof("wrote model [%s] to file %s", m.ModelName, fn)
	return nil
}

// Read reads a model from an io.Reader. Training options are reset to
// their defaults; pass options to restore them.
func Read(r io.Reader, options ...Option) (*Model, error) {

	dec := json.NewDecoder(r)
	m := &Model{}
	if e := dec.Decode(m); e != nil {
		return nil, e
	}
	m.maxIter = defaultMaxIter
	m.tol = defaultTol
	m.initParams = model.NoParams
	m.updateParams = model.AllParams
	m.seed = model.DefaultSeed
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// ReadFile reads a model from a file.
func ReadFile(fn string, options ...Option) (*Model, error) {

	f, e := os.Open(fn)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	glog.Infof("reading model from file %s", fn)
	return Read(f, options...)
}
