// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmix

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/akualab/seqmix/model"
	"github.com/akualab/seqmix/model/hmm"
	"github.com/akualab/seqmix/model/mixhmm"
)

// Config is the top-level configuration for the seqmix tools.
type Config struct {
	ModelName string `yaml:"model_name,omitempty" json:"model_name,omitempty"`

	// DataSet is the file with the list of data files.
	DataSet  string `yaml:"data_set,omitempty" json:"data_set,omitempty"`
	ModelIn  string `yaml:"model_in,omitempty" json:"model_in,omitempty"`
	ModelOut string `yaml:"model_out,omitempty" json:"model_out,omitempty"`

	MixHMM MixHMM `yaml:"mixhmm" json:"mixhmm"`

	Train Train `yaml:"train,omitempty" json:"train,omitempty"`
}

// MixHMM configures the mixture structure.
type MixHMM struct {
	NumComponents int               `yaml:"num_components" json:"num_components"`
	NumStates     int               `yaml:"num_states" json:"num_states"`
	Emitter       hmm.EmitterConfig `yaml:"emitter" json:"emitter"`
}

// Train configures the estimation run.
type Train struct {
	MaxIter int      `yaml:"max_iter,omitempty" json:"max_iter,omitempty"`
	Tol     float64  `yaml:"tol,omitempty" json:"tol,omitempty"`
	Seed    uint64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	Init    []string `yaml:"init,omitempty" json:"init,omitempty"`
	Update  []string `yaml:"update,omitempty" json:"update,omitempty"`
	Verbose int      `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// ReadConfig reads the yaml config file.
func ReadConfig(filename string) (*Config, error) {

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file [%s]: %s", filename, err)
	}
	return config, nil
}

// ModelOptions converts the config to mixhmm options.
func (config *Config) ModelOptions() ([]mixhmm.Option, error) {

	var options []mixhmm.Option
	if config.ModelName != "" {
		options = append(options, mixhmm.Name(config.ModelName))
	}
	tc := config.Train
	if tc.MaxIter > 0 {
		options = append(options, mixhmm.MaxIter(tc.MaxIter))
	}
	if tc.Tol > 0 {
		options = append(options, mixhmm.Tol(tc.Tol))
	}
	if tc.Seed > 0 {
		options = append(options, mixhmm.Seed(tc.Seed))
	}
	if len(tc.Init) > 0 {
		p, err := model.ParseParams(tc.Init)
		if err != nil {
			return nil, err
		}
		options = append(options, mixhmm.InitParams(p))
	}
	if len(tc.Update) > 0 {
		p, err := model.ParseParams(tc.Update)
		if err != nil {
			return nil, err
		}
		options = append(options, mixhmm.UpdateParams(p))
	}
	if tc.Verbose > 0 {
		options = append(options, mixhmm.Verbose(tc.Verbose, os.Stderr))
	}
	return options, nil
}

// NewModel builds a mixture model from the config.
func (config *Config) NewModel() (*mixhmm.Model, error) {

	mc := config.MixHMM
	if mc.NumComponents < 1 || mc.NumStates < 1 {
		return nil, fmt.Errorf("config needs num_components [%d] and num_states [%d] greater than zero",
			mc.NumComponents, mc.NumStates)
	}
	options, err := config.ModelOptions()
	if err != nil {
		return nil, err
	}
	return mixhmm.NewModel(mc.NumComponents, mc.NumStates, mc.Emitter, options...), nil
}
