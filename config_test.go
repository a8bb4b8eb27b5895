// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/akualab/seqmix/model"
	"github.com/akualab/seqmix/model/hmm"
)

func TestConfig(t *testing.T) {

	fn := filepath.Join(t.TempDir(), "config.yaml")
	t.Logf("Config File: %s.", fn)
	err := os.WriteFile(fn, []byte(configData), 0644)
	CheckError(t, err)

	config, e := ReadConfig(fn)
	CheckError(t, e)
	t.Logf("Config: %+v", config)

	if config.ModelName != "calls" {
		t.Fatalf("ModelName is [%s]. Expected \"calls\".", config.ModelName)
	}
	if config.DataSet != "random.yaml" {
		t.Fatalf("DataSet is [%s]. Expected \"random.yaml\".", config.DataSet)
	}
	if config.MixHMM.NumComponents != 3 || config.MixHMM.NumStates != 2 {
		t.Fatalf("Mixture shape is [%d]x[%d]. Expected 3x2.",
			config.MixHMM.NumComponents, config.MixHMM.NumStates)
	}
	if config.MixHMM.Emitter.Family != hmm.Poisson {
		t.Fatalf("Family is [%s]. Expected \"poisson\".", config.MixHMM.Emitter.Family)
	}

	m, e := config.NewModel()
	CheckError(t, e)
	if m.NC != 3 || m.NS != 2 {
		t.Fatalf("Model shape is [%d]x[%d]. Expected 3x2.", m.NC, m.NS)
	}
}

func TestConfigParams(t *testing.T) {

	config := &Config{
		MixHMM: MixHMM{NumComponents: 2, NumStates: 2},
		Train:  Train{Init: []string{"none"}, Update: []string{"weights", "emissions"}},
	}
	options, e := config.ModelOptions()
	CheckError(t, e)
	if len(options) != 2 {
		t.Fatalf("Got [%d] options. Expected 2.", len(options))
	}

	config.Train.Update = []string{"bogus"}
	if _, e := config.ModelOptions(); e == nil {
		t.Fatal("Expected error for unknown parameter group.")
	}

	p, e := model.ParseParams([]string{"all"})
	CheckError(t, e)
	if p != model.AllParams {
		t.Fatalf("ParseParams(all) is [%s]. Expected [%s].", p, model.AllParams)
	}
}

func TestConfigBadShape(t *testing.T) {

	config := &Config{}
	if _, e := config.NewModel(); e == nil {
		t.Fatal("Expected error for empty mixture shape.")
	}
}

const configData string = `
model_name: calls
data_set: random.yaml
model_out: mixhmm.json
mixhmm:
  num_components: 3
  num_states: 2
  emitter:
    family: poisson
    rates_var: 0.5
train:
  max_iter: 25
  tol: 0.001
  seed: 42
  verbose: 1
  update: [weights, chain, emissions]
`
