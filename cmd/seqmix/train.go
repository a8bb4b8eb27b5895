// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/golang/glog"
	"github.com/urfave/cli"

	"github.com/akualab/seqmix"
	"github.com/akualab/seqmix/model"
)

var trainCommand = cli.Command{
	Name:      "train",
	ShortName: "t",
	Usage:     "Estimates mixture parameters using data.",
	Description: `runs the nested EM trainer.

You must provide a config file. The default name is "config.yaml".
A sample config file will look like this:

model_name: calls
data_set: train.yaml
model_out: mixhmm.json
mixhmm:
  num_components: 3
  num_states: 2
  emitter:
    family: poisson
train:
  max_iter: 20
  tol: 0.001

ex:
 $ seqmix train
`,
	Action: trainAction,
	Flags: []cli.Flag{
		cli.StringFlag{Name: "data-set, d", Usage: "the file with the list of data files"},
		cli.StringFlag{Name: "model-out, o", Usage: "output model filename"},
		cli.StringFlag{Name: "model-in, i", Usage: "input model for warm restart"},
	},
}

func trainAction(c *cli.Context) error {

	initApp(c)

	requiredStringParam(c, "model-out", &config.ModelOut)
	stringParam(c, "model-in", &config.ModelIn)

	seqs := loadDataSet(c)
	glog.Infof("training on %d sequences", len(seqs))

	m, e := buildModel()
	seqmix.Fatal(e)

	seqmix.Fatal(m.Fit(model.Vectors(seqs)))
	if n := len(m.Trail); n > 0 {
		glog.Infof("final log prob: %f after %d iterations", m.Trail[n-1], n)
	}
	return m.WriteFile(config.ModelOut)
}
