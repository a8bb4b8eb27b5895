// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/akualab/seqmix"
	"github.com/akualab/seqmix/model"
)

var predictCommand = cli.Command{
	Name:      "predict",
	ShortName: "p",
	Usage:     "Assigns each sequence to its most responsible mixture component.",
	Action:    predictAction,
	Flags: []cli.Flag{
		cli.StringFlag{Name: "data-set, d", Usage: "the file with the list of data files"},
		cli.StringFlag{Name: "model-in, i", Usage: "trained model filename"},
		cli.StringFlag{Name: "result-out, r", Usage: "write assignments as a json result file"},
		cli.BoolFlag{Name: "proba", Usage: "print component responsibilities instead of assignments"},
	},
}

func predictAction(c *cli.Context) error {

	initApp(c)
	m := loadModel(c)
	seqs := loadDataSet(c)
	vecs := model.Vectors(seqs)

	if c.Bool("proba") {
		proba := m.PredictProba(vecs)
		for i, row := range proba {
			fmt.Printf("%s\t%v\n", seqs[i].ID, row)
		}
		return nil
	}

	hyp := m.Predict(vecs)
	for i, comp := range hyp {
		fmt.Printf("%s\t%d\n", seqs[i].ID, comp)
	}

	if fn := c.String("result-out"); fn != "" {
		res := seqmix.Result{BatchID: config.DataSet, Hyp: hyp}
		return seqmix.WriteJSONFile(fn, res)
	}
	return nil
}
