// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar"
	"github.com/urfave/cli"

	"github.com/akualab/seqmix"
)

var scoreCommand = cli.Command{
	Name:      "score",
	ShortName: "s",
	Usage:     "Computes the log likelihood of a data set under a trained model.",
	Action:    scoreAction,
	Flags: []cli.Flag{
		cli.StringFlag{Name: "data-set, d", Usage: "the file with the list of data files"},
		cli.StringFlag{Name: "model-in, i", Usage: "trained model filename"},
		cli.BoolFlag{Name: "per-sequence", Usage: "print the log likelihood of every sequence"},
	},
}

func scoreAction(c *cli.Context) error {

	initApp(c)
	m := loadModel(c)
	seqs := loadDataSet(c)

	bar := progressbar.New(len(seqs))
	var total float64
	var frames int
	for _, s := range seqs {
		lp, _ := m.ScoreSample(s.Vectors)
		total += lp
		frames += s.Len()
		if c.Bool("per-sequence") {
			fmt.Fprintf(os.Stderr, "\n%s\t%f", s.ID, lp)
		}
		bar.Add(1)
	}
	fmt.Println()

	seqmix.Fatal(printScore(total, len(seqs), frames))
	return nil
}

func printScore(total float64, nSeqs, frames int) error {

	_, e := fmt.Printf("sequences: %d\nframes: %d\ntotal log prob: %f\nlog prob per frame: %f\n",
		nSeqs, frames, total, total/float64(frames))
	return e
}
