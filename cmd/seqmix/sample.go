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
	"golang.org/x/exp/rand"

	"github.com/akualab/seqmix"
	"github.com/akualab/seqmix/model"
)

var sampleCommand = cli.Command{
	Name:      "sample",
	ShortName: "g",
	Usage:     "Generates sequences from a trained model.",
	Action:    sampleAction,
	Flags: []cli.Flag{
		cli.StringFlag{Name: "model-in, i", Usage: "trained model filename"},
		cli.StringFlag{Name: "data-out, o", Usage: "output data filename"},
		cli.IntFlag{Name: "num-seqs, n", Value: 100, Usage: "number of sequences to generate"},
		cli.IntFlag{Name: "min-len", Value: 10, Usage: "minimum sequence length"},
		cli.IntFlag{Name: "max-len", Value: 50, Usage: "maximum sequence length"},
		cli.Uint64Flag{Name: "seed", Value: model.DefaultSeed, Usage: "random seed"},
	},
}

func sampleAction(c *cli.Context) error {

	initApp(c)
	m := loadModel(c)

	fn := c.String("data-out")
	if fn == "" {
		seqmix.Fatal(fmt.Errorf("missing parameter [data-out]"))
	}
	n := c.Int("num-seqs")
	minLen, maxLen := c.Int("min-len"), c.Int("max-len")
	if minLen < 1 || maxLen < minLen {
		seqmix.Fatal(fmt.Errorf("bad length range [%d, %d]", minLen, maxLen))
	}

	r := rand.New(rand.NewSource(c.Uint64("seed")))
	bar := progressbar.New(n)
	seqs := make([]model.Seq, n)
	for i := 0; i < n; i++ {
		comps, obs, _ := m.Sample(1, minLen, maxLen, r)
		seqs[i] = model.Seq{
			Vectors: obs[0],
			ID:      fmt.Sprintf("sample-%d-comp-%d", i, comps[0]),
		}
		bar.Add(1)
	}
	fmt.Println()

	f, e := os.Create(fn)
	seqmix.Fatal(e)
	defer f.Close()
	return model.WriteSeqs(f, seqs)
}
