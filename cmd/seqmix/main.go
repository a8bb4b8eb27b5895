// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command seqmix trains and applies mixtures of hidden Markov models.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/urfave/cli"

	"github.com/akualab/seqmix"
	"github.com/akualab/seqmix/model"
	"github.com/akualab/seqmix/model/mixhmm"
)

var config *seqmix.Config

func main() {

	defer glog.Flush()

	app := cli.NewApp()
	app.Name = "seqmix"
	app.Usage = "mixture of HMMs modeling toolkit"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config-file, c", Value: "config.yaml", Usage: "configuration file"},
		cli.BoolFlag{Name: "logtostderr", Usage: "log to standard error instead of files"},
		cli.StringFlag{Name: "vv", Value: "0", Usage: "glog verbosity level"},
	}
	app.Commands = []cli.Command{
		trainCommand,
		scoreCommand,
		predictCommand,
		sampleCommand,
	}

	if err := app.Run(os.Args); err != nil {
		glog.Fatalf("%s", err)
	}
}

// initApp wires glog flags and reads the config file if present.
func initApp(c *cli.Context) {

	if c.GlobalBool("logtostderr") {
		flag.Set("logtostderr", "true")
	}
	flag.Set("v", c.GlobalString("vv"))

	fn := c.GlobalString("config-file")
	if _, err := os.Stat(fn); err != nil {
		glog.V(1).Infof("no config file [%s], using flags only", fn)
		config = &seqmix.Config{}
		return
	}
	var e error
	config, e = seqmix.ReadConfig(fn)
	seqmix.Fatal(e)
	glog.Infof("read configuration from %s", fn)
}

// requiredStringParam overrides a config value with a command flag and
// fails if the result is empty.
func requiredStringParam(c *cli.Context, name string, param *string) {

	if v := c.String(name); v != "" {
		*param = v
	}
	if *param == "" {
		seqmix.Fatal(fmt.Errorf("missing parameter [%s], set it in the config file or pass the flag", name))
	}
}

// stringParam overrides a config value with a command flag.
func stringParam(c *cli.Context, name string, param *string) {

	if v := c.String(name); v != "" {
		*param = v
	}
}

// buildModel creates a fresh model from the config or restores one
// for a warm restart when model_in is set.
func buildModel() (*mixhmm.Model, error) {

	if config.ModelIn == "" {
		return config.NewModel()
	}
	options, e := config.ModelOptions()
	if e != nil {
		return nil, e
	}
	glog.Infof("warm restart from %s", config.ModelIn)
	return mixhmm.ReadFile(config.ModelIn, options...)
}

// loadModel reads a trained model for scoring.
func loadModel(c *cli.Context) *mixhmm.Model {

	requiredStringParam(c, "model-in", &config.ModelIn)
	m, e := mixhmm.ReadFile(config.ModelIn)
	seqmix.Fatal(e)
	return m
}

// loadDataSet reads the sequences named by the data set file.
func loadDataSet(c *cli.Context) []model.Seq {

	requiredStringParam(c, "data-set", &config.DataSet)
	ds, e := seqmix.ReadDataSetFile(config.DataSet)
	seqmix.Fatal(e)
	seqs, e := ds.Load()
	seqmix.Fatal(e)
	return seqs
}
