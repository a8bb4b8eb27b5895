// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmix

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"

	"github.com/akualab/seqmix/model"
)

// DataSet is a list of data files with sequences. Files hold
// newline-separated JSON sequence objects.
type DataSet struct {

	// Path is prepended to the file names. Relative paths are
	// resolved against the location of the data set file.
	Path string `yaml:"path,omitempty"`

	// Files with sequence data.
	Files []string `yaml:"files"`
}

// ReadDataSetFile reads a data set from a yaml file.
func ReadDataSetFile(filename string) (*DataSet, error) {

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ds := &DataSet{}
	if err = yaml.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("failed to parse data set file [%s]: %s", filename, err)
	}
	if len(ds.Files) == 0 {
		return nil, fmt.Errorf("data set file [%s] has no files", filename)
	}
	if !filepath.IsAbs(ds.Path) {
		ds.Path = filepath.Join(filepath.Dir(filename), ds.Path)
	}
	return ds, nil
}

// Load reads the sequences from all the files in the data set. Order
// follows the file list.
func (ds *DataSet) Load() ([]model.Seq, error) {

	var seqs []model.Seq
	for _, fn := range ds.Files {
		full := filepath.Join(ds.Path, fn)
		f, err := os.Open(full)
		if err != nil {
			return nil, err
		}
		s, err := model.ReadSeqs(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read data file [%s]: %s", full, err)
		}
		glog.V(2).Infof("loaded %d sequences from %s", len(s), full)
		seqs = append(seqs, s...)
	}
	return seqs, nil
}
