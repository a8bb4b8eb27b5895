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
)

func TestDataSet(t *testing.T) {

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	err := os.MkdirAll(dataDir, 0755)
	CheckError(t, err)

	// Two data files with newline-separated json sequences.
	f1 := `{"vectors":[[0],[1],[1]],"id":"s1"}
{"vectors":[[1],[0]],"id":"s2"}
`
	f2 := `{"vectors":[[2],[2],[0],[1]],"id":"s3"}
`
	CheckError(t, os.WriteFile(filepath.Join(dataDir, "train-1.json"), []byte(f1), 0644))
	CheckError(t, os.WriteFile(filepath.Join(dataDir, "train-2.json"), []byte(f2), 0644))

	dsFile := filepath.Join(dir, "train.yaml")
	dsData := `
path: data
files:
  - train-1.json
  - train-2.json
`
	CheckError(t, os.WriteFile(dsFile, []byte(dsData), 0644))

	ds, e := ReadDataSetFile(dsFile)
	CheckError(t, e)

	seqs, e := ds.Load()
	CheckError(t, e)
	if len(seqs) != 3 {
		t.Fatalf("Loaded [%d] sequences. Expected 3.", len(seqs))
	}
	if seqs[2].ID != "s3" || seqs[2].Len() != 4 {
		t.Fatalf("Sequence 3 is [%s] with length [%d]. Expected s3 with length 4.",
			seqs[2].ID, seqs[2].Len())
	}
	CompareSliceFloat(t, []float64{0, 1, 1}, flatten(seqs[0].Vectors), "first sequence", 1e-12)

	vecs := model.Vectors(seqs)
	if len(vecs) != 3 || len(vecs[0]) != 3 {
		t.Fatalf("Vectors shape mismatch: %d sequences, first has %d frames.",
			len(vecs), len(vecs[0]))
	}
}

func TestDataSetErrors(t *testing.T) {

	dir := t.TempDir()

	if _, e := ReadDataSetFile(filepath.Join(dir, "missing.yaml")); e == nil {
		t.Fatal("Expected error for missing data set file.")
	}

	empty := filepath.Join(dir, "empty.yaml")
	CheckError(t, os.WriteFile(empty, []byte("path: data\n"), 0644))
	if _, e := ReadDataSetFile(empty); e == nil {
		t.Fatal("Expected error for data set with no files.")
	}
}

func flatten(vectors [][]float64) []float64 {

	out := make([]float64, 0, len(vectors))
	for _, v := range vectors {
		out = append(out, v...)
	}
	return out
}
