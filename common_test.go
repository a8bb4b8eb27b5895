// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seqmix

import (
	"path/filepath"
	"testing"
)

func TestWriteJSON(t *testing.T) {

	x := Result{BatchID: "b1", Ref: []int{0, 1, 1}, Hyp: []int{0, 1, 0}}
	var y Result

	fn := filepath.Join(t.TempDir(), "result.json")
	CheckError(t, WriteJSONFile(fn, x))
	t.Logf("Wrote to temp file: %s\n", fn)

	CheckError(t, ReadJSONFile(fn, &y))
	t.Logf("Original:%v", x)
	t.Logf("Read back from file:%v", y)

	if y.BatchID != x.BatchID {
		t.Fatal("write/read mismatched")
	}
	CompareSliceInt(t, x.Ref, y.Ref, "ref")
	CompareSliceInt(t, x.Hyp, y.Hyp, "hyp")
}
