// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mixhmm

import (
	"fmt"
	"io"
	"math"
	"os"
)

// reporter prints training progress. Level 0 is silent, level 1
// prints on a logarithmic iteration schedule, level 2 prints every
// iteration.
type reporter struct {
	level int
	w     io.Writer
	prev  float64
}

func newReporter(level int, w io.Writer) *reporter {

	if w == nil {
		w = os.Stderr
	}
	return &reporter{level: level, w: w, prev: math.NaN()}
}

func (rp *reporter) report(iter int, logProb float64) {

	if rp.level <= 0 {
		return
	}
	defer func() { rp.prev = logProb }()

	if rp.level == 1 && !isPowerOfTwo(iter+1) {
		return
	}
	if math.IsNaN(rp.prev) {
		fmt.Fprintf(rp.w, "iter %10d log prob %16.6f\n", iter, logProb)
		return
	}
	fmt.Fprintf(rp.w, "iter %10d log prob %16.6f delta %12.6f\n",
		iter, logProb, logProb-rp.prev)
}

func (rp *reporter) converged(iter int, logProb float64) {

	if rp.level <= 0 {
		return
	}
	fmt.Fprintf(rp.w, "converged at iter %d with log prob %.6f\n", iter, logProb)
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }
