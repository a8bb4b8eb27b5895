// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distmv"
)

// RandIntFromDist generates a random index given a discrete prob
// distribution.
func RandIntFromDist(dist []float64, r *rand.Rand) (int, error) {

	n := len(dist)
	if n == 0 {
		return -1, fmt.Errorf("prob distribution has len 0")
	}
	ran := r.Float64()
	cum := 0.0
	for i := 0; i < n; i++ {
		cum += dist[i]
		if ran < cum {
			return i, nil
		}
	}
	if cum < 0.999 || cum > 1.001 {
		return -1, fmt.Errorf("distribution sums to [%f], expected 1", cum)
	}
	return n - 1, nil
}

// RandNormalVector returns a random vector drawn elementwise from
// normal distributions with the given means and standard deviations.
func RandNormalVector(mean, sd []float64, r *rand.Rand) ([]float64, error) {

	if !floats.EqualLengths(mean, sd) {
		return nil, fmt.Errorf("cannot generate random vector, length of mean [%d] and sd [%d] don't match",
			len(mean), len(sd))
	}
	vector := make([]float64, len(mean))
	for i := range mean {
		vector[i] = r.NormFloat64()*sd[i] + mean[i]
	}
	return vector, nil
}

// RandDirichlet draws a probability vector from a Dirichlet
// distribution with concentration alpha.
func RandDirichlet(alpha []float64, r *rand.Rand) []float64 {

	d := distmv.NewDirichlet(alpha, r)
	return d.Rand(nil)
}
