// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package floatx provides slice helpers and numerically stable
// log-domain arithmetic for float64 data.
package floatx

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrIndexOutOfRange = Error("floatx: index out of range")
	ErrZeroLength      = Error("floatx: zero length in slice definition")
	ErrLength          = Error("floatx: length mismatch")
)

// ApplyFunc is an elementwise transformation. The first argument is the
// element index.
type ApplyFunc func(n int, v float64) float64

var Log = func(n int, v float64) float64 { return math.Log(v) }
var Exp = func(n int, v float64) float64 { return math.Exp(v) }
var Sq = func(n int, v float64) float64 { return v * v }
var Sqrt = func(n int, v float64) float64 { return math.Sqrt(v) }
var Inv = func(n int, v float64) float64 { return 1.0 / v }

func AddScalarFunc(f float64) ApplyFunc {
	return func(n int, v float64) float64 { return v + f }
}
func ScaleFunc(f float64) ApplyFunc {
	return func(n int, v float64) float64 { return v * f }
}
func SetValueFunc(f float64) ApplyFunc {
	return func(n int, v float64) float64 { return f }
}

// Floor returns a function that clamps values below f to f.
func Floor(f float64) ApplyFunc {
	return func(n int, v float64) float64 {
		if v < f {
			return f
		}
		return v
	}
}

// Apply function to 1D slice. If out slice is empty, the function is applied in place.
func Apply(fn ApplyFunc, in, out []float64) []float64 {

	if len(in) == 0 {
		panic(ErrZeroLength)
	}
	if len(out) == 0 {
		out = in
	}
	for i, v := range in {
		out[i] = fn(i, v)
	}
	return out
}

func MakeFloat2D(n1, n2 int) [][]float64 {

	s := make([][]float64, n1)
	for i := 0; i < n1; i++ {
		s[i] = make([]float64, n2)
	}
	return s
}

func MakeFloat3D(n1, n2, n3 int) [][][]float64 {

	s := make([][][]float64, n1)
	for i := 0; i < n1; i++ {
		s[i] = MakeFloat2D(n2, n3)
	}
	return s
}

func Check2D(s [][]float64) (n1, n2 int) {

	n1 = len(s)
	if n1 == 0 {
		panic(ErrZeroLength)
	}
	n2 = len(s[0])
	if n2 == 0 {
		panic(ErrZeroLength)
	}
	return
}

// Set all values to zero.
func Clear(s []float64) {

	for i := range s {
		s[i] = 0
	}
}

// Set all values to zero.
func Clear2D(s [][]float64) {

	for _, slice := range s {
		Clear(slice)
	}
}

// CopyFloat2D returns a deep copy of s.
func CopyFloat2D(s [][]float64) [][]float64 {

	n1, n2 := Check2D(s)
	out := MakeFloat2D(n1, n2)
	for i, row := range s {
		copy(out[i], row)
	}
	return out
}

// LogAdd returns log(exp(a) + exp(b)) without leaving the log domain.
// Values below the float64 contribution threshold are dropped early.
func LogAdd(a, b float64) float64 {

	if a < b {
		a, b = b, a
	}
	if math.IsInf(b, -1) {
		return a
	}
	d := b - a
	if d < -36.0 {
		return a
	}
	return a + math.Log1p(math.Exp(d))
}

// LogSumExp returns log(sum_i exp(v[i])). Returns -Inf for a slice
// whose elements are all -Inf.
func LogSumExp(v []float64) float64 {

	if len(v) == 0 {
		panic(ErrZeroLength)
	}
	max := floats.Max(v)
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}
	var sum float64
	for _, x := range v {
		sum += math.Exp(x - max)
	}
	return max + math.Log(sum)
}

// LogSumExpRows reduces a 2D slice along axis 0. Element j of the
// result is log(sum_i exp(s[i][j])).
func LogSumExpRows(s [][]float64) []float64 {

	n1, n2 := Check2D(s)
	col := make([]float64, n1)
	out := make([]float64, n2)
	for j := 0; j < n2; j++ {
		for i := 0; i < n1; i++ {
			col[i] = s[i][j]
		}
		out[j] = LogSumExp(col)
	}
	return out
}

// Normalize scales v so it sums to one. A vector with a vanishing sum
// is reset to the uniform distribution.
func Normalize(v []float64) {

	sum := floats.Sum(v)
	if sum < 1e-290 {
		Apply(SetValueFunc(1.0/float64(len(v))), v, nil)
		return
	}
	floats.Scale(1.0/sum, v)
}

// LogNormalize shifts log-domain values in place so their exponentials
// sum to one. The shift, log(sum_i exp(v[i])), is returned. A slice of
// all -Inf values is left unchanged and the shift is -Inf.
func LogNormalize(v []float64) float64 {

	z := LogSumExp(v)
	if math.IsInf(z, -1) {
		return z
	}
	floats.AddConst(-z, v)
	return z
}
