/*
NAME
  subpixel.go

DESCRIPTION
  subpixel.go fits a 2-D quadratic surface to the neighbourhood of a
  correlation map's peak and analytically solves for its vertex,
  yielding the sub-pixel position of the peak.

LICENSE
  Copyright (C) 2026 the corrtrack contributors. All Rights Reserved.
*/

// Package subpixel refines the integer-pixel peak of a
// correlate.Map to sub-pixel precision via a least-squares quadratic
// fit.
package subpixel

import (
	"gonum.org/v1/gonum/mat"

	"github.com/bruot/corrtrack/correlate"
	"github.com/bruot/corrtrack/corrtrackerr"
)

// nCoeffs is the number of coefficients in the quadratic model
// z = a*dx^2 + b*dx*dy + c*dy^2 + d*dx + e*dy + f.
const nCoeffs = 6

// Result is the sub-pixel position of a correlation map's peak, in
// map coordinates (i.e. (0,0) is the map's top-left window position).
type Result struct {
	X, Y float64
}

// Refine locates the integer-pixel peak of m (first encountered in a
// row-major scan, in case of ties), fits a quadratic surface to the
// samples within fitRadius of the peak, and returns the peak's
// analytic sub-pixel position.
//
// It fails with corrtrackerr.FitUnderdetermined if fewer than six
// samples fall within fitRadius (six coefficients are needed), and
// with corrtrackerr.FitDegenerate if the quadratic's discriminant
// b^2 - 4ac is zero.
func Refine(m *correlate.Map, fitRadius float64) (Result, error) {
	im, jm := peak(m)

	type sample struct{ dx, dy, z float64 }
	var samples []sample
	r2 := fitRadius * fitRadius
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			dx := float64(x - im)
			dy := float64(y - jm)
			if dx*dx+dy*dy <= r2 {
				samples = append(samples, sample{dx, dy, m.At(x, y)})
			}
		}
	}
	if len(samples) < nCoeffs {
		return Result{}, corrtrackerr.Newf(corrtrackerr.FitUnderdetermined,
			"only %d point(s) within fit radius, need at least %d", len(samples), nCoeffs)
	}

	n := len(samples)
	a := mat.NewDense(n, nCoeffs, nil)
	b := mat.NewVecDense(n, nil)
	for i, s := range samples {
		a.SetRow(i, []float64{s.dx * s.dx, s.dx * s.dy, s.dy * s.dy, s.dx, s.dy, 1})
		b.SetVec(i, s.z)
	}

	// Solve the normal equations (A^T A) x = A^T b.
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(&ata, &atb); err != nil {
		return Result{}, corrtrackerr.Wrap(corrtrackerr.FitDegenerate, "", "normal equations are singular", err)
	}

	qa := coeffs.AtVec(0)
	qb := coeffs.AtVec(1)
	qc := coeffs.AtVec(2)
	qd := coeffs.AtVec(3)
	qe := coeffs.AtVec(4)

	denom := qb*qb - 4*qa*qc
	if denom == 0 {
		return Result{}, corrtrackerr.New(corrtrackerr.FitDegenerate, "zero denominator in quadratic peak solution")
	}

	dx := (2*qc*qd - qb*qe) / denom
	dy := (2*qa*qe - qb*qd) / denom

	return Result{X: float64(im) + dx, Y: float64(jm) + dy}, nil
}

// peak returns the row-major-first integer index of the global
// maximum of m.
func peak(m *correlate.Map) (x, y int) {
	best := m.At(0, 0)
	bx, by := 0, 0
	for j := 0; j < m.Height; j++ {
		for i := 0; i < m.Width; i++ {
			v := m.At(i, j)
			if v > best {
				best = v
				bx, by = i, j
			}
		}
	}
	return bx, by
}
