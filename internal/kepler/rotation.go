package kepler

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// R3R1R3 performs a 3-1-3 Euler angle rotation (θ1 about z, θ2 about x,
// θ3 about z) and returns the direction cosine matrix from the inertial
// frame into the rotated frame.
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// perifocalToInertial rotates a vector from the perifocal (PQW) frame into
// the inertial frame.
func perifocalToInertial(w, i, Ω float64, p, q float64) [3]float64 {
	dcm := R3R1R3(Ω, i, w)
	var out mat.VecDense
	out.MulVec(dcm.T(), mat.NewVecDense(3, []float64{p, q, 0}))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}
