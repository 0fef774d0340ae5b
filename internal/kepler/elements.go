package kepler

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// ErrNotElliptic is returned for parabolic and hyperbolic orbits.
var ErrNotElliptic = errors.New("kepler: orbit is not elliptic")

const (
	// Inclinations within this distance of 0 or π are treated as equatorial.
	inclinationEps = 1e-10
	// Eccentricities below this are treated as circular.
	eccentricityEps = 1e-10
)

// Elements are the classical orbital elements of a bound relative orbit.
// Angles are in radians.
type Elements struct {
	A     float64 // semi-major axis
	E     float64 // eccentricity
	I     float64 // inclination
	Omega float64 // longitude of the ascending node
	W     float64 // argument of periapsis
	M0    float64 // mean anomaly at the initial time
	Mu    float64 // gravitational parameter
}

// FromState derives the elements of the orbit through relative position r
// and velocity v. Planar vectors are taken to lie in z = 0.
//
// Circular orbits get W = 0 and equatorial orbits Omega = 0; the anomaly then
// measures from the node or the x axis so that the position is preserved.
func FromState(r, v dynamo.State, mu float64) (Elements, error) {
	rv, err := to3(r)
	if err != nil {
		return Elements{}, err
	}
	vv, err := to3(v)
	if err != nil {
		return Elements{}, err
	}

	rNorm := floats.Norm(rv[:], 2)
	vNorm := floats.Norm(vv[:], 2)

	h := cross(rv, vv)
	hNorm := floats.Norm(h[:], 2)

	vxh := cross(vv, h)
	var eVec [3]float64
	for k := range eVec {
		eVec[k] = vxh[k]/mu - rv[k]/rNorm
	}
	e := floats.Norm(eVec[:], 2)
	if !(e < 1) {
		return Elements{}, errors.Wrapf(ErrNotElliptic, "eccentricity %g", e)
	}

	i := math.Acos(clampCos(h[2] / hNorm))
	n := [3]float64{-h[1], h[0], 0}
	nNorm := floats.Norm(n[:], 2)

	circular := e < eccentricityEps
	equatorial := i < inclinationEps || math.Pi-i < inclinationEps
	retrograde := i > math.Pi/2

	var nu float64
	switch {
	case !circular:
		nu = math.Acos(clampCos(dot(eVec, rv) / (e * rNorm)))
		if dot(rv, vv) < 0 {
			nu = 2*math.Pi - nu
		}
	case !equatorial:
		nu = math.Acos(clampCos(dot(n, rv) / (nNorm * rNorm)))
		if rv[2] < 0 {
			nu = 2*math.Pi - nu
		}
	default:
		nu = math.Atan2(rv[1], rv[0])
		if retrograde {
			nu = -nu
		}
		nu = normalizeAngle(nu)
	}

	var Ω float64
	if !equatorial {
		Ω = math.Acos(clampCos(n[0] / nNorm))
		if n[1] < 0 {
			Ω = 2*math.Pi - Ω
		}
	}

	var w float64
	switch {
	case circular:
	case !equatorial:
		w = math.Acos(clampCos(dot(n, eVec) / (nNorm * e)))
		if eVec[2] < 0 {
			w = 2*math.Pi - w
		}
	default:
		w = math.Atan2(eVec[1], eVec[0])
		if retrograde {
			w = -w
		}
		w = normalizeAngle(w)
	}

	sinHalf, cosHalf := math.Sincos(nu / 2)
	ecc := 2 * math.Atan2(math.Sqrt(1-e)*sinHalf, math.Sqrt(1+e)*cosHalf)

	return Elements{
		A:     1 / (2/rNorm - vNorm*vNorm/mu),
		E:     e,
		I:     i,
		Omega: Ω,
		W:     w,
		M0:    ecc - e*math.Sin(ecc),
		Mu:    mu,
	}, nil
}

// FromRelative derives elements from a state vector laid out as
// [t, r..., v...].
func FromRelative(x dynamo.State, mu float64) (Elements, error) {
	if len(x)%2 == 0 {
		return Elements{}, errors.Wrapf(dynamo.ErrDimensionMismatch, "state of length %d", len(x))
	}
	n := (len(x) - 1) / 2
	return FromState(x[1:n+1], x[n+1:], mu)
}

// MeanMotion is sqrt(μ/a³).
func (el Elements) MeanMotion() float64 {
	return math.Sqrt(el.Mu / (el.A * el.A * el.A))
}

func (el Elements) Period() float64 {
	return 2 * math.Pi / el.MeanMotion()
}

func (el Elements) Periapsis() float64 { return el.A * (1 - el.E) }

func (el Elements) Apoapsis() float64 { return el.A * (1 + el.E) }

func (el Elements) String() string {
	return fmt.Sprintf("a=%.6g e=%.6g i=%.4f° Ω=%.4f° ω=%.4f° M0=%.4f°",
		el.A, el.E, deg(el.I), deg(el.Omega), deg(el.W), deg(el.M0))
}

func to3(v dynamo.State) ([3]float64, error) {
	var out [3]float64
	if len(v) != 2 && len(v) != 3 {
		return out, errors.Wrapf(dynamo.ErrDimensionMismatch, "vector of length %d", len(v))
	}
	copy(out[:], v)
	return out, nil
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float64) float64 {
	return floats.Dot(a[:], b[:])
}

// clampCos guards acos against rounding just outside [-1, 1].
func clampCos(c float64) float64 {
	return math.Max(-1, math.Min(1, c))
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }
