package physics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	keplerTolerance     = 1e-12
	keplerMaxIterations = 50
)

// OrbitalElements is a Keplerian element set. Lengths are meters and angles
// radians throughout the core; conversion to AU and degrees happens only at
// the API boundary.
type OrbitalElements struct {
	SemiMajorAxis float64 `json:"semi_major_axis"` // a, meters
	Eccentricity  float64 `json:"eccentricity"`    // e, [0,1)
	Inclination   float64 `json:"inclination"`     // i, radians
	AscendingNode float64 `json:"ascending_node"`  // Ω, radians
	ArgPerihelion float64 `json:"arg_perihelion"`  // ω, radians
	MeanAnomaly   float64 `json:"mean_anomaly"`    // M, radians
	Epoch         float64 `json:"epoch"`           // Julian Date
}

// SolveKepler solves Kepler's equation E - e·sin(E) = M for the eccentric
// anomaly by Newton-Raphson starting at E = M. Converges for any e < 1; if
// the iteration cap is hit the last iterate is returned.
func SolveKepler(meanAnomaly, eccentricity float64) float64 {
	E := meanAnomaly
	for i := 0; i < keplerMaxIterations; i++ {
		dE := (E - eccentricity*math.Sin(E) - meanAnomaly) / (1 - eccentricity*math.Cos(E))
		E -= dE
		if math.Abs(dE) < keplerTolerance {
			break
		}
	}
	return E
}

// rotationZ returns the matrix rotating a column vector by theta about z.
func rotationZ(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// rotationX returns the matrix rotating a column vector by theta about x.
func rotationX(theta float64) *mat.Dense {
	c, s := math.Cos(theta), math.Sin(theta)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// perifocalToInertial builds the combined rotation taking perifocal
// coordinates into the inertial ecliptic frame: Rz(Ω)·Rx(i)·Rz(ω).
func perifocalToInertial(el OrbitalElements) *mat.Dense {
	var tmp, rot mat.Dense
	tmp.Mul(rotationX(el.Inclination), rotationZ(el.ArgPerihelion))
	rot.Mul(rotationZ(el.AscendingNode), &tmp)
	return &rot
}

func applyRotation(rot *mat.Dense, v Vector3) Vector3 {
	var out mat.VecDense
	out.MulVec(rot, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// ElementsToState converts Keplerian elements to an inertial state vector
// for an orbit around a primary with gravitational parameter mu. With a in
// meters and mu = SunMu the result is meters and m/s.
func ElementsToState(el OrbitalElements, mu float64) StateVector {
	E := SolveKepler(el.MeanAnomaly, el.Eccentricity)
	e := el.Eccentricity

	// True anomaly from the half-angle form, valid for all quadrants.
	nu := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(E/2),
		math.Sqrt(1-e)*math.Cos(E/2),
	)

	r := el.SemiMajorAxis * (1 - e*math.Cos(E))
	posPerifocal := Vector3{X: r * math.Cos(nu), Y: r * math.Sin(nu)}

	vFactor := math.Sqrt(mu / (el.SemiMajorAxis * (1 - e*e)))
	velPerifocal := Vector3{X: -vFactor * math.Sin(nu), Y: vFactor * (e + math.Cos(nu))}

	rot := perifocalToInertial(el)
	return StateVector{
		Position: applyRotation(rot, posPerifocal),
		Velocity: applyRotation(rot, velPerifocal),
	}
}

// StateToElements recovers Keplerian elements from an inertial state vector.
// Angles of degenerate geometries (circular or equatorial orbits) collapse
// to zero rather than NaN.
func StateToElements(sv StateVector, mu float64, epoch float64) OrbitalElements {
	pos, vel := sv.Position, sv.Velocity
	r := pos.Magnitude()
	v2 := vel.Dot(vel)

	energy := v2/2 - mu/r
	a := -mu / (2 * energy)

	h := pos.Cross(vel)
	eVec := vel.Cross(h).Scale(1 / mu).Sub(pos.Normalize())
	e := eVec.Magnitude()

	hMag := h.Magnitude()
	var inc float64
	if hMag > normalizeEpsilon {
		inc = math.Acos(clamp(h.Z/hMag, -1, 1))
	}

	// Node vector ẑ × h.
	node := Vector3{X: -h.Y, Y: h.X}
	nMag := node.Magnitude()

	var ascNode float64
	if nMag > normalizeEpsilon {
		ascNode = math.Atan2(node.Y, node.X)
		if ascNode < 0 {
			ascNode += 2 * math.Pi
		}
	}

	var argPeri float64
	if nMag > normalizeEpsilon && e > normalizeEpsilon {
		argPeri = math.Acos(clamp(node.Dot(eVec)/(nMag*e), -1, 1))
		if eVec.Z < 0 {
			argPeri = 2*math.Pi - argPeri
		}
	} else if e > normalizeEpsilon {
		// Equatorial orbit: measure from the x-axis.
		argPeri = math.Atan2(eVec.Y, eVec.X)
		if argPeri < 0 {
			argPeri += 2 * math.Pi
		}
	}

	var nu float64
	if e > normalizeEpsilon {
		nu = math.Acos(clamp(eVec.Dot(pos)/(e*r), -1, 1))
		if pos.Dot(vel) < 0 {
			nu = 2*math.Pi - nu
		}
	} else {
		nu = math.Atan2(pos.Y, pos.X) - ascNode - argPeri
	}

	E := 2 * math.Atan2(
		math.Sqrt(1-e)*math.Sin(nu/2),
		math.Sqrt(1+e)*math.Cos(nu/2),
	)
	M := E - e*math.Sin(E)
	if M < 0 {
		M += 2 * math.Pi
	}

	return OrbitalElements{
		SemiMajorAxis: a,
		Eccentricity:  e,
		Inclination:   inc,
		AscendingNode: ascNode,
		ArgPerihelion: argPeri,
		MeanAnomaly:   M,
		Epoch:         epoch,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
