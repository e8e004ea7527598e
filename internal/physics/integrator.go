package physics

import "math"

// IntegratorConfig controls the Velocity-Verlet stepper. The J2, SRP and
// Yarkovsky toggles default to enabled via DefaultIntegratorConfig.
type IntegratorConfig struct {
	Dt              float64 // seconds
	EnableJ2        bool
	EnableSRP       bool
	EnableYarkovsky bool

	// Planetary third-body attraction from the analytic ephemerides.
	// Off by default: the two-body energy diagnostics assume a closed
	// system.
	EnableJupiter bool
	EnableMars    bool

	// Reserved. Poynting-Robertson drag is implemented for sub-meter
	// bodies but is not part of the acceleration sum yet.
	EnablePRDrag bool
}

// DefaultIntegratorConfig returns the standard configuration with J2, SRP
// and Yarkovsky enabled; Jupiter, Mars and Poynting-Robertson stay off.
func DefaultIntegratorConfig(dt float64) IntegratorConfig {
	return IntegratorConfig{
		Dt:              dt,
		EnableJ2:        true,
		EnableSRP:       true,
		EnableYarkovsky: true,
	}
}

// Integrator advances bodies with a Velocity-Verlet scheme. The scheme is
// symplectic, bounding long-term energy drift for the conservative terms.
type Integrator struct {
	config IntegratorConfig
}

// NewIntegrator creates an integrator with the given configuration.
func NewIntegrator(config IntegratorConfig) *Integrator {
	return &Integrator{config: config}
}

// Config returns the active configuration.
func (in *Integrator) Config() IntegratorConfig {
	return in.config
}

// SetDt changes the base timestep.
func (in *Integrator) SetDt(dt float64) {
	in.config.Dt = dt
}

// Step advances every non-star body by one Velocity-Verlet tick of dt
// seconds. Accelerations are evaluated in separate passes so that all
// position updates see the pre-step accelerations and the second evaluation
// sees the post-step positions of every body — the consistent half-step the
// scheme requires.
func (in *Integrator) Step(bodies []*CelestialBody, sunPosition Vector3, julianDate float64) {
	dt := in.config.Dt

	acc0 := make([]Vector3, len(bodies))
	for i, body := range bodies {
		if body.Type == BodyStar {
			continue
		}
		acc0[i] = in.Acceleration(body, bodies, sunPosition, julianDate)
	}

	for i, body := range bodies {
		if body.Type == BodyStar {
			continue
		}
		body.State.Position = body.State.Position.
			Add(body.State.Velocity.Scale(dt)).
			Add(acc0[i].Scale(0.5 * dt * dt))
	}

	acc1 := make([]Vector3, len(bodies))
	for i, body := range bodies {
		if body.Type == BodyStar {
			continue
		}
		acc1[i] = in.Acceleration(body, bodies, sunPosition, julianDate)
	}

	for i, body := range bodies {
		if body.Type == BodyStar {
			continue
		}
		body.State.Velocity = body.State.Velocity.
			Add(acc0[i].Add(acc1[i]).Scale(0.5 * dt))
	}
}

// Acceleration sums every force model acting on body: mutual N-body
// gravity, then (as enabled) Earth J2, solar radiation pressure, the
// Yarkovsky drift, and the Jupiter and Mars attraction. Degenerate geometry
// contributes zero rather than error.
func (in *Integrator) Acceleration(body *CelestialBody, bodies []*CelestialBody, sunPosition Vector3, julianDate float64) Vector3 {
	acc := in.gravity(body, bodies)

	if in.config.EnableJ2 {
		if earth := findBody(bodies, "earth"); earth != nil && earth != body {
			acc = acc.Add(j2Perturbation(body, earth))
		}
	}
	if in.config.EnableSRP {
		acc = acc.Add(radiationPressure(body, sunPosition))
	}
	if in.config.EnableYarkovsky {
		acc = acc.Add(yarkovskyDrift(body, sunPosition))
	}

	if in.config.EnableJupiter {
		acc = acc.Add(JupiterPerturbation(body.State.Position, julianDate))
	}
	if in.config.EnableMars {
		acc = acc.Add(MarsPerturbation(body.State.Position, julianDate))
	}

	return acc
}

// gravity sums Newtonian attraction from every other body. No softening;
// coincident bodies (r ≤ 1e-10) contribute nothing.
func (in *Integrator) gravity(body *CelestialBody, bodies []*CelestialBody) Vector3 {
	var acc Vector3
	for _, other := range bodies {
		if other == body {
			continue
		}
		rel := other.State.Position.Sub(body.State.Position)
		r := rel.Magnitude()
		if r <= 1e-10 {
			continue
		}
		acc = acc.Add(rel.Normalize().Scale(GravitationalG * other.Mass / (r * r)))
	}
	return acc
}

// j2Perturbation applies Earth's oblateness term to bodies between the
// surface and 1e9 m geocentric distance.
func j2Perturbation(body, earth *CelestialBody) Vector3 {
	rel := body.State.Position.Sub(earth.State.Position)
	r := rel.Magnitude()
	if r < EarthRadius || r > 1e9 {
		return Vector3{}
	}

	r2 := r * r
	z2 := rel.Z * rel.Z
	factor := -1.5 * J2Earth * EarthMu * EarthRadius * EarthRadius / (r2 * r2 * r)

	return Vector3{
		X: factor * rel.X * (1 - 5*z2/r2),
		Y: factor * rel.Y * (1 - 5*z2/r2),
		Z: factor * rel.Z * (3 - 5*z2/r2),
	}
}

// radiationPressure pushes bodies with a nonzero cross-section radially
// away from the Sun, flux falling off as 1/r².
func radiationPressure(body *CelestialBody, sunPosition Vector3) Vector3 {
	if body.CrossSectionArea <= 0 {
		return Vector3{}
	}
	rel := body.State.Position.Sub(sunPosition)
	r := rel.Magnitude()
	if r < normalizeEpsilon {
		return Vector3{}
	}

	pressure := SolarFluxPressure * (AU / r) * (AU / r)
	mass := body.Mass
	if mass < 1 {
		mass = 1
	}
	return rel.Normalize().Scale(pressure * body.CrossSectionArea * (1 + body.Reflectivity) / mass)
}

// Thermal emissivity assumed for the Yarkovsky recoil term.
const yarkovskyEmissivity = 0.9

// yarkovskyDrift models thermal recoil on rotating asteroids as a
// tangential prograde acceleration in the ecliptic, producing the secular
// semi-major-axis drift. Direction spin dependence is not modeled.
func yarkovskyDrift(body *CelestialBody, sunPosition Vector3) Vector3 {
	if body.Type != BodyAsteroid {
		return Vector3{}
	}
	diameter := body.Radius * 2
	if diameter < 1 {
		return Vector3{}
	}
	rel := body.State.Position.Sub(sunPosition)
	r := rel.Magnitude()
	if r/AU < 0.1 {
		return Vector3{}
	}

	// Subsolar equilibrium temperature.
	temp := math.Pow(SunLuminosity/(16*math.Pi*StefanBoltzmann*r*r), 0.25)

	density := body.Mass / ((4.0 / 3.0) * math.Pi * body.Radius * body.Radius * body.Radius)
	density = clamp(density, 1000, 8000)

	t2 := temp * temp
	magnitude := (4.0 / 9.0) * yarkovskyEmissivity * StefanBoltzmann * t2 * t2 /
		(density * SpeedOfLight * diameter)

	radial := rel.Normalize()
	tangent := Vector3{X: -radial.Y, Y: radial.X}.Normalize()
	return tangent.Scale(magnitude)
}

// PoyntingRobertsonDrag returns the orbital decay drag on sub-meter debris.
// Implemented for a future dust model; it is not wired into Acceleration.
func PoyntingRobertsonDrag(body *CelestialBody, sunPosition Vector3) Vector3 {
	if body.Radius >= 1 {
		return Vector3{}
	}
	rel := body.State.Position.Sub(sunPosition)
	r := rel.Magnitude()
	if r < normalizeEpsilon {
		return Vector3{}
	}
	mass := body.Mass
	if mass < 1e-12 {
		return Vector3{}
	}

	flux := SolarFluxPressure * SpeedOfLight * (AU / r) * (AU / r)
	factor := flux * body.CrossSectionArea / (mass * SpeedOfLight * SpeedOfLight)

	radial := rel.Normalize()
	radialSpeed := body.State.Velocity.Dot(radial)
	drag := body.State.Velocity.Add(radial.Scale(radialSpeed)).Scale(-factor)
	return drag
}

// Analytic planar elements for the perturbing giants: semi-major axis in
// meters, eccentricity, orbital period in days, longitude of perihelion and
// mean longitude at J2000 in degrees.
var (
	jupiterEphemeris = planetEphemeris{a: 778.6e9, e: 0.0484, period: 4331.0, longPeri: 14.8, meanLong: 34.4, mu: GravitationalG * JupiterMass}
	marsEphemeris    = planetEphemeris{a: 227.9e9, e: 0.0934, period: 687.0, longPeri: 336.0, meanLong: 355.5, mu: GravitationalG * MarsMass}
)

type planetEphemeris struct {
	a        float64
	e        float64
	period   float64
	longPeri float64
	meanLong float64
	mu       float64
}

// position returns the planar ecliptic heliocentric position at jd, using a
// first-order eccentric-anomaly correction E ≈ M + e·sin(M).
func (p planetEphemeris) position(jd float64) Vector3 {
	deg := math.Pi / 180
	m0 := (p.meanLong - p.longPeri) * deg
	meanAnomaly := math.Mod(m0+2*math.Pi*(jd-J2000Epoch)/p.period, 2*math.Pi)
	if meanAnomaly < 0 {
		meanAnomaly += 2 * math.Pi
	}

	E := meanAnomaly + p.e*math.Sin(meanAnomaly)
	nu := 2 * math.Atan2(
		math.Sqrt(1+p.e)*math.Sin(E/2),
		math.Sqrt(1-p.e)*math.Cos(E/2),
	)
	r := p.a * (1 - p.e*math.Cos(E))

	longitude := nu + p.longPeri*deg
	return Vector3{X: r * math.Cos(longitude), Y: r * math.Sin(longitude)}
}

func (p planetEphemeris) attraction(position Vector3, jd float64) Vector3 {
	rel := p.position(jd).Sub(position)
	r := rel.Magnitude()
	if r < 1e6 {
		return Vector3{}
	}
	return rel.Normalize().Scale(p.mu / (r * r))
}

// JupiterPerturbation returns the acceleration toward Jupiter at jd.
func JupiterPerturbation(position Vector3, jd float64) Vector3 {
	return jupiterEphemeris.attraction(position, jd)
}

// MarsPerturbation returns the acceleration toward Mars at jd.
func MarsPerturbation(position Vector3, jd float64) Vector3 {
	return marsEphemeris.attraction(position, jd)
}

// ApplyKineticImpulse adds an instantaneous velocity change to the body.
func ApplyKineticImpulse(body *CelestialBody, deltaV Vector3) {
	body.State.Velocity = body.State.Velocity.Add(deltaV)
}

// ApplyIonBeam applies a continuous-thrust session as one integrated
// impulse: Δv = direction̂ · accel · duration.
func ApplyIonBeam(body *CelestialBody, direction Vector3, accel, durationSeconds float64) {
	ApplyKineticImpulse(body, direction.Normalize().Scale(accel*durationSeconds))
}

// GravityTractorResult summarizes a tractor session.
type GravityTractorResult struct {
	Acceleration   float64 `json:"acceleration"`    // m/s² on the asteroid
	DeltaV         float64 `json:"delta_v"`         // m/s over the session
	DeflectionDays float64 `json:"deflection_days"` // time to move one Earth radius
}

// ApplyGravityTractor hovers a spacecraft of the given mass at hoverAltitude
// above the asteroid's surface for durationSeconds, pulling it along its
// velocity vector scaled by cos(leadAngle). Returns the session summary,
// including the indicative time to deflect the asteroid by one Earth radius.
func ApplyGravityTractor(body *CelestialBody, spacecraftMass, hoverAltitude, durationSeconds, leadAngle float64) GravityTractorResult {
	separation := body.Radius + hoverAltitude
	accel := GravitationalG * spacecraftMass / (separation * separation)
	effective := accel * math.Cos(leadAngle)

	along := body.State.Velocity.Normalize()
	deltaV := effective * durationSeconds
	ApplyKineticImpulse(body, along.Scale(deltaV))

	days := math.Sqrt(2*EarthRadius/accel) / SecondsPerDay
	return GravityTractorResult{
		Acceleration:   effective,
		DeltaV:         deltaV,
		DeflectionDays: days,
	}
}

// TotalEnergy returns the total mechanical energy of the system: kinetic
// plus pairwise gravitational potential.
func TotalEnergy(bodies []*CelestialBody) float64 {
	var energy float64
	for i, body := range bodies {
		v := body.State.Velocity.Magnitude()
		energy += 0.5 * body.Mass * v * v
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].State.Position.Sub(body.State.Position).Magnitude()
			if r <= 1e-10 {
				continue
			}
			energy -= GravitationalG * body.Mass * bodies[j].Mass / r
		}
	}
	return energy
}

func findBody(bodies []*CelestialBody, id string) *CelestialBody {
	for _, b := range bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}
