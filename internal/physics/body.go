package physics

import "math"

// BodyType classifies a celestial body.
type BodyType string

const (
	BodyStar       BodyType = "star"
	BodyPlanet     BodyType = "planet"
	BodyMoon       BodyType = "moon"
	BodyAsteroid   BodyType = "asteroid"
	BodySpacecraft BodyType = "spacecraft"
)

// Asteroid bulk density assumed when deriving mass from diameter.
const asteroidDensity = 2000.0 // kg/m³

// CelestialBody is one body of the simulated system.
type CelestialBody struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Mass   float64     `json:"mass"`   // kg
	Radius float64     `json:"radius"` // meters
	State  StateVector `json:"state"`
	Type   BodyType    `json:"type"`

	// Radiation pressure parameters.
	CrossSectionArea float64 `json:"cross_section_area"` // m²
	Reflectivity     float64 `json:"reflectivity"`       // [0,2]

	// Source elements, retained for rendering and re-derivation. Nil for
	// bodies constructed directly from a state vector.
	Elements *OrbitalElements `json:"elements,omitempty"`
}

// NewSun returns the Sun, pinned at the origin with zero velocity.
func NewSun() *CelestialBody {
	return &CelestialBody{
		ID:     "sun",
		Name:   "Sun",
		Mass:   SunMass,
		Radius: SunRadius,
		Type:   BodyStar,
	}
}

// NewEarth returns Earth at the given Julian Date using a low-fidelity
// analytic ephemeris: a 1-AU orbit with e = 0.0167 phased linearly from
// J2000. Callers needing precision substitute a different ephemeris at the
// same interface.
func NewEarth(jd float64) *CelestialBody {
	meanAnomaly := 2 * math.Pi * (jd - J2000Epoch) / YearDays
	el := OrbitalElements{
		SemiMajorAxis: AU,
		Eccentricity:  0.0167,
		Inclination:   0,
		AscendingNode: 0,
		ArgPerihelion: 102.9 * math.Pi / 180,
		MeanAnomaly:   meanAnomaly,
		Epoch:         jd,
	}
	return &CelestialBody{
		ID:       "earth",
		Name:     "Earth",
		Mass:     EarthMass,
		Radius:   EarthRadius,
		State:    ElementsToState(el, SunMu),
		Type:     BodyPlanet,
		Elements: &el,
	}
}

// NewMoon returns the Moon on a simplified circular geocentric orbit,
// offset from the supplied Earth state.
func NewMoon(earthState StateVector, jd float64) *CelestialBody {
	phase := 2 * math.Pi * (jd - J2000Epoch) / MoonPeriod
	offset := Vector3{
		X: MoonDistance * math.Cos(phase),
		Y: MoonDistance * math.Sin(phase),
	}
	velOffset := Vector3{
		X: -MoonSpeed * math.Sin(phase),
		Y: MoonSpeed * math.Cos(phase),
	}
	return &CelestialBody{
		ID:     "moon",
		Name:   "Moon",
		Mass:   MoonMass,
		Radius: MoonRadius,
		State: StateVector{
			Position: earthState.Position.Add(offset),
			Velocity: earthState.Velocity.Add(velOffset),
		},
		Type: BodyMoon,
	}
}

// NewAsteroid builds an asteroid from its orbital elements and estimated
// diameter. Mass follows from an assumed 2000 kg/m³ bulk density; the
// radiation cross-section is the geometric disk with reflectivity 0.1.
func NewAsteroid(id, name string, el OrbitalElements, diameter float64) *CelestialBody {
	radius := diameter / 2
	mass := asteroidDensity * (4.0 / 3.0) * math.Pi * radius * radius * radius
	elements := el
	return &CelestialBody{
		ID:               id,
		Name:             name,
		Mass:             mass,
		Radius:           radius,
		State:            ElementsToState(el, SunMu),
		Type:             BodyAsteroid,
		CrossSectionArea: math.Pi * radius * radius,
		Reflectivity:     0.1,
		Elements:         &elements,
	}
}
