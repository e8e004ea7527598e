// Package simulation owns the mutable simulation world: body composition,
// deflection operators, the Monte-Carlo impact analyzer, and the background
// stepping loop that drives the integrator.
package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/neowatch/neowatch/internal/physics"
)

const (
	// Effective sub-step count per frame is clamped to this range.
	minStepsPerFrame = 1
	maxStepsPerFrame = 100

	// Pair separations below this many Earth radii shrink the timestep.
	adaptiveThresholdRadii = 100.0

	hazardDistanceKm = 7.5e6
)

// State is the simulation world. It carries no lock of its own; the Runner
// serializes all access behind a single reader-writer lock.
type State struct {
	Bodies     []*physics.CelestialBody
	Time       float64 // seconds since construction epoch
	JulianDate float64
	Dt         float64 // base timestep, seconds
	TimeScale  float64
	Paused     bool

	TotalEnergy   float64
	initialEnergy float64
}

// NewState seeds a paused Sun+Earth+Moon system at the given Julian Date
// and baselines the initial energy. The baseline is never re-captured
// except by Reset.
func NewState(jd float64) *State {
	s := &State{
		JulianDate: jd,
		Dt:         3600,
		TimeScale:  1,
		Paused:     true,
	}
	s.seed(jd)
	return s
}

func (s *State) seed(jd float64) {
	earth := physics.NewEarth(jd)
	s.Bodies = []*physics.CelestialBody{
		physics.NewSun(),
		earth,
		physics.NewMoon(earth.State, jd),
	}
	s.Time = 0
	s.JulianDate = jd
	s.TotalEnergy = physics.TotalEnergy(s.Bodies)
	s.initialEnergy = s.TotalEnergy
}

// Reset restores the initial three-body configuration at the given Julian
// Date, discarding all asteroids and re-baselining the energy.
func (s *State) Reset(jd float64) {
	s.seed(jd)
	s.Paused = true
}

// Body returns the body with the given id, or nil.
func (s *State) Body(id string) *physics.CelestialBody {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// AddAsteroid appends an asteroid built from its elements and diameter.
// Duplicate ids and non-elliptic eccentricities are rejected.
func (s *State) AddAsteroid(id, name string, el physics.OrbitalElements, diameter float64) error {
	if id == "" {
		return fmt.Errorf("asteroid id is required")
	}
	if el.Eccentricity < 0 || el.Eccentricity >= 1 {
		return fmt.Errorf("eccentricity %v outside [0,1)", el.Eccentricity)
	}
	if s.Body(id) != nil {
		return fmt.Errorf("body %q already exists", id)
	}
	s.Bodies = append(s.Bodies, physics.NewAsteroid(id, name, el, diameter))
	return nil
}

// ApplyImpulse adds Δv to the named body's velocity. Unknown ids are a
// silent no-op.
func (s *State) ApplyImpulse(id string, deltaV physics.Vector3) {
	if body := s.Body(id); body != nil {
		physics.ApplyKineticImpulse(body, deltaV)
	}
}

// ApplyIonBeam applies an ion-beam session as one integrated impulse.
func (s *State) ApplyIonBeam(id string, direction physics.Vector3, accel, durationSeconds float64) error {
	body := s.Body(id)
	if body == nil {
		return fmt.Errorf("body %q not found", id)
	}
	physics.ApplyIonBeam(body, direction, accel, durationSeconds)
	return nil
}

// ApplyGravityTractor runs a tractor session against the named body.
func (s *State) ApplyGravityTractor(id string, spacecraftMass, hoverAltitude, durationSeconds float64) (physics.GravityTractorResult, error) {
	body := s.Body(id)
	if body == nil {
		return physics.GravityTractorResult{}, fmt.Errorf("body %q not found", id)
	}
	return physics.ApplyGravityTractor(body, spacecraftMass, hoverAltitude, durationSeconds, 0), nil
}

// ApproachResult is the closest-approach estimate for a body relative to
// Earth under linear relative motion.
type ApproachResult struct {
	BodyID        string  `json:"body_id"`
	MinDistanceKm float64 `json:"min_distance_km"`
	TimeToDays    float64 `json:"time_to_closest_days"`
	Hazardous     bool    `json:"hazardous"`
}

// EarthApproach estimates the minimum Earth distance assuming straight-line
// relative motion: t* = -(r·v)/‖v‖². A receding body (t* ≤ 0) reports the
// current separation at t = 0.
func (s *State) EarthApproach(id string) (ApproachResult, error) {
	body := s.Body(id)
	if body == nil {
		return ApproachResult{}, fmt.Errorf("body %q not found", id)
	}
	earth := s.Body("earth")
	if earth == nil {
		return ApproachResult{}, fmt.Errorf("earth missing from simulation")
	}

	rel := body.State.Position.Sub(earth.State.Position)
	vel := body.State.Velocity.Sub(earth.State.Velocity)

	v2 := vel.Dot(vel)
	var tStar, minDist float64
	if v2 < 1e-20 {
		minDist = rel.Magnitude()
	} else {
		tStar = -rel.Dot(vel) / v2
		if tStar > 0 {
			minDist = rel.Add(vel.Scale(tStar)).Magnitude()
		} else {
			tStar = 0
			minDist = rel.Magnitude()
		}
	}

	km := minDist / 1000
	return ApproachResult{
		BodyID:        id,
		MinDistanceKm: km,
		TimeToDays:    tStar / physics.SecondsPerDay,
		Hazardous:     km < hazardDistanceKm,
	}, nil
}

// AdaptiveTimeStep shrinks the base timestep when any body pair closes
// inside 100 Earth radii, scaling linearly with the closest separation.
// The result is floored at 1% of base and clamped to [1 s, base].
func (s *State) AdaptiveTimeStep(base float64) float64 {
	threshold := adaptiveThresholdRadii * physics.EarthRadius
	dt := base

	for i := range s.Bodies {
		for j := i + 1; j < len(s.Bodies); j++ {
			d := s.Bodies[j].State.Position.Sub(s.Bodies[i].State.Position).Magnitude()
			if d >= threshold {
				continue
			}
			scaled := base * (d / threshold)
			if scaled < 0.01*base {
				scaled = 0.01 * base
			}
			if scaled < dt {
				dt = scaled
			}
		}
	}

	if dt < 1 {
		dt = 1
	}
	if dt > base {
		dt = base
	}
	return dt
}

// SetTimeScale clamps and writes the real-to-sim multiplier.
func (s *State) SetTimeScale(scale float64) {
	if scale < 1 {
		scale = 1
	}
	if scale > 1e6 {
		scale = 1e6
	}
	s.TimeScale = scale
}

// SetTimeStep clamps and writes the base timestep in seconds.
func (s *State) SetTimeStep(dt float64) {
	if dt < 1 {
		dt = 1
	}
	if dt > 86400 {
		dt = 86400
	}
	s.Dt = dt
}

// StepsPerFrame derives the sub-step count from the time scale, clamped to
// [1, 100].
func (s *State) StepsPerFrame() int {
	steps := int(s.TimeScale / 60)
	if steps < minStepsPerFrame {
		steps = minStepsPerFrame
	}
	if steps > maxStepsPerFrame {
		steps = maxStepsPerFrame
	}
	return steps
}

// Advance moves the simulation clock by dt seconds.
func (s *State) Advance(dt float64) {
	s.Time += dt
	s.JulianDate += dt / physics.SecondsPerDay
}

// RecomputeEnergy refreshes the running total mechanical energy.
func (s *State) RecomputeEnergy() {
	s.TotalEnergy = physics.TotalEnergy(s.Bodies)
}

// EnergyDrift is the relative departure from the construction baseline.
// NaN introduced by a malformed body contaminates this value but never
// aborts the simulation; it is the caller's detection signal.
func (s *State) EnergyDrift() float64 {
	if s.initialEnergy == 0 {
		return 0
	}
	return math.Abs(s.TotalEnergy-s.initialEnergy) / math.Abs(s.initialEnergy)
}

// AsteroidCount reports the number of asteroid bodies.
func (s *State) AsteroidCount() int {
	n := 0
	for _, b := range s.Bodies {
		if b.Type == physics.BodyAsteroid {
			n++
		}
	}
	return n
}

// BodyDTO is the frontend projection of one body: positions in AU, radii
// in km, velocities in km/s.
type BodyDTO struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       physics.BodyType `json:"type"`
	PositionAU [3]float64       `json:"position_au"`
	VelocityKS [3]float64       `json:"velocity_km_s"`
	RadiusKm   float64          `json:"radius_km"`
	MassKg     float64          `json:"mass_kg"`
}

// StateDTO is the frontend projection of the world.
type StateDTO struct {
	Bodies        []BodyDTO `json:"bodies"`
	Time          float64   `json:"time"`
	JulianDate    float64   `json:"julian_date"`
	UTC           time.Time `json:"utc"`
	Paused        bool      `json:"paused"`
	TimeScale     float64   `json:"time_scale"`
	TimeStep      float64   `json:"time_step"`
	EnergyDrift   float64   `json:"energy_drift"`
	AsteroidCount int       `json:"asteroid_count"`
}

// Snapshot projects the world into boundary units.
func (s *State) Snapshot() StateDTO {
	bodies := make([]BodyDTO, 0, len(s.Bodies))
	for _, b := range s.Bodies {
		bodies = append(bodies, toBodyDTO(b))
	}
	return StateDTO{
		Bodies:        bodies,
		Time:          s.Time,
		JulianDate:    s.JulianDate,
		UTC:           julian.JDToTime(s.JulianDate),
		Paused:        s.Paused,
		TimeScale:     s.TimeScale,
		TimeStep:      s.Dt,
		EnergyDrift:   s.EnergyDrift(),
		AsteroidCount: s.AsteroidCount(),
	}
}

// BodyDetails projects a single body, or an error for unknown ids.
func (s *State) BodyDetails(id string) (BodyDTO, error) {
	body := s.Body(id)
	if body == nil {
		return BodyDTO{}, fmt.Errorf("body %q not found", id)
	}
	return toBodyDTO(body), nil
}

func toBodyDTO(b *physics.CelestialBody) BodyDTO {
	return BodyDTO{
		ID:   b.ID,
		Name: b.Name,
		Type: b.Type,
		PositionAU: [3]float64{
			b.State.Position.X / physics.AU,
			b.State.Position.Y / physics.AU,
			b.State.Position.Z / physics.AU,
		},
		VelocityKS: [3]float64{
			b.State.Velocity.X / 1000,
			b.State.Velocity.Y / 1000,
			b.State.Velocity.Z / 1000,
		},
		RadiusKm: b.Radius / 1000,
		MassKg:   b.Mass,
	}
}
