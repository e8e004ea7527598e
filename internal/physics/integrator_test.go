package physics

import (
	"math"
	"testing"
)

func twoBodySystem() []*CelestialBody {
	sun := NewSun()
	earth := NewEarth(J2000Epoch)
	return []*CelestialBody{sun, earth}
}

func TestEnergyConservationTwoBody(t *testing.T) {
	bodies := twoBodySystem()
	in := NewIntegrator(IntegratorConfig{Dt: 3600})

	initial := TotalEnergy(bodies)
	for i := 0; i < 100; i++ {
		in.Step(bodies, Vector3{}, J2000Epoch)
	}
	final := TotalEnergy(bodies)

	drift := math.Abs(final-initial) / math.Abs(initial)
	if drift >= 1e-6 {
		t.Errorf("energy drift %v over 100 hourly steps", drift)
	}
}

func TestStepLeavesSunImmobile(t *testing.T) {
	bodies := twoBodySystem()
	in := NewIntegrator(DefaultIntegratorConfig(3600))

	for i := 0; i < 50; i++ {
		in.Step(bodies, Vector3{}, J2000Epoch)
	}

	sun := bodies[0]
	if sun.State.Position != (Vector3{}) || sun.State.Velocity != (Vector3{}) {
		t.Errorf("sun moved: pos=%v vel=%v", sun.State.Position, sun.State.Velocity)
	}
}

func TestGravityPointsInward(t *testing.T) {
	bodies := twoBodySystem()
	in := NewIntegrator(IntegratorConfig{Dt: 60})

	earth := bodies[1]
	acc := in.Acceleration(earth, bodies, Vector3{}, J2000Epoch)

	// Acceleration must point toward the Sun.
	if acc.Dot(earth.State.Position) >= 0 {
		t.Error("gravitational acceleration does not point sunward")
	}

	// Magnitude near μ/r².
	r := earth.State.Position.Magnitude()
	want := SunMu / (r * r)
	if math.Abs(acc.Magnitude()-want)/want > 1e-3 {
		t.Errorf("acceleration magnitude %v, want about %v", acc.Magnitude(), want)
	}
}

func TestSRPZeroWithoutCrossSection(t *testing.T) {
	body := &CelestialBody{
		ID:   "probe",
		Mass: 1000,
		Type: BodySpacecraft,
		State: StateVector{
			Position: Vector3{X: AU},
		},
	}
	if got := radiationPressure(body, Vector3{}); got != (Vector3{}) {
		t.Errorf("SRP on zero-area body = %v, want zero", got)
	}
}

func TestSRPFallsOffWithDistance(t *testing.T) {
	near := &CelestialBody{
		Mass:             1e6,
		CrossSectionArea: 100,
		Reflectivity:     0.1,
		State:            StateVector{Position: Vector3{X: AU}},
	}
	far := &CelestialBody{
		Mass:             1e6,
		CrossSectionArea: 100,
		Reflectivity:     0.1,
		State:            StateVector{Position: Vector3{X: 2 * AU}},
	}

	aNear := radiationPressure(near, Vector3{}).Magnitude()
	aFar := radiationPressure(far, Vector3{}).Magnitude()
	if aNear <= 0 || aFar <= 0 {
		t.Fatal("expected nonzero SRP on both bodies")
	}
	if math.Abs(aNear/aFar-4) > 1e-9 {
		t.Errorf("SRP ratio at 1 vs 2 AU = %v, want 4 (inverse square)", aNear/aFar)
	}

	// Outward, away from the Sun.
	if radiationPressure(near, Vector3{}).X <= 0 {
		t.Error("SRP does not push radially outward")
	}
}

func TestSRPMassClamp(t *testing.T) {
	dust := &CelestialBody{
		Mass:             1e-3, // below the 1 kg clamp
		CrossSectionArea: 1,
		State:            StateVector{Position: Vector3{X: AU}},
	}
	clamped := &CelestialBody{
		Mass:             1,
		CrossSectionArea: 1,
		State:            StateVector{Position: Vector3{X: AU}},
	}
	if radiationPressure(dust, Vector3{}) != radiationPressure(clamped, Vector3{}) {
		t.Error("sub-kilogram mass not clamped to 1 kg")
	}
}

func TestJ2RangeGate(t *testing.T) {
	earth := NewEarth(J2000Epoch)

	testCases := []struct {
		name     string
		offset   float64
		wantZero bool
	}{
		{"inside surface", EarthRadius * 0.5, true},
		{"low orbit", EarthRadius + 400e3, false},
		{"outer bound", 9.9e8, false},
		{"beyond gate", 1.1e9, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := &CelestialBody{
				ID:   "sat",
				Mass: 1000,
				Type: BodySpacecraft,
				State: StateVector{
					Position: earth.State.Position.Add(Vector3{X: tc.offset * 0.6, Z: tc.offset * 0.8}),
				},
			}
			got := j2Perturbation(body, earth)
			if tc.wantZero && got != (Vector3{}) {
				t.Errorf("expected zero J2 outside gate, got %v", got)
			}
			if !tc.wantZero && got == (Vector3{}) {
				t.Error("expected nonzero J2 inside gate")
			}
		})
	}
}

func TestYarkovskyGates(t *testing.T) {
	base := func() *CelestialBody {
		return NewAsteroid("y", "Y", OrbitalElements{
			SemiMajorAxis: 1.5 * AU,
			Eccentricity:  0.1,
			Epoch:         J2000Epoch,
		}, 100)
	}

	t.Run("asteroid gets prograde drift", func(t *testing.T) {
		ast := base()
		drift := yarkovskyDrift(ast, Vector3{})
		if drift == (Vector3{}) {
			t.Fatal("expected nonzero Yarkovsky drift")
		}
		// Tangential in the ecliptic: no radial or vertical component.
		radial := ast.State.Position.Normalize()
		if math.Abs(drift.Normalize().Dot(radial)) > 1e-9 {
			t.Error("drift has a radial component")
		}
		if drift.Z != 0 {
			t.Error("drift has a vertical component")
		}
		if drift.Dot(ast.State.Velocity) <= 0 {
			t.Error("drift is not prograde")
		}
	})

	t.Run("non-asteroid excluded", func(t *testing.T) {
		ast := base()
		ast.Type = BodySpacecraft
		if yarkovskyDrift(ast, Vector3{}) != (Vector3{}) {
			t.Error("Yarkovsky applied to a non-asteroid")
		}
	})

	t.Run("sub-meter excluded", func(t *testing.T) {
		ast := base()
		ast.Radius = 0.4
		if yarkovskyDrift(ast, Vector3{}) != (Vector3{}) {
			t.Error("Yarkovsky applied below 1 m diameter")
		}
	})

	t.Run("too close to sun excluded", func(t *testing.T) {
		ast := base()
		ast.State.Position = Vector3{X: 0.05 * AU}
		if yarkovskyDrift(ast, Vector3{}) != (Vector3{}) {
			t.Error("Yarkovsky applied inside 0.1 AU")
		}
	})
}

func TestPlanetPerturbationNearField(t *testing.T) {
	jupiterPos := jupiterEphemeris.position(J2000Epoch)
	if got := JupiterPerturbation(jupiterPos, J2000Epoch); got != (Vector3{}) {
		t.Errorf("perturbation at planet position = %v, want zero", got)
	}

	acc := JupiterPerturbation(Vector3{X: AU}, J2000Epoch)
	if acc == (Vector3{}) {
		t.Fatal("expected nonzero Jupiter attraction at 1 AU")
	}

	// Attraction points toward Jupiter.
	toward := jupiterEphemeris.position(J2000Epoch).Sub(Vector3{X: AU})
	if acc.Dot(toward) <= 0 {
		t.Error("perturbation does not point toward Jupiter")
	}
}

func TestPlanetEphemerisRanges(t *testing.T) {
	for _, tc := range []struct {
		name string
		eph  planetEphemeris
	}{
		{"jupiter", jupiterEphemeris},
		{"mars", marsEphemeris},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for days := 0.0; days < 2*tc.eph.period; days += tc.eph.period / 7 {
				r := tc.eph.position(J2000Epoch + days).Magnitude()
				min := tc.eph.a * (1 - tc.eph.e) * 0.999
				max := tc.eph.a * (1 + tc.eph.e) * 1.001
				if r < min || r > max {
					t.Errorf("day %.0f: heliocentric distance %v outside [%v, %v]", days, r, min, max)
				}
			}
		})
	}
}

func TestApplyIonBeamIntegratedImpulse(t *testing.T) {
	body := &CelestialBody{Mass: 1e9, Type: BodyAsteroid}
	ApplyIonBeam(body, Vector3{X: 2, Y: 0, Z: 0}, 1e-5, 86400)

	want := 1e-5 * 86400
	if math.Abs(body.State.Velocity.X-want) > 1e-12 {
		t.Errorf("Δv = %v, want %v", body.State.Velocity.X, want)
	}
	if body.State.Velocity.Y != 0 || body.State.Velocity.Z != 0 {
		t.Error("ion beam thrust leaked into other axes")
	}
}

func TestApplyGravityTractor(t *testing.T) {
	body := &CelestialBody{
		Mass:   1e10,
		Radius: 100,
		Type:   BodyAsteroid,
		State:  StateVector{Velocity: Vector3{X: 20e3}},
	}
	res := ApplyGravityTractor(body, 20000, 150, 30*SecondsPerDay, 0)

	sep := 100.0 + 150.0
	wantAccel := GravitationalG * 20000 / (sep * sep)
	if math.Abs(res.Acceleration-wantAccel)/wantAccel > 1e-12 {
		t.Errorf("tractor acceleration = %v, want %v", res.Acceleration, wantAccel)
	}

	wantDV := wantAccel * 30 * SecondsPerDay
	if math.Abs(res.DeltaV-wantDV)/wantDV > 1e-12 {
		t.Errorf("session Δv = %v, want %v", res.DeltaV, wantDV)
	}
	if math.Abs(body.State.Velocity.X-(20e3+wantDV)) > 1e-9 {
		t.Error("Δv not applied along the velocity vector")
	}
	if res.DeflectionDays <= 0 {
		t.Error("deflection time estimate must be positive")
	}
}

func TestPoyntingRobertsonGate(t *testing.T) {
	boulder := &CelestialBody{
		Mass:             1e6,
		Radius:           2,
		CrossSectionArea: 10,
		State:            StateVector{Position: Vector3{X: AU}},
	}
	if PoyntingRobertsonDrag(boulder, Vector3{}) != (Vector3{}) {
		t.Error("PR drag applied to a body above 1 m radius")
	}

	grain := &CelestialBody{
		Mass:             0.5,
		Radius:           0.01,
		CrossSectionArea: 1e-4,
		State: StateVector{
			Position: Vector3{X: AU},
			Velocity: Vector3{Y: 29.8e3},
		},
	}
	drag := PoyntingRobertsonDrag(grain, Vector3{})
	if drag == (Vector3{}) {
		t.Fatal("expected nonzero PR drag on a dust grain")
	}
	// Drag opposes the transverse motion.
	if drag.Dot(grain.State.Velocity) >= 0 {
		t.Error("PR drag does not oppose the orbital motion")
	}
}
