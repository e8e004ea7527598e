package simulation

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/neowatch/neowatch/internal/physics"
)

// Monte-Carlo bounds and constants.
const (
	minMonteCarloRuns = 100
	maxMonteCarloRuns = 10000
	minHorizonDays    = 1
	maxHorizonDays    = 3650

	monteCarloStep = 3600.0 // seconds per leapfrog step
	sunExclusion   = 1e6    // meters; runs terminate inside this radius

	backgroundImpactRate = 1e-8 // f_B for the Palermo scale
	palermoFloor         = -10.0
)

// MonteCarloConfig parameterizes an impact-probability campaign.
// Uncertainties are 3-sigma values.
type MonteCarloConfig struct {
	PositionUncertainty float64 // meters
	VelocityUncertainty float64 // m/s
	Runs                int
	HorizonDays         float64
	CollisionRadius     float64 // meters; Earth radius when zero
}

// MonteCarloReport aggregates a campaign.
type MonteCarloReport struct {
	ID                string  `json:"id"`
	AsteroidID        string  `json:"asteroid_id"`
	Runs              int     `json:"runs"`
	Impacts           int     `json:"impacts"`
	ImpactProbability float64 `json:"impact_probability"`
	MeanMissKm        float64 `json:"mean_miss_km"`
	StdDevMissKm      float64 `json:"std_dev_miss_km"`
	MinMissKm         float64 `json:"min_miss_km"`
	PalermoScale      float64 `json:"palermo_scale"`
}

// lcg is the deterministic 64-bit linear congruential generator. Seeding
// from a stable hash of the asteroid id makes every campaign reproducible
// for a given id and draw order, independent of wall-clock.
type lcg struct {
	state uint64
}

func newLCG(seed string) *lcg {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return &lcg{state: h.Sum64()}
}

// next returns a uniform draw in [-1, 1].
func (l *lcg) next() float64 {
	l.state = l.state*1103515245 + 12345
	return float64((l.state>>16)%32768)/16383.5 - 1.0
}

// gaussian draws one Box-Muller normal deviate scaled by sigma.
func (l *lcg) gaussian(sigma float64) float64 {
	u1 := (l.next() + 1) / 2
	if u1 < 1e-10 {
		u1 = 1e-10
	}
	u2 := (l.next() + 1) / 2
	return sigma * math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// RunMonteCarlo samples the asteroid's orbital uncertainty and propagates
// each perturbed clone under two-body solar gravity, tracking the minimum
// Earth miss distance against an analytic circular 1-AU Earth.
func RunMonteCarlo(body *physics.CelestialBody, cfg MonteCarloConfig) (MonteCarloReport, error) {
	if body == nil {
		return MonteCarloReport{}, fmt.Errorf("no subject body")
	}

	runs := cfg.Runs
	if runs < minMonteCarloRuns {
		runs = minMonteCarloRuns
	}
	if runs > maxMonteCarloRuns {
		runs = maxMonteCarloRuns
	}
	days := cfg.HorizonDays
	if days < minHorizonDays {
		days = minHorizonDays
	}
	if days > maxHorizonDays {
		days = maxHorizonDays
	}
	collisionRadius := cfg.CollisionRadius
	if collisionRadius <= 0 {
		collisionRadius = physics.EarthRadius
	}

	rng := newLCG(body.ID)
	sigmaPos := cfg.PositionUncertainty / 3
	sigmaVel := cfg.VelocityUncertainty / 3

	horizon := days * physics.SecondsPerDay
	minima := make([]float64, 0, runs)
	impacts := 0

	for run := 0; run < runs; run++ {
		pos := physics.Vector3{
			X: body.State.Position.X + rng.gaussian(sigmaPos),
			Y: body.State.Position.Y + rng.gaussian(sigmaPos),
			Z: body.State.Position.Z + rng.gaussian(sigmaPos),
		}
		vel := physics.Vector3{
			X: body.State.Velocity.X + rng.gaussian(sigmaVel),
			Y: body.State.Velocity.Y + rng.gaussian(sigmaVel),
			Z: body.State.Velocity.Z + rng.gaussian(sigmaVel),
		}

		minDist, impacted := propagateClone(pos, vel, horizon, collisionRadius)
		minima = append(minima, minDist/1000)
		if impacted {
			impacts++
		}
	}

	probability := float64(impacts) / float64(runs)

	mean := stat.Mean(minima, nil)
	variance := stat.Variance(minima, nil)
	if variance < 0 {
		variance = 0
	}
	minMiss := minima[0]
	for _, m := range minima[1:] {
		if m < minMiss {
			minMiss = m
		}
	}

	palermo := palermoFloor
	if probability > 0 {
		years := days / physics.YearDays
		palermo = math.Log10(probability / (backgroundImpactRate * years))
	}

	return MonteCarloReport{
		ID:                uuid.NewString(),
		AsteroidID:        body.ID,
		Runs:              runs,
		Impacts:           impacts,
		ImpactProbability: probability,
		MeanMissKm:        mean,
		StdDevMissKm:      math.Sqrt(variance),
		MinMissKm:         minMiss,
		PalermoScale:      palermo,
	}, nil
}

// propagateClone advances one sampled clone with a symplectic leapfrog
// (kick-drift-kick) under Sun-only gravity, returning the minimum distance
// to the analytic Earth and whether that distance fell inside the collision
// radius. Clones falling within the solar exclusion zone terminate early.
func propagateClone(pos, vel physics.Vector3, horizonSeconds, collisionRadius float64) (float64, bool) {
	minDist := math.Inf(1)

	for t := 0.0; t < horizonSeconds; t += monteCarloStep {
		half := solarGravity(pos).Scale(monteCarloStep / 2)
		vel = vel.Add(half)
		pos = pos.Add(vel.Scale(monteCarloStep))
		vel = vel.Add(solarGravity(pos).Scale(monteCarloStep / 2))

		if pos.Magnitude() < sunExclusion {
			break
		}

		d := pos.Sub(earthCircular(t + monteCarloStep)).Magnitude()
		if d < minDist {
			minDist = d
		}
		if minDist < collisionRadius {
			return minDist, true
		}
	}
	return minDist, false
}

func solarGravity(pos physics.Vector3) physics.Vector3 {
	r := pos.Magnitude()
	if r < 1e-10 {
		return physics.Vector3{}
	}
	return pos.Normalize().Scale(-physics.SunMu / (r * r))
}

// earthCircular is the analytic Earth used by the analyzer: a circular
// 1-AU orbit phased by elapsed propagation time.
func earthCircular(t float64) physics.Vector3 {
	theta := 2 * math.Pi * t / (physics.YearDays * physics.SecondsPerDay)
	return physics.Vector3{
		X: physics.AU * math.Cos(theta),
		Y: physics.AU * math.Sin(theta),
	}
}
