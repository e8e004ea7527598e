package simulation

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/neowatch/neowatch/internal/physics"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestRunnerStartStop(t *testing.T) {
	runner := NewRunner(NewState(physics.J2000Epoch), quietLogger(), nil)

	if err := runner.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := runner.Start(context.Background()); err == nil {
		t.Error("second Start should fail while running")
	}

	runner.Stop()
	runner.Stop() // idempotent

	// Restart after stop.
	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	runner.Stop()
}

func TestFramePausedDoesNothing(t *testing.T) {
	state := NewState(physics.J2000Epoch)
	runner := NewRunner(state, quietLogger(), nil)

	runner.frame()

	if state.Time != 0 {
		t.Errorf("paused frame advanced time to %v", state.Time)
	}
}

func TestFrameAdvancesSimulation(t *testing.T) {
	state := NewState(physics.J2000Epoch)
	state.Paused = false
	runner := NewRunner(state, quietLogger(), nil)

	runner.frame()

	if state.Time <= 0 {
		t.Fatal("frame did not advance simulation time")
	}
	if state.JulianDate <= physics.J2000Epoch {
		t.Error("julian date did not advance")
	}
}

func TestFrameRespectsTimeScale(t *testing.T) {
	slow := NewState(physics.J2000Epoch)
	slow.Paused = false
	fast := NewState(physics.J2000Epoch)
	fast.Paused = false
	fast.SetTimeScale(600) // 10 sub-steps per frame

	NewRunner(slow, quietLogger(), nil).frame()
	NewRunner(fast, quietLogger(), nil).frame()

	if fast.Time <= slow.Time {
		t.Errorf("time scale 600 advanced %v, scale 1 advanced %v", fast.Time, slow.Time)
	}
}

func TestFrameKeepsSunImmobile(t *testing.T) {
	state := NewState(physics.J2000Epoch)
	state.Paused = false
	runner := NewRunner(state, quietLogger(), nil)

	for i := 0; i < 20; i++ {
		runner.frame()
	}

	sun := state.Body("sun")
	if sun.State.Position != (physics.Vector3{}) || sun.State.Velocity != (physics.Vector3{}) {
		t.Errorf("sun drifted: %+v", sun.State)
	}
}

func TestFrameRecomputesEnergy(t *testing.T) {
	state := NewState(physics.J2000Epoch)
	state.Paused = false
	runner := NewRunner(state, quietLogger(), nil)

	runner.frame()

	if state.TotalEnergy == 0 {
		t.Error("total energy not recomputed")
	}
	// A few frames of a healthy three-body system should show tiny drift.
	if state.EnergyDrift() > 1e-3 {
		t.Errorf("unexpectedly large energy drift %v", state.EnergyDrift())
	}
}

func TestWithReadAndWrite(t *testing.T) {
	runner := NewRunner(NewState(physics.J2000Epoch), quietLogger(), nil)

	err := runner.WithWrite(func(s *State) error {
		return s.AddAsteroid("w1", "W1", testElements(), 25)
	})
	if err != nil {
		t.Fatal(err)
	}

	var count int
	runner.WithRead(func(s *State) {
		count = s.AsteroidCount()
	})
	if count != 1 {
		t.Errorf("asteroid count = %d, want 1", count)
	}

	if runner.Snapshot().AsteroidCount != 1 {
		t.Error("snapshot does not reflect the write")
	}
}
