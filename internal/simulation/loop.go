package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/neowatch/neowatch/internal/observability"
	"github.com/neowatch/neowatch/internal/physics"
	"github.com/neowatch/neowatch/internal/utils"
)

// framePeriod is the target cadence of the background stepping loop.
const framePeriod = 16 * time.Millisecond

// Runner drives the integrator on a dedicated worker and mediates all
// access to the State behind a single reader-writer lock. Commands read
// through WithRead and mutate through WithWrite; the worker serializes its
// frames against both.
type Runner struct {
	mu         sync.RWMutex
	state      *State
	integrator *physics.Integrator

	log     *logrus.Entry
	metrics *observability.Metrics

	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRunner wraps a State with the stepping worker. The integrator starts
// with the default configuration: J2, SRP and Yarkovsky enabled.
func NewRunner(state *State, log *logrus.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		state:      state,
		integrator: physics.NewIntegrator(physics.DefaultIntegratorConfig(state.Dt)),
		log:        utils.Component(log, "simulation"),
		metrics:    metrics,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the background stepping worker. Starting twice is an
// error.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx)

	r.log.Info("stepping loop started")
	return nil
}

// Stop halts the worker cooperatively and waits for the current frame to
// finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	r.wg.Wait()
	r.log.Info("stepping loop stopped")
}

func (r *Runner) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.frame()
		}
	}
}

// frame advances the world by one display frame. The loop never propagates
// errors: a malformed body contaminates the energy drift, which readers
// detect through the DTO, but the worker keeps running.
func (r *Runner) frame() {
	r.mu.RLock()
	paused := r.state.Paused
	r.mu.RUnlock()
	if paused {
		return
	}

	start := time.Now()

	r.mu.Lock()
	steps := r.state.StepsPerFrame()
	dt := r.state.AdaptiveTimeStep(r.state.Dt)
	r.integrator.SetDt(dt)

	sunPosition := r.state.Bodies[0].State.Position
	for i := 0; i < steps; i++ {
		r.integrator.Step(r.state.Bodies, sunPosition, r.state.JulianDate)
		r.state.Advance(dt)
	}
	r.state.RecomputeEnergy()

	drift := r.state.EnergyDrift()
	bodyCount := len(r.state.Bodies)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.SimFramesTotal.Inc()
		r.metrics.SimStepDuration.Observe(time.Since(start).Seconds())
		r.metrics.SimBodyCount.Set(float64(bodyCount))
		r.metrics.SimEnergyDrift.Set(drift)
	}
}

// WithRead runs fn with shared access to the state.
func (r *Runner) WithRead(fn func(*State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.state)
}

// WithWrite runs fn with exclusive access to the state.
func (r *Runner) WithWrite(fn func(*State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.state)
}

// Snapshot returns the frontend projection under a read lock.
func (r *Runner) Snapshot() StateDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Snapshot()
}
