// Package api exposes the simulator's command surface over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/neowatch/neowatch/internal/api/response"
	"github.com/neowatch/neowatch/internal/neows"
	"github.com/neowatch/neowatch/internal/observability"
	"github.com/neowatch/neowatch/internal/physics"
	"github.com/neowatch/neowatch/internal/simulation"
	"github.com/neowatch/neowatch/internal/utils"
)

// Handler implements the command surface against the simulation runner and
// the NeoWs adapter.
type Handler struct {
	runner  *simulation.Runner
	client  *neows.Client
	cache   *neows.Cache
	log     *logrus.Entry
	metrics *observability.Metrics
}

// NewHandler wires the command surface.
func NewHandler(runner *simulation.Runner, client *neows.Client, cache *neows.Cache, log *logrus.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{
		runner:  runner,
		client:  client,
		cache:   cache,
		log:     utils.Component(log, "api"),
		metrics: metrics,
	}
}

func (h *Handler) count(verb, status string) {
	if h.metrics != nil {
		h.metrics.CommandsTotal.WithLabelValues(verb, status).Inc()
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, verb string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, verb, utils.FaultFrom(utils.FaultBadInput, err, "invalid JSON body"))
		return false
	}
	return true
}

// fail classifies err and renders it; the fault kind drives both the
// metric label and the wire envelope.
func (h *Handler) fail(w http.ResponseWriter, verb string, err error) {
	f := utils.AsFault(err)
	h.count(verb, f.Kind.Code())
	response.Fail(w, f)
}

// GetSimulationState returns the full frontend projection.
func (h *Handler) GetSimulationState(w http.ResponseWriter, r *http.Request) {
	h.count("get_simulation_state", "ok")
	response.Success(w, http.StatusOK, h.runner.Snapshot())
}

// SetPaused sets the pause flag.
func (h *Handler) SetPaused(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if !h.decode(w, r, "set_paused", &req) {
		return
	}
	h.runner.WithWrite(func(s *simulation.State) error {
		s.Paused = req.Paused
		return nil
	})
	h.count("set_paused", "ok")
	response.Success(w, http.StatusOK, map[string]bool{"paused": req.Paused})
}

// SetTimeScale writes the clamped real-to-sim multiplier.
func (h *Handler) SetTimeScale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeScale float64 `json:"time_scale"`
	}
	if !h.decode(w, r, "set_time_scale", &req) {
		return
	}
	var applied float64
	h.runner.WithWrite(func(s *simulation.State) error {
		s.SetTimeScale(req.TimeScale)
		applied = s.TimeScale
		return nil
	})
	h.count("set_time_scale", "ok")
	response.Success(w, http.StatusOK, map[string]float64{"time_scale": applied})
}

// SetTimeStep writes the clamped base timestep.
func (h *Handler) SetTimeStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TimeStep float64 `json:"time_step"`
	}
	if !h.decode(w, r, "set_time_step", &req) {
		return
	}
	var applied float64
	h.runner.WithWrite(func(s *simulation.State) error {
		s.SetTimeStep(req.TimeStep)
		applied = s.Dt
		return nil
	})
	h.count("set_time_step", "ok")
	response.Success(w, http.StatusOK, map[string]float64{"time_step": applied})
}

// ResetSimulation rebuilds the initial Sun+Earth+Moon configuration.
func (h *Handler) ResetSimulation(w http.ResponseWriter, r *http.Request) {
	h.runner.WithWrite(func(s *simulation.State) error {
		s.Reset(physics.J2000Epoch)
		return nil
	})
	h.count("reset_simulation", "ok")
	response.Success(w, http.StatusOK, h.runner.Snapshot())
}

// DeflectionResult reports a deflection with the approach estimate before
// and after, so the UI can show the improvement.
type DeflectionResult struct {
	Applied physics.Vector3           `json:"applied_delta_v"`
	Before  simulation.ApproachResult `json:"approach_before"`
	After   simulation.ApproachResult `json:"approach_after"`
}

// ApplyDeflection applies a kinetic impulse to a named body.
func (h *Handler) ApplyDeflection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string     `json:"id"`
		DeltaV [3]float64 `json:"delta_v"` // m/s
	}
	if !h.decode(w, r, "apply_deflection", &req) {
		return
	}
	if req.ID == "" {
		h.fail(w, "apply_deflection", utils.Faultf(utils.FaultMissingInput, "body id is required"))
		return
	}

	var result DeflectionResult
	err := h.runner.WithWrite(func(s *simulation.State) error {
		if s.Body(req.ID) == nil {
			return utils.Faultf(utils.FaultNotFound, "body %q not found", req.ID)
		}
		before, err := s.EarthApproach(req.ID)
		if err != nil {
			return err
		}
		dv := physics.Vector3{X: req.DeltaV[0], Y: req.DeltaV[1], Z: req.DeltaV[2]}
		s.ApplyImpulse(req.ID, dv)
		after, err := s.EarthApproach(req.ID)
		if err != nil {
			return err
		}
		result = DeflectionResult{Applied: dv, Before: before, After: after}
		return nil
	})
	if err != nil {
		h.fail(w, "apply_deflection", err)
		return
	}
	h.count("apply_deflection", "ok")
	response.Success(w, http.StatusOK, result)
}

// ApplyIonBeam applies a continuous-thrust session as one integrated
// impulse.
func (h *Handler) ApplyIonBeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        string     `json:"id"`
		Direction [3]float64 `json:"direction"`
		Magnitude float64    `json:"magnitude"` // m/s²
		Duration  float64    `json:"duration"`  // seconds
	}
	if !h.decode(w, r, "apply_ion_beam", &req) {
		return
	}
	if req.ID == "" {
		h.fail(w, "apply_ion_beam", utils.Faultf(utils.FaultMissingInput, "body id is required"))
		return
	}

	err := h.runner.WithWrite(func(s *simulation.State) error {
		if s.Body(req.ID) == nil {
			return utils.Faultf(utils.FaultNotFound, "body %q not found", req.ID)
		}
		dir := physics.Vector3{X: req.Direction[0], Y: req.Direction[1], Z: req.Direction[2]}
		return s.ApplyIonBeam(req.ID, dir, req.Magnitude, req.Duration)
	})
	if err != nil {
		h.fail(w, "apply_ion_beam", err)
		return
	}
	h.count("apply_ion_beam", "ok")
	response.Success(w, http.StatusOK, map[string]string{"status": "applied"})
}

// ApplyGravityTractor runs a tractor session with clamped spacecraft mass
// and hover altitude.
func (h *Handler) ApplyGravityTractor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID             string  `json:"id"`
		SpacecraftMass float64 `json:"spacecraft_mass"` // kg
		HoverAltitude  float64 `json:"hover_altitude"`  // meters
		DurationDays   float64 `json:"duration_days"`
	}
	if !h.decode(w, r, "apply_gravity_tractor", &req) {
		return
	}
	if req.ID == "" {
		h.fail(w, "apply_gravity_tractor", utils.Faultf(utils.FaultMissingInput, "body id is required"))
		return
	}

	mass := clampFloat(req.SpacecraftMass, 500, 50000)
	hover := clampFloat(req.HoverAltitude, 50, 500)

	var result physics.GravityTractorResult
	err := h.runner.WithWrite(func(s *simulation.State) error {
		var err error
		result, err = s.ApplyGravityTractor(req.ID, mass, hover, req.DurationDays*physics.SecondsPerDay)
		if err != nil {
			return utils.FaultFrom(utils.FaultNotFound, err, "body %q not found", req.ID)
		}
		return nil
	})
	if err != nil {
		h.fail(w, "apply_gravity_tractor", err)
		return
	}
	h.count("apply_gravity_tractor", "ok")
	response.Success(w, http.StatusOK, result)
}

// GetImpactPrediction reports the closest-approach estimate for a body.
func (h *Handler) GetImpactPrediction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var result simulation.ApproachResult
	var err error
	h.runner.WithRead(func(s *simulation.State) {
		result, err = s.EarthApproach(id)
	})
	if err != nil {
		h.fail(w, "get_impact_prediction", utils.FaultFrom(utils.FaultNotFound, err, "body %q not found", id))
		return
	}
	h.count("get_impact_prediction", "ok")
	response.Success(w, http.StatusOK, result)
}

// RunMonteCarlo executes an impact-probability campaign for a body.
func (h *Handler) RunMonteCarlo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		PositionUncertaintyKm float64 `json:"position_uncertainty_km"`
		VelocityUncertainty   float64 `json:"velocity_uncertainty_m_s"`
		Runs                  int     `json:"runs"`
		HorizonDays           float64 `json:"horizon_days"`
	}
	if !h.decode(w, r, "run_monte_carlo", &req) {
		return
	}

	var report simulation.MonteCarloReport
	var err error
	h.runner.WithRead(func(s *simulation.State) {
		body := s.Body(id)
		if body == nil {
			err = utils.Faultf(utils.FaultNotFound, "body %q not found", id)
			return
		}
		report, err = simulation.RunMonteCarlo(body, simulation.MonteCarloConfig{
			PositionUncertainty: req.PositionUncertaintyKm * 1000,
			VelocityUncertainty: req.VelocityUncertainty,
			Runs:                req.Runs,
			HorizonDays:         req.HorizonDays,
		})
	})
	if err != nil {
		h.fail(w, "run_monte_carlo", err)
		return
	}
	h.count("run_monte_carlo", "ok")
	response.Success(w, http.StatusOK, report)
}

// GetBodyDetails returns the projection of one body.
func (h *Handler) GetBodyDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto simulation.BodyDTO
	var err error
	h.runner.WithRead(func(s *simulation.State) {
		dto, err = s.BodyDetails(id)
	})
	if err != nil {
		h.fail(w, "get_body_details", utils.FaultFrom(utils.FaultNotFound, err, "body %q not found", id))
		return
	}
	h.count("get_body_details", "ok")
	response.Success(w, http.StatusOK, dto)
}

// SetAPIKey stores the NASA API key.
func (h *Handler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if !h.decode(w, r, "set_api_key", &req) {
		return
	}
	if req.APIKey == "" {
		h.fail(w, "set_api_key", utils.Faultf(utils.FaultMissingInput, "api_key is required"))
		return
	}
	h.client.SetAPIKey(req.APIKey)
	h.count("set_api_key", "ok")
	response.Success(w, http.StatusOK, map[string]string{"status": "stored"})
}

// FetchAsteroids fetches a NeoWs feed window and appends the parsed
// asteroids to the simulation. Network I/O happens before the write lock
// is taken.
func (h *Handler) FetchAsteroids(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if !h.decode(w, r, "fetch_asteroids", &req) {
		return
	}

	start := time.Now().UTC()
	end := start.AddDate(0, 0, 7)
	var err error
	if req.StartDate != "" {
		if start, err = time.Parse("2006-01-02", req.StartDate); err != nil {
			h.fail(w, "fetch_asteroids", utils.FaultFrom(utils.FaultBadInput, err, "invalid start_date"))
			return
		}
	}
	if req.EndDate != "" {
		if end, err = time.Parse("2006-01-02", req.EndDate); err != nil {
			h.fail(w, "fetch_asteroids", utils.FaultFrom(utils.FaultBadInput, err, "invalid end_date"))
			return
		}
	}

	asteroids, err := h.client.FetchFeed(r.Context(), start, end)
	if err != nil {
		h.fail(w, "fetch_asteroids", utils.FaultFrom(utils.FaultUpstream, err, "NeoWs feed fetch failed"))
		return
	}

	added := h.loadAsteroids(asteroids)
	h.count("fetch_asteroids", "ok")
	response.Success(w, http.StatusOK, map[string]int{"fetched": len(asteroids), "added": added})
}

// FetchMoreAsteroids pulls one page of the NeoWs catalogue and reports
// where that page sits in it.
func (h *Handler) FetchMoreAsteroids(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if !h.decode(w, r, "fetch_more_asteroids", &req) {
		return
	}

	asteroids, totalPages, err := h.client.FetchBrowse(r.Context(), req.Page)
	if err != nil {
		h.fail(w, "fetch_more_asteroids", utils.FaultFrom(utils.FaultUpstream, err, "NeoWs browse fetch failed"))
		return
	}

	added := h.loadAsteroids(asteroids)
	h.count("fetch_more_asteroids", "ok")
	response.Paginated(w, map[string]int{"fetched": len(asteroids), "added": added}, response.PageMeta{
		Page:       req.Page,
		TotalPages: totalPages,
		Count:      len(asteroids),
	})
}

// FetchAsteroidByID pulls a single asteroid record.
func (h *Handler) FetchAsteroidByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.fail(w, "fetch_asteroid_by_id", utils.Faultf(utils.FaultMissingInput, "asteroid id is required"))
		return
	}

	asteroid, err := h.client.FetchByID(r.Context(), id)
	if err != nil {
		h.fail(w, "fetch_asteroid_by_id", utils.FaultFrom(utils.FaultUpstream, err, "NeoWs lookup failed"))
		return
	}

	added := h.loadAsteroids([]neows.Asteroid{asteroid})
	h.count("fetch_asteroid_by_id", "ok")
	response.Success(w, http.StatusOK, map[string]interface{}{"asteroid": asteroid, "added": added})
}

// GetCachedAsteroids returns the cache snapshot.
func (h *Handler) GetCachedAsteroids(w http.ResponseWriter, r *http.Request) {
	h.count("get_cached_asteroids", "ok")
	response.Success(w, http.StatusOK, map[string]interface{}{
		"asteroids": h.cache.Snapshot(),
		"expired":   h.cache.Expired(),
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadAsteroids caches parsed records and appends new ones to the
// simulation, returning how many were added. Duplicates are skipped.
func (h *Handler) loadAsteroids(asteroids []neows.Asteroid) int {
	h.cache.Put(asteroids)

	added := 0
	h.runner.WithWrite(func(s *simulation.State) error {
		for _, a := range asteroids {
			if err := s.AddAsteroid(a.ID, a.Name, a.Elements, a.Diameter); err != nil {
				h.log.WithField("asteroid", a.ID).Debugf("skipping: %v", err)
				continue
			}
			added++
			if h.metrics != nil {
				h.metrics.AsteroidsLoaded.Inc()
			}
		}
		return nil
	})
	return added
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
