// Package server exposes the link simulator as a decision-support HTTP API.
package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/leo-linksim/core"
	"github.com/signalsfoundry/leo-linksim/internal/archive"
	"github.com/signalsfoundry/leo-linksim/internal/decision"
	"github.com/signalsfoundry/leo-linksim/internal/logging"
	"github.com/signalsfoundry/leo-linksim/internal/observability"
)

// Server wires the simulator, cost model, and run archive behind a gin router.
type Server struct {
	store   *archive.Store
	log     logging.Logger
	metrics *observability.SimulationCollector
	api     *observability.APICollector
	tracer  trace.Tracer
}

// NewServer builds a Server. store may be nil, in which case runs are not
// archived and the runs endpoints report the archive as unavailable.
func NewServer(store *archive.Store, log logging.Logger, metrics *observability.SimulationCollector, api *observability.APICollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		store:   store,
		log:     log,
		metrics: metrics,
		api:     api,
		tracer:  otel.Tracer("linksim.server"),
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.api != nil {
		router.Use(s.api.Middleware())
	}

	router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/simulate", s.handleSimulate)
	v1.GET("/runs", s.handleListRuns)
	v1.GET("/runs/:id", s.handleGetRun)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// SimulateRequest parameterises one comparison run. Zero values select the
// stock mission defaults.
type SimulateRequest struct {
	Satellites              int     `json:"satellites"`
	AltitudeKm              float64 `json:"altitude_km"`
	TimeSteps               int     `json:"time_steps"`
	OrbitPeriodMinutes      float64 `json:"orbit_period_minutes"`
	RequiredSNRdB           float64 `json:"required_snr_db"`
	MinElevationDeg         float64 `json:"min_elevation_deg"`
	CrosslinkGroundStations int     `json:"crosslink_ground_stations"`
	MissionYears            int     `json:"mission_years"`
	Workers                 int     `json:"workers"`
}

func (r *SimulateRequest) applyDefaults() {
	if r.Satellites == 0 {
		r.Satellites = 6
	}
	if r.AltitudeKm == 0 {
		r.AltitudeKm = 500
	}
	if r.TimeSteps == 0 {
		r.TimeSteps = 50
	}
	if r.OrbitPeriodMinutes == 0 {
		r.OrbitPeriodMinutes = 90
	}
	if r.CrosslinkGroundStations == 0 {
		r.CrosslinkGroundStations = 2
	}
	if r.MissionYears == 0 {
		r.MissionYears = 10
	}
}

// MetricsJSON mirrors core.MetricsSummary with nullable means so the response
// stays valid JSON when a stream carries NaN or -Inf sentinels.
type MetricsJSON struct {
	AverageLatencyMs   *float64 `json:"average_latency_ms"`
	AverageSNRdB       *float64 `json:"average_snr_dB"`
	CoveragePercentage float64  `json:"coverage_percentage"`
	FeasiblePercentage float64  `json:"feasible_percentage"`
	DowntimeMinutes    float64  `json:"downtime_minutes"`
	UptimePercentage   float64  `json:"uptime_percentage"`
}

func metricsJSON(summary core.MetricsSummary) MetricsJSON {
	return MetricsJSON{
		AverageLatencyMs:   finitePtr(summary.AverageLatencyMs),
		AverageSNRdB:       finitePtr(summary.AverageSNRdB),
		CoveragePercentage: summary.CoveragePercentage,
		FeasiblePercentage: summary.FeasiblePercentage,
		DowntimeMinutes:    summary.DowntimeMinutes,
		UptimePercentage:   summary.UptimePercentage,
	}
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ArchitectureReport is the per-architecture slice of a simulate response.
type ArchitectureReport struct {
	Records int         `json:"records"`
	Metrics MetricsJSON `json:"metrics"`
}

// SimulateResponse is the full decision-support payload for one run.
type SimulateResponse struct {
	RunID              string                   `json:"run_id,omitempty"`
	Satellites         int                      `json:"satellites"`
	GroundStations     int                      `json:"ground_stations"`
	TimeSteps          int                      `json:"time_steps"`
	OrbitPeriodMinutes float64                  `json:"orbit_period_minutes"`
	GroundStationOnly  ArchitectureReport       `json:"ground_station_only"`
	Crosslinked        ArchitectureReport       `json:"crosslinked"`
	Cost               decision.Comparison      `json:"cost"`
	Payback            decision.PaybackAnalysis `json:"payback"`
	TippingPoint       int                      `json:"tipping_point_satellites"`
	Recommendation     core.ArchitectureKind    `json:"recommendation"`
}

func (s *Server) handleSimulate(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "simulate")
	defer span.End()

	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.applyDefaults()
	span.SetAttributes(
		attribute.Int("linksim.satellites", req.Satellites),
		attribute.Int("linksim.time_steps", req.TimeSteps),
	)

	sats, err := core.NewConstellation(req.Satellites, req.AltitudeKm, core.DefaultRFConfig())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stations := core.DefaultGroundStations()

	opts := []core.Option{}
	if s.metrics != nil {
		opts = append(opts, core.WithMetricsRecorder(s.metrics))
	}
	if req.Workers > 1 {
		opts = append(opts, core.WithWorkers(req.Workers))
	}
	sim, err := core.NewSimulator(sats, stations, opts...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := core.RunConfig{
		TimeSteps:               req.TimeSteps,
		OrbitPeriodMinutes:      req.OrbitPeriodMinutes,
		RequiredSNRdB:           req.RequiredSNRdB,
		MinElevationDeg:         req.MinElevationDeg,
		CrosslinkGroundStations: req.CrosslinkGroundStations,
	}
	result, err := sim.RunComparison(ctx, cfg)
	if err != nil {
		var cfgErr *core.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error(ctx, "comparison run failed", logging.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulation failed"})
		return
	}

	groundMetrics, err := core.CalculateCoverageMetrics(result.GroundStationOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	crossMetrics, err := core.CalculateCoverageMetrics(result.Crosslinked)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.SetSummary(core.ArchitectureGroundOnly, groundMetrics)
		s.metrics.SetSummary(core.ArchitectureCrosslinked, crossMetrics)
	}

	cost, err := decision.Compare(req.Satellites, len(stations), req.CrosslinkGroundStations)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := SimulateResponse{
		Satellites:         req.Satellites,
		GroundStations:     len(stations),
		TimeSteps:          req.TimeSteps,
		OrbitPeriodMinutes: req.OrbitPeriodMinutes,
		GroundStationOnly: ArchitectureReport{
			Records: len(result.GroundStationOnly),
			Metrics: metricsJSON(groundMetrics),
		},
		Crosslinked: ArchitectureReport{
			Records: len(result.Crosslinked),
			Metrics: metricsJSON(crossMetrics),
		},
		Cost:           cost,
		Payback:        decision.Payback(cost, req.MissionYears),
		TippingPoint:   decision.TippingPointSatellites(len(stations), req.CrosslinkGroundStations),
		Recommendation: cost.Recommendation,
	}

	if s.store != nil {
		run := &archive.RunRecord{
			Satellites:         req.Satellites,
			GroundStations:     len(stations),
			TimeSteps:          req.TimeSteps,
			OrbitPeriodMinutes: req.OrbitPeriodMinutes,
			Recommendation:     string(cost.Recommendation),
			Metrics: map[core.ArchitectureKind]core.MetricsSummary{
				core.ArchitectureGroundOnly:  groundMetrics,
				core.ArchitectureCrosslinked: crossMetrics,
			},
		}
		if err := s.store.SaveRun(ctx, run); err != nil {
			s.log.Error(ctx, "failed to archive run", logging.String("error", err.Error()))
		} else {
			resp.RunID = run.ID
		}
	}

	s.log.Info(ctx, "comparison run complete",
		logging.Int("satellites", req.Satellites),
		logging.Int("time_steps", req.TimeSteps),
		logging.Float64("ground_coverage_pct", groundMetrics.CoveragePercentage),
		logging.Float64("crosslinked_coverage_pct", crossMetrics.CoveragePercentage),
		logging.String("recommendation", string(cost.Recommendation)),
	)

	c.JSON(http.StatusOK, resp)
}

// RunSummaryJSON is one element of the runs listing.
type RunSummaryJSON struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	Satellites         int       `json:"satellites"`
	GroundStations     int       `json:"ground_stations"`
	TimeSteps          int       `json:"time_steps"`
	OrbitPeriodMinutes float64   `json:"orbit_period_minutes"`
	Recommendation     string    `json:"recommendation"`
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run archive not configured"})
		return
	}

	runs, err := s.store.ListRuns(c.Request.Context(), 100)
	if err != nil {
		s.log.Error(c.Request.Context(), "failed to list runs", logging.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	out := make([]RunSummaryJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunSummaryJSON{
			ID:                 run.ID,
			CreatedAt:          run.CreatedAt,
			Satellites:         run.Satellites,
			GroundStations:     run.GroundStations,
			TimeSteps:          run.TimeSteps,
			OrbitPeriodMinutes: run.OrbitPeriodMinutes,
			Recommendation:     run.Recommendation,
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": out})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run archive not configured"})
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error(c.Request.Context(), "failed to get run", logging.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	metrics := make(map[string]MetricsJSON, len(run.Metrics))
	for arch, summary := range run.Metrics {
		metrics[string(arch)] = metricsJSON(summary)
	}
	c.JSON(http.StatusOK, gin.H{
		"run": RunSummaryJSON{
			ID:                 run.ID,
			CreatedAt:          run.CreatedAt,
			Satellites:         run.Satellites,
			GroundStations:     run.GroundStations,
			TimeSteps:          run.TimeSteps,
			OrbitPeriodMinutes: run.OrbitPeriodMinutes,
			Recommendation:     run.Recommendation,
		},
		"metrics": metrics,
	})
}
