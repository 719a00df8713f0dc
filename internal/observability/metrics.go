package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/leo-linksim/core"
)

// SimulationCollector bundles Prometheus metrics for simulation runs and
// implements core.MetricsRecorder so the simulator can drive it directly.
type SimulationCollector struct {
	gatherer prometheus.Gatherer

	RunsTotal    *prometheus.CounterVec
	RunDurations *prometheus.HistogramVec
	RunRecords   *prometheus.HistogramVec

	Evaluations *prometheus.CounterVec

	CoveragePercent *prometheus.GaugeVec
	UptimePercent   *prometheus.GaugeVec
}

// NewSimulationCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewSimulationCollector(reg prometheus.Registerer) (*SimulationCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linksim_runs_total",
		Help: "Total number of completed architecture runs, labeled by architecture.",
	}, []string{"architecture"})
	runs, err := registerCounterVec(reg, runs, "linksim_runs_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linksim_run_duration_seconds",
		Help:    "Wall-clock duration of one architecture run in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"architecture"})
	durations, err = registerHistogramVec(reg, durations, "linksim_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	records := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linksim_run_records",
		Help:    "Number of link evaluation records produced per run.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	}, []string{"architecture"})
	records, err = registerHistogramVec(reg, records, "linksim_run_records")
	if err != nil {
		return nil, err
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linksim_link_evaluations_total",
		Help: "Total number of link evaluations, labeled by architecture, link type, and feasibility.",
	}, []string{"architecture", "link_type", "feasible"})
	evaluations, err = registerCounterVec(reg, evaluations, "linksim_link_evaluations_total")
	if err != nil {
		return nil, err
	}

	coverage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linksim_coverage_percent",
		Help: "Coverage percentage of the most recent run, labeled by architecture.",
	}, []string{"architecture"})
	coverage, err = registerGaugeVec(reg, coverage, "linksim_coverage_percent")
	if err != nil {
		return nil, err
	}

	uptime := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linksim_uptime_percent",
		Help: "Uptime percentage of the most recent run, labeled by architecture.",
	}, []string{"architecture"})
	uptime, err = registerGaugeVec(reg, uptime, "linksim_uptime_percent")
	if err != nil {
		return nil, err
	}

	return &SimulationCollector{
		gatherer:        gatherer,
		RunsTotal:       runs,
		RunDurations:    durations,
		RunRecords:      records,
		Evaluations:     evaluations,
		CoveragePercent: coverage,
		UptimePercent:   uptime,
	}, nil
}

// ObserveRun records the completion of one architecture run.
func (c *SimulationCollector) ObserveRun(architecture core.ArchitectureKind, seconds float64, records int) {
	if c == nil {
		return
	}
	arch := string(architecture)
	if c.RunsTotal != nil {
		c.RunsTotal.WithLabelValues(arch).Inc()
	}
	if c.RunDurations != nil {
		c.RunDurations.WithLabelValues(arch).Observe(seconds)
	}
	if c.RunRecords != nil {
		c.RunRecords.WithLabelValues(arch).Observe(float64(records))
	}
}

// ObserveEvaluation counts one link evaluation.
func (c *SimulationCollector) ObserveEvaluation(architecture core.ArchitectureKind, link core.LinkKind, feasible bool) {
	if c == nil || c.Evaluations == nil {
		return
	}
	c.Evaluations.WithLabelValues(string(architecture), string(link), fmt.Sprintf("%t", feasible)).Inc()
}

// SetSummary publishes the aggregate metrics of the most recent run for an
// architecture.
func (c *SimulationCollector) SetSummary(architecture core.ArchitectureKind, summary core.MetricsSummary) {
	if c == nil {
		return
	}
	arch := string(architecture)
	if c.CoveragePercent != nil {
		c.CoveragePercent.WithLabelValues(arch).Set(summary.CoveragePercentage)
	}
	if c.UptimePercent != nil {
		c.UptimePercent.WithLabelValues(arch).Set(summary.UptimePercentage)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimulationCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
