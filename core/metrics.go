package core

import (
	"fmt"
	"math"
)

// CalculateCoverageMetrics reduces a record stream into the per-architecture
// summary. The stream's sentinel conventions matter here:
//
//   - NaN latencies (no-link records) are excluded from the latency mean; a
//     plain mean would silently poison the average.
//   - −Inf SNR sentinels are included in the SNR mean on purpose: they
//     penalise architectures with many no-link time slots.
//
// An empty stream is a caller error, not an empty summary.
func CalculateCoverageMetrics(records []LinkEvaluation) (MetricsSummary, error) {
	if len(records) == 0 {
		return MetricsSummary{}, fmt.Errorf("calculate coverage metrics: no records")
	}

	var (
		coverageSum float64
		feasible    int
		snrSum      float64

		latencySum   float64
		latencyCount int

		minT = math.Inf(1)
		maxT = math.Inf(-1)
	)

	for _, rec := range records {
		coverageSum += rec.Coverage
		if rec.IsFeasible {
			feasible++
		}
		snrSum += rec.SNRdB

		if !math.IsNaN(rec.LatencyMs) {
			latencySum += rec.LatencyMs
			latencyCount++
		}

		if rec.TimeMinutes < minT {
			minT = rec.TimeMinutes
		}
		if rec.TimeMinutes > maxT {
			maxT = rec.TimeMinutes
		}
	}

	n := float64(len(records))
	coverageMean := coverageSum / n

	avgLatency := math.NaN()
	if latencyCount > 0 {
		avgLatency = latencySum / float64(latencyCount)
	}

	summary := MetricsSummary{
		CoveragePercentage: coverageMean * 100,
		FeasiblePercentage: float64(feasible) / n * 100,
		AverageLatencyMs:   avgLatency,
		AverageSNRdB:       snrSum / n,
	}

	// Downtime is measured over the stream's observed time span. A
	// single-step stream has no span; report it as fully up for whatever
	// instant it covers.
	span := maxT - minT
	if span > 0 {
		summary.DowntimeMinutes = span * (1 - coverageMean)
		summary.UptimePercentage = 100 - summary.DowntimeMinutes/span*100
	} else {
		summary.DowntimeMinutes = 0
		summary.UptimePercentage = 100
	}

	return summary, nil
}
