package core

import (
	"math"
	"testing"
)

func feasibleRecord(step int, tMin, latency float64) LinkEvaluation {
	return LinkEvaluation{
		TimeStep:    step,
		TimeMinutes: tMin,
		SatelliteID: "SAT_01",
		Type:        ArchitectureGroundOnly,
		LinkType:    LinkSatelliteToGround,
		PeerID:      "GS_01",
		DistanceM:   1e6,
		SNRdB:       20,
		IsFeasible:  true,
		LatencyMs:   latency,
		Coverage:    1,
	}
}

func sentinelRecord(step int, tMin float64) LinkEvaluation {
	return LinkEvaluation{
		TimeStep:    step,
		TimeMinutes: tMin,
		SatelliteID: "SAT_01",
		Type:        ArchitectureGroundOnly,
		LinkType:    LinkSatelliteToGround,
		DistanceM:   math.NaN(),
		SNRdB:       math.Inf(-1),
		IsFeasible:  false,
		LatencyMs:   math.NaN(),
		Coverage:    0,
	}
}

func TestCalculateCoverageMetrics_SkipsNaNLatencies(t *testing.T) {
	records := []LinkEvaluation{
		feasibleRecord(0, 0, 10),
		feasibleRecord(1, 1, 20),
		feasibleRecord(2, 2, 30),
		sentinelRecord(3, 3),
		sentinelRecord(4, 4),
	}

	summary, err := CalculateCoverageMetrics(records)
	if err != nil {
		t.Fatalf("CalculateCoverageMetrics: %v", err)
	}

	if math.Abs(summary.AverageLatencyMs-20) > 1e-12 {
		t.Errorf("average latency = %v, want 20 (NaN entries excluded)", summary.AverageLatencyMs)
	}
	if math.Abs(summary.FeasiblePercentage-60) > 1e-12 {
		t.Errorf("feasible percentage = %v, want 60", summary.FeasiblePercentage)
	}
	if math.Abs(summary.CoveragePercentage-60) > 1e-12 {
		t.Errorf("coverage percentage = %v, want 60", summary.CoveragePercentage)
	}
}

func TestCalculateCoverageMetrics_SNRIncludesSentinels(t *testing.T) {
	records := []LinkEvaluation{
		feasibleRecord(0, 0, 10),
		sentinelRecord(1, 1),
	}
	summary, err := CalculateCoverageMetrics(records)
	if err != nil {
		t.Fatalf("CalculateCoverageMetrics: %v", err)
	}
	// −∞ sentinels are deliberately included: they punish no-link slots.
	if !math.IsInf(summary.AverageSNRdB, -1) {
		t.Errorf("average SNR = %v, want -Inf", summary.AverageSNRdB)
	}
}

func TestCalculateCoverageMetrics_DowntimeFromSpan(t *testing.T) {
	// 50% coverage over a 10-minute span.
	records := []LinkEvaluation{
		feasibleRecord(0, 0, 10),
		sentinelRecord(1, 10),
	}
	summary, err := CalculateCoverageMetrics(records)
	if err != nil {
		t.Fatalf("CalculateCoverageMetrics: %v", err)
	}
	if math.Abs(summary.DowntimeMinutes-5) > 1e-12 {
		t.Errorf("downtime = %v minutes, want 5", summary.DowntimeMinutes)
	}
	if math.Abs(summary.UptimePercentage-50) > 1e-12 {
		t.Errorf("uptime = %v%%, want 50", summary.UptimePercentage)
	}
}

func TestCalculateCoverageMetrics_AllNaNLatency(t *testing.T) {
	records := []LinkEvaluation{sentinelRecord(0, 0), sentinelRecord(1, 1)}
	summary, err := CalculateCoverageMetrics(records)
	if err != nil {
		t.Fatalf("CalculateCoverageMetrics: %v", err)
	}
	if !math.IsNaN(summary.AverageLatencyMs) {
		t.Errorf("average latency = %v, want NaN when no latencies exist", summary.AverageLatencyMs)
	}
	if summary.CoveragePercentage != 0 {
		t.Errorf("coverage = %v, want 0", summary.CoveragePercentage)
	}
}

func TestCalculateCoverageMetrics_EmptyStream(t *testing.T) {
	if _, err := CalculateCoverageMetrics(nil); err == nil {
		t.Fatal("expected error for empty record stream")
	}
}

func TestCalculateCoverageMetrics_SingleInstant(t *testing.T) {
	records := []LinkEvaluation{feasibleRecord(0, 0, 10)}
	summary, err := CalculateCoverageMetrics(records)
	if err != nil {
		t.Fatalf("CalculateCoverageMetrics: %v", err)
	}
	if summary.DowntimeMinutes != 0 || summary.UptimePercentage != 100 {
		t.Errorf("zero-span stream: downtime=%v uptime=%v, want 0/100",
			summary.DowntimeMinutes, summary.UptimePercentage)
	}
}
