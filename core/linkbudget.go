package core

import (
	"fmt"
	"math"
)

// Default link-budget parameters. RequiredSNRdB is the single global
// feasibility gate; every downstream coverage statistic moves with it.
const (
	DefaultAtmosphericLossDB = 2.0
	DefaultSystemLossDB      = 3.0
	DefaultBandwidthHz       = 1e6
	DefaultSystemTempK       = 290.0
	RequiredSNRdB            = 10.0
	DefaultProcessingDelayMs = 5.0

	// GroundProcessingPenaltyMs is the fixed extra delay charged to every
	// ground-station hop. It is a model choice, not physically derived, and
	// it is what makes ground latency dwarf crosslink latency in typical
	// runs.
	GroundProcessingPenaltyMs = 50.0
)

// FriisReceivedPower computes received power in dBW using the Friis
// transmission equation in the log domain:
//
//	Pr = Pt + Gt + Gr − FSPL − atmosphericLoss − systemLoss
//	FSPL = 20·log10(4π·d/λ), λ = c/f
//
// A non-positive distance is an invariant violation (co-located entities do
// not occur in orbital geometry) and fails loudly rather than feeding a
// log(0) into downstream metrics.
func FriisReceivedPower(txPowerDBW, txGainDBi, rxGainDBi, distanceM, frequencyHz, atmosphericLossDB, systemLossDB float64) (float64, error) {
	if distanceM <= 0 {
		return 0, fmt.Errorf("friis: non-positive distance %g m", distanceM)
	}
	if frequencyHz <= 0 {
		return 0, fmt.Errorf("friis: non-positive frequency %g Hz", frequencyHz)
	}

	wavelength := SpeedOfLight / frequencyHz
	pathLossDB := 20 * math.Log10(4*math.Pi*distanceM/wavelength)

	totalLossDB := pathLossDB + atmosphericLossDB + systemLossDB
	return txPowerDBW + txGainDBi + rxGainDBi - totalLossDB, nil
}

// SNR converts received power into a signal-to-noise ratio against thermal
// noise kTB. It returns both the dB and linear forms.
func SNR(receivedPowerDBW, bandwidthHz, systemTempK float64) (snrDB, snrLinear float64) {
	receivedLinear := math.Pow(10, receivedPowerDBW/10)
	noiseLinear := BoltzmannConstant * systemTempK * bandwidthHz

	snrLinear = receivedLinear / noiseLinear
	snrDB = 10 * math.Log10(snrLinear)
	return snrDB, snrLinear
}

// LinkMargin is the SNR headroom above the required threshold.
func LinkMargin(snrDB, requiredSNRdB float64) float64 {
	return snrDB - requiredSNRdB
}

// IsFeasible reports whether the link closes. The comparison is ≥, so an SNR
// exactly at the threshold is feasible.
func IsFeasible(snrDB, requiredSNRdB float64) bool {
	return snrDB >= requiredSNRdB
}

// Latency returns the one-way latency in milliseconds: propagation at the
// speed of light plus a processing delay. Ground hops pay the fixed
// additional ground-processing penalty; crosslinks do not.
func Latency(distanceM, processingDelayMs float64, isCrosslink bool) float64 {
	propagationMs := distanceM / SpeedOfLight * 1000
	if !isCrosslink {
		processingDelayMs += GroundProcessingPenaltyMs
	}
	return propagationMs + processingDelayMs
}
