// Package decision turns simulation outputs into an architecture
// recommendation using a CapEx/OpEx model of commercial LEO operations.
package decision

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/leo-linksim/core"
)

// Cost assumptions in USD, industry averages for commercial LEO operations.
// Actual costs vary significantly by vendor, capability level, and production
// quantity.
const (
	CostPerGroundStationUSD    = 5_000_000 // medium-capability commercial station
	CostPerISLHardwareUSD      = 500_000   // laser terminal set per satellite
	CostPerSatelliteBaseUSD    = 2_000_000 // medium-size LEO bus, 50-200 kg
	AnnualGroundStationOpexUSD = 500_000
)

// CapexBreakdown itemises the up-front cost of one architecture.
type CapexBreakdown struct {
	GroundStationCostUSD float64 `json:"ground_station_cost_usd"`
	SatelliteCostUSD     float64 `json:"satellite_cost_usd"`
	ISLHardwareCostUSD   float64 `json:"isl_hardware_cost_usd"`
	TotalCapexUSD        float64 `json:"total_capex_usd"`
	GroundStations       int     `json:"num_ground_stations"`
	Satellites           int     `json:"num_satellites"`
}

// GroundOnlyCapex prices the ground-station-only architecture.
func GroundOnlyCapex(groundStations, satellites int) CapexBreakdown {
	gs := float64(groundStations) * CostPerGroundStationUSD
	sats := float64(satellites) * CostPerSatelliteBaseUSD
	return CapexBreakdown{
		GroundStationCostUSD: gs,
		SatelliteCostUSD:     sats,
		TotalCapexUSD:        gs + sats,
		GroundStations:       groundStations,
		Satellites:           satellites,
	}
}

// CrosslinkedCapex prices the crosslinked architecture, which carries ISL
// hardware on every satellite but needs fewer ground stations.
func CrosslinkedCapex(groundStations, satellites int) CapexBreakdown {
	gs := float64(groundStations) * CostPerGroundStationUSD
	sats := float64(satellites) * CostPerSatelliteBaseUSD
	isl := float64(satellites) * CostPerISLHardwareUSD
	return CapexBreakdown{
		GroundStationCostUSD: gs,
		SatelliteCostUSD:     sats,
		ISLHardwareCostUSD:   isl,
		TotalCapexUSD:        gs + sats + isl,
		GroundStations:       groundStations,
		Satellites:           satellites,
	}
}

// Comparison holds the cost delta between the two architectures.
type Comparison struct {
	GroundOnly  CapexBreakdown `json:"ground_station_only"`
	Crosslinked CapexBreakdown `json:"crosslinked"`

	CostSavingsUSD         float64 `json:"cost_savings_usd"`
	SavingsPercentage      float64 `json:"savings_percentage"`
	GroundStationReduction int     `json:"ground_station_reduction"`
	GSReductionPercentage  float64 `json:"gs_reduction_percentage"`

	Recommendation core.ArchitectureKind `json:"recommendation"`
}

// Compare prices both architectures for a constellation of the given size.
// gsGroundOnly is the full station network; gsCrosslinked is the minimal
// network the crosslinked architecture keeps.
func Compare(satellites, gsGroundOnly, gsCrosslinked int) (Comparison, error) {
	if satellites <= 0 {
		return Comparison{}, fmt.Errorf("satellite count must be positive, got %d", satellites)
	}
	if gsGroundOnly <= 0 || gsCrosslinked <= 0 {
		return Comparison{}, fmt.Errorf("ground station counts must be positive, got %d and %d", gsGroundOnly, gsCrosslinked)
	}

	groundOnly := GroundOnlyCapex(gsGroundOnly, satellites)
	crosslinked := CrosslinkedCapex(gsCrosslinked, satellites)

	savings := groundOnly.TotalCapexUSD - crosslinked.TotalCapexUSD
	reduction := gsGroundOnly - gsCrosslinked

	recommendation := core.ArchitectureGroundOnly
	if savings > 0 {
		recommendation = core.ArchitectureCrosslinked
	}

	return Comparison{
		GroundOnly:             groundOnly,
		Crosslinked:            crosslinked,
		CostSavingsUSD:         savings,
		SavingsPercentage:      savings / groundOnly.TotalCapexUSD * 100,
		GroundStationReduction: reduction,
		GSReductionPercentage:  float64(reduction) / float64(gsGroundOnly) * 100,
		Recommendation:         recommendation,
	}, nil
}

// TippingPointSatellites returns the smallest constellation size at which the
// ISL hardware bill stays below the savings from retired ground stations.
func TippingPointSatellites(gsGroundOnly, gsCrosslinked int) int {
	saved := gsGroundOnly - gsCrosslinked
	if saved <= 0 {
		return 1
	}
	savings := float64(saved) * CostPerGroundStationUSD
	n := int(math.Ceil(savings / CostPerISLHardwareUSD))
	if n < 1 {
		n = 1
	}
	return n
}

// OperationalCostUSD is the station operations bill over the mission lifetime.
func OperationalCostUSD(groundStations, years int) float64 {
	return float64(groundStations) * AnnualGroundStationOpexUSD * float64(years)
}

// PaybackAnalysis folds station OpEx over the mission lifetime into the CapEx
// delta.
type PaybackAnalysis struct {
	CapexSavingsUSD      float64 `json:"capex_savings_usd"`
	AnnualOpexSavingsUSD float64 `json:"annual_opex_savings_usd"`
	TotalOpexSavingsUSD  float64 `json:"total_opex_savings_usd"`
	TotalSavingsUSD      float64 `json:"total_savings_usd"`
	PaybackYears         float64 `json:"payback_years"`
	MissionYears         int     `json:"mission_years"`
}

// Payback computes lifetime savings and, when the crosslinked architecture
// costs more up front, the years of OpEx savings needed to recover the
// difference. PaybackYears is +Inf when the extra spend never pays back.
func Payback(cmp Comparison, missionYears int) PaybackAnalysis {
	annualOpexSavings := float64(cmp.GroundOnly.GroundStations-cmp.Crosslinked.GroundStations) * AnnualGroundStationOpexUSD
	totalOpexSavings := annualOpexSavings * float64(missionYears)

	paybackYears := 0.0
	if cmp.CostSavingsUSD < 0 {
		extra := -cmp.CostSavingsUSD
		if annualOpexSavings > 0 {
			paybackYears = extra / annualOpexSavings
		} else {
			paybackYears = math.Inf(1)
		}
	}

	return PaybackAnalysis{
		CapexSavingsUSD:      cmp.CostSavingsUSD,
		AnnualOpexSavingsUSD: annualOpexSavings,
		TotalOpexSavingsUSD:  totalOpexSavings,
		TotalSavingsUSD:      cmp.CostSavingsUSD + totalOpexSavings,
		PaybackYears:         paybackYears,
		MissionYears:         missionYears,
	}
}
