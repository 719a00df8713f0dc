package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/leo-linksim/core"
)

func TestCompare_DefaultScenario(t *testing.T) {
	// 6 satellites, 5-station full network vs 2-station crosslinked network.
	cmp, err := Compare(6, 5, 2)
	require.NoError(t, err)

	// Ground-only: 5*$5M + 6*$2M = $37M.
	assert.InDelta(t, 37_000_000, cmp.GroundOnly.TotalCapexUSD, 1)
	assert.Zero(t, cmp.GroundOnly.ISLHardwareCostUSD)

	// Crosslinked: 2*$5M + 6*$2M + 6*$0.5M = $25M.
	assert.InDelta(t, 25_000_000, cmp.Crosslinked.TotalCapexUSD, 1)
	assert.InDelta(t, 3_000_000, cmp.Crosslinked.ISLHardwareCostUSD, 1)

	assert.InDelta(t, 12_000_000, cmp.CostSavingsUSD, 1)
	assert.InDelta(t, 12.0/37.0*100, cmp.SavingsPercentage, 1e-9)
	assert.Equal(t, 3, cmp.GroundStationReduction)
	assert.InDelta(t, 60, cmp.GSReductionPercentage, 1e-9)
	assert.Equal(t, core.ArchitectureCrosslinked, cmp.Recommendation)
}

func TestCompare_LargeConstellationFavorsGroundOnly(t *testing.T) {
	// With no station reduction the ISL hardware is pure extra cost.
	cmp, err := Compare(40, 5, 5)
	require.NoError(t, err)

	assert.Negative(t, cmp.CostSavingsUSD)
	assert.Equal(t, core.ArchitectureGroundOnly, cmp.Recommendation)
}

func TestCompare_Validation(t *testing.T) {
	_, err := Compare(0, 5, 2)
	assert.Error(t, err)
	_, err = Compare(6, 0, 2)
	assert.Error(t, err)
	_, err = Compare(6, 5, 0)
	assert.Error(t, err)
}

func TestTippingPointSatellites(t *testing.T) {
	// 3 stations retired saves $15M; at $500K per ISL set that funds 30 birds.
	assert.Equal(t, 30, TippingPointSatellites(5, 2))

	// No stations retired: crosslinks never pay, floor at 1.
	assert.Equal(t, 1, TippingPointSatellites(2, 2))
	assert.Equal(t, 1, TippingPointSatellites(2, 5))
}

func TestOperationalCostUSD(t *testing.T) {
	assert.InDelta(t, 12_500_000, OperationalCostUSD(5, 5), 1)
	assert.Zero(t, OperationalCostUSD(0, 10))
}

func TestPayback_ImmediateSavings(t *testing.T) {
	cmp, err := Compare(6, 5, 2)
	require.NoError(t, err)

	pb := Payback(cmp, 10)
	assert.Zero(t, pb.PaybackYears, "cheaper up front pays back immediately")
	assert.InDelta(t, 1_500_000, pb.AnnualOpexSavingsUSD, 1)
	assert.InDelta(t, 15_000_000, pb.TotalOpexSavingsUSD, 1)
	assert.InDelta(t, cmp.CostSavingsUSD+15_000_000, pb.TotalSavingsUSD, 1)
	assert.Equal(t, 10, pb.MissionYears)
}

func TestPayback_ExtraInvestmentRecovered(t *testing.T) {
	// 40 sats, one station retired: crosslinked costs $15M more up front but
	// saves $500K OpEx per year.
	cmp, err := Compare(40, 5, 4)
	require.NoError(t, err)
	require.Negative(t, cmp.CostSavingsUSD)

	pb := Payback(cmp, 10)
	assert.InDelta(t, -cmp.CostSavingsUSD/pb.AnnualOpexSavingsUSD, pb.PaybackYears, 1e-9)
	assert.Positive(t, pb.PaybackYears)
}

func TestPayback_NeverRecovered(t *testing.T) {
	// Same station count: extra ISL spend with zero OpEx savings.
	cmp, err := Compare(10, 5, 5)
	require.NoError(t, err)

	pb := Payback(cmp, 10)
	assert.True(t, math.IsInf(pb.PaybackYears, 1))
	assert.Zero(t, pb.AnnualOpexSavingsUSD)
}
