package archive

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/leo-linksim/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &RunRecord{
		Satellites:         6,
		GroundStations:     5,
		TimeSteps:          50,
		OrbitPeriodMinutes: 90,
		Recommendation:     "crosslinked",
		Metrics: map[core.ArchitectureKind]core.MetricsSummary{
			core.ArchitectureCrosslinked: {
				AverageLatencyMs:   12.5,
				AverageSNRdB:       18.7,
				CoveragePercentage: 100,
				FeasiblePercentage: 100,
				DowntimeMinutes:    0,
				UptimePercentage:   100,
			},
		},
	}

	require.NoError(t, store.SaveRun(ctx, run))
	assert.NotEmpty(t, run.ID, "SaveRun should assign a run ID")
	assert.False(t, run.CreatedAt.IsZero())

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 6, got.Satellites)
	assert.Equal(t, "crosslinked", got.Recommendation)

	summary, ok := got.Metrics[core.ArchitectureCrosslinked]
	require.True(t, ok)
	assert.InDelta(t, 12.5, summary.AverageLatencyMs, 1e-9)
	assert.InDelta(t, 18.7, summary.AverageSNRdB, 1e-9)
	assert.InDelta(t, 100, summary.CoveragePercentage, 1e-9)
}

func TestSaveRun_NonFiniteStoredAsNull(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &RunRecord{
		Satellites:         2,
		GroundStations:     5,
		TimeSteps:          10,
		OrbitPeriodMinutes: 90,
		Metrics: map[core.ArchitectureKind]core.MetricsSummary{
			core.ArchitectureGroundOnly: {
				AverageLatencyMs:   math.NaN(),
				AverageSNRdB:       math.Inf(-1),
				CoveragePercentage: 0,
				FeasiblePercentage: 0,
				DowntimeMinutes:    90,
				UptimePercentage:   0,
			},
		},
	}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	summary := got.Metrics[core.ArchitectureGroundOnly]
	assert.True(t, math.IsNaN(summary.AverageLatencyMs), "NULL latency restores NaN")
	assert.True(t, math.IsInf(summary.AverageSNRdB, -1), "NULL SNR restores -Inf")
	assert.InDelta(t, 90, summary.DowntimeMinutes, 1e-9)
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &RunRecord{
			CreatedAt:          base.Add(time.Duration(i) * time.Hour),
			Satellites:         i + 1,
			GroundStations:     5,
			TimeSteps:          10,
			OrbitPeriodMinutes: 90,
		}
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 3, runs[0].Satellites, "newest run first")
	assert.Equal(t, 1, runs[2].Satellites)

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetRun_UnknownID(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetRun(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveRun_DuplicateIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := &RunRecord{ID: "fixed", Satellites: 1, GroundStations: 1, TimeSteps: 1, OrbitPeriodMinutes: 90}
	require.NoError(t, store.SaveRun(ctx, run))

	dup := &RunRecord{ID: "fixed", Satellites: 2, GroundStations: 2, TimeSteps: 2, OrbitPeriodMinutes: 90}
	assert.Error(t, store.SaveRun(ctx, dup))
}
