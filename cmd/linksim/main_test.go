package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/leo-linksim/core"
	"github.com/signalsfoundry/leo-linksim/timectrl"
)

func TestReadTLEFile(t *testing.T) {
	content := `ISS (ZARYA)
1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990
2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760

1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990
2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760
`
	path := filepath.Join(t.TempDir(), "constellation.tle")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write TLE file: %v", err)
	}

	sets, err := readTLEFile(path)
	if err != nil {
		t.Fatalf("readTLEFile: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("got %d TLE sets, want 2", len(sets))
	}
	if sets[0].ID != "ISS (ZARYA)" {
		t.Errorf("first set id = %q, want name line", sets[0].ID)
	}
	if sets[1].ID != "TLE_02" {
		t.Errorf("unnamed set id = %q, want generated TLE_02", sets[1].ID)
	}
}

func TestReadTLEFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tle")
	if err := os.WriteFile(path, []byte("2 25544 orphan line two\n"), 0o644); err != nil {
		t.Fatalf("write TLE file: %v", err)
	}
	if _, err := readTLEFile(path); err == nil {
		t.Fatal("expected error for orphan line 2")
	}

	empty := filepath.Join(t.TempDir(), "empty.tle")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	if _, err := readTLEFile(empty); err == nil {
		t.Fatal("expected error for empty TLE file")
	}
}

func TestBuildEntities_DefaultRing(t *testing.T) {
	sats, stations, err := buildEntities("", "", 4, 550)
	if err != nil {
		t.Fatalf("buildEntities: %v", err)
	}
	if len(sats) != 4 {
		t.Fatalf("got %d satellites, want 4", len(sats))
	}
	if len(stations) != 5 {
		t.Fatalf("got %d stations, want the stock 5", len(stations))
	}
}

func TestBuildEntities_Scenario(t *testing.T) {
	scenario := `{
		"satellites": [
			{"id": "SAT_A", "altitude_km": 500, "phase_deg": 0},
			{"id": "SAT_B", "altitude_km": 500, "phase_deg": 180}
		],
		"ground_stations": [
			{"id": "GS_EQ", "latitude_deg": 0, "longitude_deg": 0}
		]
	}`
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, []byte(scenario), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	sats, stations, err := buildEntities(path, "", 99, 999)
	if err != nil {
		t.Fatalf("buildEntities: %v", err)
	}
	if len(sats) != 2 || len(stations) != 1 {
		t.Fatalf("scenario should override flags: got %d sats, %d stations", len(sats), len(stations))
	}
	if sats[0].ID != "SAT_A" {
		t.Errorf("satellite id = %q, want SAT_A", sats[0].ID)
	}
}

// TestIntegration_LiveTicks drives a tiny accelerated live loop end to end.
func TestIntegration_LiveTicks(t *testing.T) {
	sats, err := core.NewConstellation(2, 500, core.DefaultRFConfig())
	if err != nil {
		t.Fatalf("NewConstellation: %v", err)
	}
	gs, err := core.NewGroundStation("GS_EQ", 0, 0, 0, 30, 290)
	if err != nil {
		t.Fatalf("NewGroundStation: %v", err)
	}
	stations := []*core.GroundStation{gs}
	cfg := core.RunConfig{TimeSteps: 5, OrbitPeriodMinutes: 90}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := time.Duration(cfg.StepSeconds() * float64(time.Second))
	tc := timectrl.NewTimeController(start, tick, timectrl.Accelerated)

	ticks := 0
	tc.AddListener(func(step int, now time.Time) {
		dt := cfg.StepSeconds()
		for _, sat := range sats {
			sat.UpdatePosition(dt)
		}
		for _, sat := range sats {
			if _, err := core.EvaluateBestGroundLink(sat, stations, cfg, step, float64(step)*dt/60); err != nil {
				t.Errorf("step %d: EvaluateBestGroundLink: %v", step, err)
			}
		}
		ticks++
	})

	if err := tc.Run(context.Background(), cfg.TimeSteps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ticks != cfg.TimeSteps {
		t.Fatalf("listener fired %d times, want %d", ticks, cfg.TimeSteps)
	}
	if want := start.Add(time.Duration(cfg.TimeSteps) * tick); !tc.Now().Equal(want) {
		t.Fatalf("sim time = %v, want %v", tc.Now(), want)
	}
}
