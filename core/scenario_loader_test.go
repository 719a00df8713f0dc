package core

import (
	"math"
	"strings"
	"testing"
)

const validScenario = `{
  "satellites": [
    {"id": "SAT_01", "altitude_km": 500, "phase_deg": 0},
    {"id": "SAT_02", "altitude_km": 500, "phase_deg": 180, "transmit_power_dbw": 23, "frequency_ghz": 8.2}
  ],
  "ground_stations": [
    {"id": "GS_01", "latitude_deg": 40.7128, "longitude_deg": -74.0060},
    {"id": "GS_02", "latitude_deg": 0, "longitude_deg": 20, "antenna_gain_dbi": 35, "system_temperature_k": 150}
  ]
}`

func TestLoadScenario_Valid(t *testing.T) {
	sats, stations, summary, err := LoadScenario(strings.NewReader(validScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if len(sats) != 2 || len(stations) != 2 {
		t.Fatalf("got %d satellites, %d stations; want 2 and 2", len(sats), len(stations))
	}
	if len(summary.SatelliteIDs) != 2 || len(summary.StationIDs) != 2 {
		t.Fatalf("summary mismatch: %+v", summary)
	}

	// Defaults fill the unset RF fields.
	if sats[0].TransmitPowerDBW != 20 || sats[0].FrequencyGHz != 2.4 {
		t.Errorf("SAT_01 defaults not applied: %+v", sats[0])
	}
	// Explicit overrides win.
	if sats[1].TransmitPowerDBW != 23 || sats[1].FrequencyGHz != 8.2 {
		t.Errorf("SAT_02 overrides not applied: %+v", sats[1])
	}
	// Phase placement: SAT_02 at 180° sits on the -X axis.
	if sats[1].Position.X >= 0 {
		t.Errorf("SAT_02 phase not applied, position %+v", sats[1].Position)
	}

	if stations[0].AntennaGainDBi != 30 || stations[0].SystemTemperatureK != 290 {
		t.Errorf("GS_01 defaults not applied: %+v", stations[0])
	}
	if stations[1].AntennaGainDBi != 35 || stations[1].SystemTemperatureK != 150 {
		t.Errorf("GS_02 overrides not applied: %+v", stations[1])
	}
	if got := stations[0].Position.Norm(); math.Abs(got-EarthRadiusM) > 1e-5 {
		t.Errorf("GS_01 |position| = %v, want %v", got, EarthRadiusM)
	}
}

func TestLoadScenario_RejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"bad json":            `{`,
		"empty satellite id":  `{"satellites":[{"id":"","altitude_km":500}]}`,
		"missing altitude":    `{"satellites":[{"id":"SAT_01"}]}`,
		"empty station id":    `{"ground_stations":[{"id":"","latitude_deg":0,"longitude_deg":0}]}`,
		"missing coordinates": `{"ground_stations":[{"id":"GS_01"}]}`,
	}
	for name, payload := range cases {
		if _, _, _, err := LoadScenario(strings.NewReader(payload)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
