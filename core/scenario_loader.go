package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// Scenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging from main().
type Scenario struct {
	SatelliteIDs []string
	StationIDs   []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type scenarioJSON struct {
	Satellites     []satelliteJSON     `json:"satellites"`
	GroundStations []groundStationJSON `json:"ground_stations"`
}

type satelliteJSON struct {
	ID               string   `json:"id"`
	AltitudeKm       float64  `json:"altitude_km"`
	PhaseDeg         float64  `json:"phase_deg"`
	TransmitPowerDBW *float64 `json:"transmit_power_dbw"`
	AntennaGainDBi   *float64 `json:"antenna_gain_dbi"`
	FrequencyGHz     *float64 `json:"frequency_ghz"`
}

type groundStationJSON struct {
	ID                 string   `json:"id"`
	LatitudeDeg        *float64 `json:"latitude_deg"`
	LongitudeDeg       *float64 `json:"longitude_deg"`
	AltitudeM          float64  `json:"altitude_m"`
	AntennaGainDBi     *float64 `json:"antenna_gain_dbi"`
	SystemTemperatureK *float64 `json:"system_temperature_k"`
}

// LoadScenario reads a JSON constellation scenario from r and returns the
// constructed entities. Malformed entries (missing ids, missing coordinates,
// non-positive altitudes) surface as construction-time errors here, never
// inside the simulation loop.
func LoadScenario(r io.Reader) ([]*Satellite, []*GroundStation, *Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, nil, nil, fmt.Errorf("load scenario: decode failed: %w", err)
	}

	defaults := DefaultRFConfig()
	summary := &Scenario{
		SatelliteIDs: make([]string, 0, len(payload.Satellites)),
		StationIDs:   make([]string, 0, len(payload.GroundStations)),
	}

	sats := make([]*Satellite, 0, len(payload.Satellites))
	for i, js := range payload.Satellites {
		if js.ID == "" {
			return nil, nil, nil, fmt.Errorf("load scenario: satellite %d has empty id", i)
		}

		rf := defaults
		if js.TransmitPowerDBW != nil {
			rf.TransmitPowerDBW = *js.TransmitPowerDBW
		}
		if js.AntennaGainDBi != nil {
			rf.AntennaGainDBi = *js.AntennaGainDBi
		}
		if js.FrequencyGHz != nil {
			rf.FrequencyGHz = *js.FrequencyGHz
		}

		sat, err := NewRingSatellite(js.ID, js.AltitudeKm, js.PhaseDeg, rf)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load scenario: satellite %q: %w", js.ID, err)
		}
		sats = append(sats, sat)
		summary.SatelliteIDs = append(summary.SatelliteIDs, js.ID)
	}

	stations := make([]*GroundStation, 0, len(payload.GroundStations))
	for i, js := range payload.GroundStations {
		if js.ID == "" {
			return nil, nil, nil, fmt.Errorf("load scenario: ground station %d has empty id", i)
		}
		if js.LatitudeDeg == nil || js.LongitudeDeg == nil {
			return nil, nil, nil, fmt.Errorf("load scenario: ground station %q missing coordinates", js.ID)
		}

		gain := 30.0
		if js.AntennaGainDBi != nil {
			gain = *js.AntennaGainDBi
		}
		temp := DefaultSystemTempK
		if js.SystemTemperatureK != nil {
			temp = *js.SystemTemperatureK
		}

		gs, err := NewGroundStation(js.ID, *js.LatitudeDeg, *js.LongitudeDeg, js.AltitudeM, gain, temp)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load scenario: ground station %q: %w", js.ID, err)
		}
		stations = append(stations, gs)
		summary.StationIDs = append(summary.StationIDs, js.ID)
	}

	return sats, stations, summary, nil
}
