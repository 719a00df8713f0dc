package core

import (
	"fmt"
	"math"
)

// RFConfig carries the radio parameters shared by every satellite built by a
// constellation builder.
type RFConfig struct {
	TransmitPowerDBW float64
	AntennaGainDBi   float64
	FrequencyGHz     float64
}

// DefaultRFConfig mirrors the stock mission parameters used by the decision
// dashboards: 20 dBW / 20 dBi at S-band.
func DefaultRFConfig() RFConfig {
	return RFConfig{
		TransmitPowerDBW: 20.0,
		AntennaGainDBi:   20.0,
		FrequencyGHz:     2.4,
	}
}

// Satellite is a LEO satellite in a circular equatorial orbit. Position and
// velocity are mutated in place by UpdatePosition; the Simulator owns them
// exclusively for the duration of a run.
type Satellite struct {
	ID string

	Position Vec3 // metres, ECI
	Velocity Vec3 // m/s

	TransmitPowerDBW float64
	AntennaGainDBi   float64
	FrequencyGHz     float64

	OrbitAltitudeKm float64

	// orbitRadius = EarthRadiusM + altitude; the circular propagator keeps
	// |Position| pinned to this value.
	orbitRadius float64
}

// NewSatellite constructs a satellite at an explicit initial state.
func NewSatellite(id string, position, velocity Vec3, rf RFConfig, altitudeKm float64) (*Satellite, error) {
	if id == "" {
		return nil, &ConfigError{Field: "satellite.id", Reason: "must not be empty"}
	}
	if altitudeKm <= 0 {
		return nil, &ConfigError{Field: "satellite.altitude_km", Reason: "must be positive"}
	}
	if rf.FrequencyGHz <= 0 {
		return nil, &ConfigError{Field: "satellite.frequency_ghz", Reason: "must be positive"}
	}
	return &Satellite{
		ID:               id,
		Position:         position,
		Velocity:         velocity,
		TransmitPowerDBW: rf.TransmitPowerDBW,
		AntennaGainDBi:   rf.AntennaGainDBi,
		FrequencyGHz:     rf.FrequencyGHz,
		OrbitAltitudeKm:  altitudeKm,
		orbitRadius:      EarthRadiusM + altitudeKm*1000.0,
	}, nil
}

// OrbitRadius returns the derived circular-orbit radius in metres.
func (s *Satellite) OrbitRadius() float64 { return s.orbitRadius }

// UpdatePosition advances the satellite by dt seconds along its circular
// equatorial orbit. The new angle is the current atan2(y, x) plus ω·dt with
// ω = sqrt(μ/r³); z stays constant and velocity is the tangential vector.
func (s *Satellite) UpdatePosition(dt float64) {
	omega := math.Sqrt(EarthMu / (s.orbitRadius * s.orbitRadius * s.orbitRadius))

	angle := math.Atan2(s.Position.Y, s.Position.X) + omega*dt

	s.Position.X = s.orbitRadius * math.Cos(angle)
	s.Position.Y = s.orbitRadius * math.Sin(angle)
	// Z unchanged: out-of-plane motion is not modelled.

	s.Velocity.X = -omega * s.orbitRadius * math.Sin(angle)
	s.Velocity.Y = omega * s.orbitRadius * math.Cos(angle)
	s.Velocity.Z = 0
}

// Clone returns an independent copy so a policy run can mutate positions
// without affecting the caller's entities.
func (s *Satellite) Clone() *Satellite {
	c := *s
	return &c
}

// GroundStation is a fixed ground terminal. Its ECI position is computed once
// at construction and never changes (sidereal rotation is not modelled).
type GroundStation struct {
	ID string

	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeM    float64

	AntennaGainDBi     float64
	SystemTemperatureK float64

	Position Vec3 // metres, ECI, frozen
}

// NewGroundStation builds a station and freezes its ECI position.
func NewGroundStation(id string, latDeg, lonDeg, altM, gainDBi, systemTempK float64) (*GroundStation, error) {
	if id == "" {
		return nil, &ConfigError{Field: "ground_station.id", Reason: "must not be empty"}
	}
	if latDeg < -90 || latDeg > 90 {
		return nil, &ConfigError{Field: "ground_station.latitude_deg", Reason: "must be within [-90, 90]"}
	}
	if systemTempK <= 0 {
		return nil, &ConfigError{Field: "ground_station.system_temperature_k", Reason: "must be positive"}
	}
	return &GroundStation{
		ID:                 id,
		LatitudeDeg:        latDeg,
		LongitudeDeg:       lonDeg,
		AltitudeM:          altM,
		AntennaGainDBi:     gainDBi,
		SystemTemperatureK: systemTempK,
		Position:           LatLonAltToECI(latDeg, lonDeg, altM),
	}, nil
}

// NewRingSatellite places a satellite on the equatorial ring at the given
// altitude and phase angle, with the matching circular-orbit velocity.
func NewRingSatellite(id string, altitudeKm, phaseDeg float64, rf RFConfig) (*Satellite, error) {
	if altitudeKm <= 0 {
		return nil, &ConfigError{Field: "satellite.altitude_km", Reason: "must be positive"}
	}

	orbitRadius := EarthRadiusM + altitudeKm*1000.0
	omega := math.Sqrt(EarthMu / (orbitRadius * orbitRadius * orbitRadius))
	angle := phaseDeg * math.Pi / 180.0

	pos := Vec3{
		X: orbitRadius * math.Cos(angle),
		Y: orbitRadius * math.Sin(angle),
	}
	vel := Vec3{
		X: -omega * orbitRadius * math.Sin(angle),
		Y: omega * orbitRadius * math.Cos(angle),
	}
	return NewSatellite(id, pos, vel, rf, altitudeKm)
}

// NewConstellation builds n satellites evenly spaced around a circular
// equatorial orbit at the given altitude, all sharing the same RF parameters.
// IDs follow the SAT_01, SAT_02, ... convention.
func NewConstellation(n int, altitudeKm float64, rf RFConfig) ([]*Satellite, error) {
	if n <= 0 {
		return nil, &ConfigError{Field: "num_satellites", Reason: "must be positive"}
	}

	sats := make([]*Satellite, 0, n)
	for i := 0; i < n; i++ {
		phaseDeg := 360 * float64(i) / float64(n)
		sat, err := NewRingSatellite(fmt.Sprintf("SAT_%02d", i+1), altitudeKm, phaseDeg, rf)
		if err != nil {
			return nil, err
		}
		sats = append(sats, sat)
	}
	return sats, nil
}

// DefaultGroundStations returns the stock five-station global network used by
// the decision dashboards: New York, London, Tokyo, Sydney, Moscow.
func DefaultGroundStations() []*GroundStation {
	specs := []struct {
		id       string
		lat, lon float64
	}{
		{"GS_01", 40.7128, -74.0060},
		{"GS_02", 51.5074, -0.1278},
		{"GS_03", 35.6762, 139.6503},
		{"GS_04", -33.8688, 151.2093},
		{"GS_05", 55.7558, 37.6176},
	}

	stations := make([]*GroundStation, 0, len(specs))
	for _, sp := range specs {
		gs, err := NewGroundStation(sp.id, sp.lat, sp.lon, 0, 30.0, 290.0)
		if err != nil {
			// The stock set is statically valid; a failure here is a bug.
			panic(err)
		}
		stations = append(stations, gs)
	}
	return stations
}
