package core

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TLESet is one two-line element set plus the ID the resulting satellite
// should carry.
type TLESet struct {
	ID    string
	Line1 string
	Line2 string
}

// ConstellationFromTLE seeds satellites from live orbital-element data: each
// TLE is propagated with SGP4 to the given epoch, and the resulting ECI state
// becomes the satellite's initial position and velocity. From there the
// simple circular propagator takes over, with the orbit radius derived from
// the seeded position.
//
// All SGP4 work happens here, strictly before simulation start; the
// simulation loop itself never touches TLE data.
func ConstellationFromTLE(sets []TLESet, epoch time.Time, rf RFConfig) ([]*Satellite, error) {
	if len(sets) == 0 {
		return nil, &ConfigError{Field: "tle_sets", Reason: "must not be empty"}
	}

	const kmToM = 1000.0

	sats := make([]*Satellite, 0, len(sets))
	for i, set := range sets {
		if set.ID == "" {
			return nil, fmt.Errorf("tle source: entry %d has empty id", i)
		}
		if set.Line1 == "" || set.Line2 == "" {
			return nil, fmt.Errorf("tle source: entry %q missing TLE lines", set.ID)
		}

		sat := satellite.TLEToSat(set.Line1, set.Line2, satellite.GravityWGS72)

		year, month, day := epoch.Date()
		hour, min, sec := epoch.Clock()
		posKm, velKm := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

		pos := Vec3{X: posKm.X * kmToM, Y: posKm.Y * kmToM, Z: posKm.Z * kmToM}
		vel := Vec3{X: velKm.X * kmToM, Y: velKm.Y * kmToM, Z: velKm.Z * kmToM}

		altitudeKm := (pos.Norm() - EarthRadiusM) / 1000.0
		if altitudeKm <= 0 {
			return nil, fmt.Errorf("tle source: entry %q propagated below the surface (altitude %.1f km)", set.ID, altitudeKm)
		}

		out, err := NewSatellite(set.ID, pos, vel, rf, altitudeKm)
		if err != nil {
			return nil, fmt.Errorf("tle source: entry %q: %w", set.ID, err)
		}
		sats = append(sats, out)
	}
	return sats, nil
}
