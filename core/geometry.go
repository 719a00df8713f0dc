package core

import "math"

// Physical constants shared by the geometry and link-budget layers.
// All positions in this package are ECI vectors in metres.
const (
	// EarthRadiusM is the mean Earth radius in metres.
	EarthRadiusM = 6371000.0

	// EarthMu is the Earth gravitational parameter in m^3/s^2.
	EarthMu = 3.986004418e14

	// SpeedOfLight is the speed of light in m/s.
	SpeedOfLight = 299792458.0

	// BoltzmannConstant in J/K, used for thermal noise power.
	BoltzmannConstant = 1.380649e-23
)

// Vec3 is an ECI position or velocity vector in metres (or m/s).
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// ElevationDegrees returns the elevation angle of the target as seen from the
// observer, in degrees. The observer's local zenith is its own position
// vector; the angle is arcsin of the projection of the observer→target vector
// onto that zenith. 0° = local horizon plane, 90° = overhead.
//
// This deliberately ignores horizon tilt from Earth curvature beyond the
// dot-product projection.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	r := observer.Norm()
	if r == 0 {
		return 90
	}

	sinEl := v.Dot(observer) / (vNorm * r)
	if sinEl > 1 {
		sinEl = 1
	} else if sinEl < -1 {
		sinEl = -1
	}
	return math.Asin(sinEl) * 180.0 / math.Pi
}

// LatLonAltToECI converts spherical-Earth coordinates to an ECI position in
// metres. Earth rotation is not modelled, so the result is frozen for the
// duration of a simulation run.
func LatLonAltToECI(latDeg, lonDeg, altM float64) Vec3 {
	r := EarthRadiusM + altM
	lat := latDeg * math.Pi / 180.0
	lon := lonDeg * math.Pi / 180.0
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}
