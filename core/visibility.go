package core

// VisibilityQuery decides whether a candidate link's endpoints can see each
// other. There is one implementation per participant pairing, selected
// statically by the caller rather than by runtime type inspection. Queries
// operate on position snapshots so evaluation never depends on entity
// mutation order within a step.
type VisibilityQuery interface {
	Visible() bool
}

// SatelliteToSatellite treats any two satellites as mutually visible.
//
// Known model simplification: no Earth-occlusion test is applied, so two
// crosslink satellites on opposite sides of Earth still count as visible.
// LEO crosslink geometries in this model's altitude range are treated as
// essentially always-clear.
type SatelliteToSatellite struct {
	A, B Vec3
}

func (SatelliteToSatellite) Visible() bool { return true }

// SatelliteToGround checks the elevation of the satellite above the station's
// local horizon plane against a minimum elevation threshold.
type SatelliteToGround struct {
	SatPosition     Vec3
	StationPosition Vec3
	MinElevationDeg float64
}

func (q SatelliteToGround) Visible() bool {
	return ElevationDegrees(q.StationPosition, q.SatPosition) >= q.MinElevationDeg
}
