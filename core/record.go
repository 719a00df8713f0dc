package core

// ArchitectureKind tags which communication architecture produced a record.
type ArchitectureKind string

const (
	ArchitectureGroundOnly  ArchitectureKind = "ground_station_only"
	ArchitectureCrosslinked ArchitectureKind = "crosslinked"
)

// LinkKind distinguishes crosslink records from ground-link records.
type LinkKind string

const (
	LinkSatelliteToGround    LinkKind = "satellite_to_ground"
	LinkSatelliteToSatellite LinkKind = "satellite_to_satellite"
)

// LinkEvaluation is one evaluated link candidate at one time step. It is a
// transient record, never persisted state: the aggregator only reads the
// emitted stream.
//
// A no-link condition is a normal record, not an error: SNRdB is −Inf,
// DistanceM and LatencyMs are NaN, IsFeasible is false. Downstream
// aggregation treats these as included observations.
//
// The JSON field names are the column contract consumed by external
// reporting and plotting; peer_id rides in ground_station_id, which also
// carries the far satellite for crosslink records.
type LinkEvaluation struct {
	TimeStep    int              `json:"time_step"`
	TimeMinutes float64          `json:"time_minutes"`
	SatelliteID string           `json:"satellite_id"`
	Type        ArchitectureKind `json:"constellation_type"`
	LinkType    LinkKind         `json:"link_type"`

	// PeerID identifies the link's far end: a ground station for
	// satellite_to_ground, the second satellite for satellite_to_satellite,
	// empty when no link was found.
	PeerID string `json:"ground_station_id"`

	DistanceM  float64 `json:"distance_m"`
	SNRdB      float64 `json:"snr_dB"`
	IsFeasible bool    `json:"is_feasible"`
	LatencyMs  float64 `json:"latency_ms"`

	// Coverage mirrors IsFeasible as 1.0/0.0. It is kept as a separate
	// field: it is the natural extension point for partial-coverage
	// semantics even though the values are identical today.
	Coverage float64 `json:"coverage"`
}

// MetricsSummary is the per-architecture reduction of a LinkEvaluation
// stream. It carries no independent state and is fully recomputable.
type MetricsSummary struct {
	CoveragePercentage float64 `json:"coverage_percentage"`
	FeasiblePercentage float64 `json:"feasible_percentage"`
	AverageLatencyMs   float64 `json:"average_latency_ms"`
	AverageSNRdB       float64 `json:"average_snr_dB"`
	DowntimeMinutes    float64 `json:"downtime_minutes"`
	UptimePercentage   float64 `json:"uptime_percentage"`
}
