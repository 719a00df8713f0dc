package core

import (
	"context"
	"math"
	"sync"
	"time"
)

// MetricsRecorder receives simulation-level measurements. The core never
// imports an instrumentation library; the observability layer plugs in here.
type MetricsRecorder interface {
	ObserveRun(architecture ArchitectureKind, seconds float64, records int)
	ObserveEvaluation(architecture ArchitectureKind, link LinkKind, feasible bool)
}

// RunConfig parameterises one comparison run. Zero values for the optional
// fields select the model defaults.
type RunConfig struct {
	TimeSteps          int
	OrbitPeriodMinutes float64

	BandwidthHz     float64 // default 1 MHz
	RequiredSNRdB   float64 // default 10 dB
	MinElevationDeg float64 // default 0°

	// CrosslinkGroundStations is how many stations (taken from the front of
	// the configured list) the crosslinked architecture keeps as its
	// reduced ground segment. Default 2.
	CrosslinkGroundStations int
}

func (c RunConfig) withDefaults() RunConfig {
	if c.BandwidthHz == 0 {
		c.BandwidthHz = DefaultBandwidthHz
	}
	if c.RequiredSNRdB == 0 {
		c.RequiredSNRdB = RequiredSNRdB
	}
	if c.CrosslinkGroundStations == 0 {
		c.CrosslinkGroundStations = 2
	}
	return c
}

func (c RunConfig) validate() error {
	if c.TimeSteps <= 0 {
		return &ConfigError{Field: "time_steps", Reason: "must be positive"}
	}
	if c.OrbitPeriodMinutes <= 0 {
		return &ConfigError{Field: "orbit_period_minutes", Reason: "must be positive"}
	}
	return nil
}

// StepSeconds returns the step duration dt derived from the orbital period.
func (c RunConfig) StepSeconds() float64 {
	return c.OrbitPeriodMinutes * 60 / float64(c.TimeSteps)
}

// ComparisonResult holds the two per-architecture record streams.
type ComparisonResult struct {
	GroundStationOnly []LinkEvaluation `json:"ground_station_only"`
	Crosslinked       []LinkEvaluation `json:"crosslinked"`
}

// Simulator owns the satellite and ground-station collections for the
// duration of a run. Each policy run operates on its own working copy of the
// constellation, so RunComparison is repeatable on the same Simulator.
type Simulator struct {
	satellites []*Satellite
	stations   []*GroundStation

	recorder MetricsRecorder
	workers  int
}

// Option customises a Simulator.
type Option func(*Simulator)

// WithMetricsRecorder attaches an instrumentation sink.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// WithWorkers sets the number of goroutines used to evaluate crosslink pairs
// per step. Values below 2 keep the loop sequential. Record order is
// deterministic regardless of worker count.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.workers = n }
}

// NewSimulator validates the entity collections and builds a simulator.
// Empty collections fail fast; the core must not silently produce an empty
// result.
func NewSimulator(satellites []*Satellite, stations []*GroundStation, opts ...Option) (*Simulator, error) {
	if len(satellites) == 0 {
		return nil, &ConfigError{Field: "satellites", Reason: "must not be empty"}
	}
	if len(stations) == 0 {
		return nil, &ConfigError{Field: "ground_stations", Reason: "must not be empty"}
	}
	for _, sat := range satellites {
		if sat == nil {
			return nil, &ConfigError{Field: "satellites", Reason: "must not contain nil entries"}
		}
	}
	for _, gs := range stations {
		if gs == nil {
			return nil, &ConfigError{Field: "ground_stations", Reason: "must not contain nil entries"}
		}
	}

	s := &Simulator{satellites: satellites, stations: stations}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Satellites returns the simulator's satellite collection. Callers must not
// mutate entries while a run is in progress.
func (s *Simulator) Satellites() []*Satellite { return s.satellites }

// GroundStations returns the configured ground segment.
func (s *Simulator) GroundStations() []*GroundStation { return s.stations }

// RunComparison runs both architecture policies over the same initial
// constellation state and returns their record streams.
func (s *Simulator) RunComparison(ctx context.Context, cfg RunConfig) (*ComparisonResult, error) {
	ground, err := s.SimulateGroundStationOnly(ctx, cfg)
	if err != nil {
		return nil, err
	}
	crosslinked, err := s.SimulateCrosslinked(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ComparisonResult{
		GroundStationOnly: ground,
		Crosslinked:       crosslinked,
	}, nil
}

// SimulateGroundStationOnly emits exactly one record per satellite per step:
// the best visible station by SNR, or a sentinel record when no station is
// visible.
func (s *Simulator) SimulateGroundStationOnly(ctx context.Context, cfg RunConfig) ([]LinkEvaluation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	sats := cloneSatellites(s.satellites)
	dt := cfg.StepSeconds()

	records := make([]LinkEvaluation, 0, cfg.TimeSteps*len(sats))
	for step := 0; step < cfg.TimeSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, &RunError{Architecture: ArchitectureGroundOnly, Step: step, Err: err}
		}

		elapsedMinutes := float64(step) * dt / 60

		// Advance every satellite to this step's position before any link
		// is evaluated.
		for _, sat := range sats {
			sat.UpdatePosition(dt)
		}

		for _, sat := range sats {
			rec, err := EvaluateBestGroundLink(sat, s.stations, cfg, step, elapsedMinutes)
			if err != nil {
				return nil, &RunError{Architecture: ArchitectureGroundOnly, Step: step, Err: err}
			}
			s.observe(rec)
			records = append(records, rec)
		}
	}

	s.observeRun(ArchitectureGroundOnly, time.Since(start), len(records))
	return records, nil
}

// SimulateCrosslinked emits one record per visible satellite pair per step
// (no best-of selection) plus one record per satellite against the
// architecture's reduced ground segment.
func (s *Simulator) SimulateCrosslinked(ctx context.Context, cfg RunConfig) ([]LinkEvaluation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	sats := cloneSatellites(s.satellites)
	dt := cfg.StepSeconds()

	groundSegment := s.stations
	if len(groundSegment) > cfg.CrosslinkGroundStations {
		groundSegment = groundSegment[:cfg.CrosslinkGroundStations]
	}

	pairs := satellitePairs(len(sats))
	snapshot := make([]Vec3, len(sats))

	var records []LinkEvaluation
	for step := 0; step < cfg.TimeSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, &RunError{Architecture: ArchitectureCrosslinked, Step: step, Err: err}
		}

		elapsedMinutes := float64(step) * dt / 60

		for _, sat := range sats {
			sat.UpdatePosition(dt)
		}
		// Freeze this step's positions: every pair evaluation reads the
		// snapshot, so the O(N²) loop is order-independent and safe to
		// partition across workers.
		for i, sat := range sats {
			snapshot[i] = sat.Position
		}

		pairRecords, err := s.evaluateCrosslinkPairs(sats, snapshot, pairs, cfg, step, elapsedMinutes)
		if err != nil {
			return nil, &RunError{Architecture: ArchitectureCrosslinked, Step: step, Err: err}
		}
		for _, rec := range pairRecords {
			s.observe(rec)
		}
		records = append(records, pairRecords...)

		for _, sat := range sats {
			for _, gs := range groundSegment {
				q := SatelliteToGround{
					SatPosition:     sat.Position,
					StationPosition: gs.Position,
					MinElevationDeg: cfg.MinElevationDeg,
				}
				if !q.Visible() {
					continue
				}
				rec, err := evaluateGroundLink(sat, gs, ArchitectureCrosslinked, cfg, step, elapsedMinutes)
				if err != nil {
					return nil, &RunError{Architecture: ArchitectureCrosslinked, Step: step, Err: err}
				}
				s.observe(rec)
				records = append(records, rec)
			}
		}
	}

	s.observeRun(ArchitectureCrosslinked, time.Since(start), len(records))
	return records, nil
}

// evaluateCrosslinkPairs evaluates every unordered satellite pair against the
// frozen position snapshot. With more than one worker, the pair index space
// is partitioned and each worker writes only its own slots, so output order
// matches the sequential loop exactly.
func (s *Simulator) evaluateCrosslinkPairs(sats []*Satellite, snapshot []Vec3, pairs [][2]int, cfg RunConfig, step int, elapsedMinutes float64) ([]LinkEvaluation, error) {
	out := make([]LinkEvaluation, len(pairs))
	errs := make([]error, len(pairs))

	eval := func(k int) {
		i, j := pairs[k][0], pairs[k][1]
		if !(SatelliteToSatellite{A: snapshot[i], B: snapshot[j]}).Visible() {
			// Unreachable under the current always-visible model; kept so a
			// future occlusion-aware query slots in without loop changes.
			errs[k] = nil
			return
		}
		out[k], errs[k] = evaluateCrosslink(sats[i], sats[j], snapshot[i], snapshot[j], cfg, step, elapsedMinutes)
	}

	if s.workers < 2 || len(pairs) < 2 {
		for k := range pairs {
			eval(k)
		}
	} else {
		var wg sync.WaitGroup
		chunk := (len(pairs) + s.workers - 1) / s.workers
		for lo := 0; lo < len(pairs); lo += chunk {
			hi := lo + chunk
			if hi > len(pairs) {
				hi = len(pairs)
			}
			wg.Add(1)
			go func(lo, hi int) {
				defer wg.Done()
				for k := lo; k < hi; k++ {
					eval(k)
				}
			}(lo, hi)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EvaluateBestGroundLink selects, among all stations visible from sat, the
// one with the highest SNR (signal quality wins, not proximity), and returns
// the corresponding record. When no station is visible the record carries the
// no-link sentinels.
func EvaluateBestGroundLink(sat *Satellite, stations []*GroundStation, cfg RunConfig, step int, elapsedMinutes float64) (LinkEvaluation, error) {
	cfg = cfg.withDefaults()

	var best *GroundStation
	bestSNR := math.Inf(-1)
	bestDistance := math.Inf(1)

	for _, gs := range stations {
		q := SatelliteToGround{
			SatPosition:     sat.Position,
			StationPosition: gs.Position,
			MinElevationDeg: cfg.MinElevationDeg,
		}
		if !q.Visible() {
			continue
		}

		distance := sat.Position.DistanceTo(gs.Position)
		received, err := FriisReceivedPower(
			sat.TransmitPowerDBW, sat.AntennaGainDBi, gs.AntennaGainDBi,
			distance, sat.FrequencyGHz*1e9,
			DefaultAtmosphericLossDB, DefaultSystemLossDB,
		)
		if err != nil {
			return LinkEvaluation{}, err
		}
		snrDB, _ := SNR(received, cfg.BandwidthHz, gs.SystemTemperatureK)

		if snrDB > bestSNR {
			bestSNR = snrDB
			bestDistance = distance
			best = gs
		}
	}

	rec := LinkEvaluation{
		TimeStep:    step,
		TimeMinutes: elapsedMinutes,
		SatelliteID: sat.ID,
		Type:        ArchitectureGroundOnly,
		LinkType:    LinkSatelliteToGround,
	}

	if best == nil {
		rec.PeerID = ""
		rec.DistanceM = math.NaN()
		rec.SNRdB = math.Inf(-1)
		rec.IsFeasible = false
		rec.LatencyMs = math.NaN()
		rec.Coverage = 0
		return rec, nil
	}

	rec.PeerID = best.ID
	rec.DistanceM = bestDistance
	rec.SNRdB = bestSNR
	rec.IsFeasible = IsFeasible(bestSNR, cfg.RequiredSNRdB)
	rec.LatencyMs = Latency(bestDistance, DefaultProcessingDelayMs, false)
	if rec.IsFeasible {
		rec.Coverage = 1
	}
	return rec, nil
}

func evaluateCrosslink(tx, rx *Satellite, txPos, rxPos Vec3, cfg RunConfig, step int, elapsedMinutes float64) (LinkEvaluation, error) {
	distance := txPos.DistanceTo(rxPos)
	received, err := FriisReceivedPower(
		tx.TransmitPowerDBW, tx.AntennaGainDBi, rx.AntennaGainDBi,
		distance, tx.FrequencyGHz*1e9,
		DefaultAtmosphericLossDB, DefaultSystemLossDB,
	)
	if err != nil {
		return LinkEvaluation{}, err
	}
	snrDB, _ := SNR(received, cfg.BandwidthHz, DefaultSystemTempK)
	feasible := IsFeasible(snrDB, cfg.RequiredSNRdB)

	rec := LinkEvaluation{
		TimeStep:    step,
		TimeMinutes: elapsedMinutes,
		SatelliteID: tx.ID,
		Type:        ArchitectureCrosslinked,
		LinkType:    LinkSatelliteToSatellite,
		PeerID:      rx.ID,
		DistanceM:   distance,
		SNRdB:       snrDB,
		IsFeasible:  feasible,
		LatencyMs:   Latency(distance, DefaultProcessingDelayMs, true),
	}
	if feasible {
		rec.Coverage = 1
	}
	return rec, nil
}

func evaluateGroundLink(sat *Satellite, gs *GroundStation, arch ArchitectureKind, cfg RunConfig, step int, elapsedMinutes float64) (LinkEvaluation, error) {
	distance := sat.Position.DistanceTo(gs.Position)
	received, err := FriisReceivedPower(
		sat.TransmitPowerDBW, sat.AntennaGainDBi, gs.AntennaGainDBi,
		distance, sat.FrequencyGHz*1e9,
		DefaultAtmosphericLossDB, DefaultSystemLossDB,
	)
	if err != nil {
		return LinkEvaluation{}, err
	}
	snrDB, _ := SNR(received, cfg.BandwidthHz, gs.SystemTemperatureK)
	feasible := IsFeasible(snrDB, cfg.RequiredSNRdB)

	rec := LinkEvaluation{
		TimeStep:    step,
		TimeMinutes: elapsedMinutes,
		SatelliteID: sat.ID,
		Type:        arch,
		LinkType:    LinkSatelliteToGround,
		PeerID:      gs.ID,
		DistanceM:   distance,
		SNRdB:       snrDB,
		IsFeasible:  feasible,
		LatencyMs:   Latency(distance, DefaultProcessingDelayMs, false),
	}
	if feasible {
		rec.Coverage = 1
	}
	return rec, nil
}

func (s *Simulator) observe(rec LinkEvaluation) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveEvaluation(rec.Type, rec.LinkType, rec.IsFeasible)
}

func (s *Simulator) observeRun(arch ArchitectureKind, d time.Duration, records int) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveRun(arch, d.Seconds(), records)
}

func cloneSatellites(sats []*Satellite) []*Satellite {
	out := make([]*Satellite, len(sats))
	for i, sat := range sats {
		out[i] = sat.Clone()
	}
	return out
}

// satellitePairs enumerates unordered index pairs (i < j) in the same order
// a nested loop would visit them.
func satellitePairs(n int) [][2]int {
	pairs := make([][2]int, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}
