package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/leo-linksim/core"
	"github.com/signalsfoundry/leo-linksim/internal/archive"
	"github.com/signalsfoundry/leo-linksim/internal/decision"
	"github.com/signalsfoundry/leo-linksim/internal/logging"
	"github.com/signalsfoundry/leo-linksim/internal/observability"
	"github.com/signalsfoundry/leo-linksim/timectrl"
)

func main() {
	satellites := flag.Int("satellites", 6, "number of satellites in the ring")
	altitudeKm := flag.Float64("altitude-km", 500, "orbit altitude in km")
	steps := flag.Int("steps", 50, "number of time steps")
	periodMin := flag.Float64("period-min", 90, "orbital period in minutes")
	requiredSNR := flag.Float64("required-snr", 0, "feasibility threshold in dB (0 = model default)")
	minElevation := flag.Float64("min-elevation", 0, "minimum elevation angle in degrees")
	crosslinkStations := flag.Int("crosslink-stations", 2, "stations kept by the crosslinked architecture")
	workers := flag.Int("workers", 1, "goroutines for crosslink pair evaluation")
	scenarioPath := flag.String("scenario", "", "JSON scenario file (overrides -satellites/-altitude-km)")
	tlePath := flag.String("tle", "", "TLE file seeding the constellation (overrides -satellites)")
	archivePath := flag.String("archive", "", "SQLite archive path; empty disables archiving")
	missionYears := flag.Int("mission-years", 10, "mission lifetime for the payback analysis")
	live := flag.Bool("live", false, "drive the run through the time controller, printing per-tick state")
	accelerated := flag.Bool("accelerated", true, "live mode: run ticks back to back instead of real time")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracing init failed: %v\n", err)
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	sats, stations, err := buildEntities(*scenarioPath, *tlePath, *satellites, *altitudeKm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}

	cfg := core.RunConfig{
		TimeSteps:               *steps,
		OrbitPeriodMinutes:      *periodMin,
		RequiredSNRdB:           *requiredSNR,
		MinElevationDeg:         *minElevation,
		CrosslinkGroundStations: *crosslinkStations,
	}

	if *live {
		if err := runLive(ctx, sats, stations, cfg, *accelerated); err != nil {
			fmt.Fprintf(os.Stderr, "live run failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runBatch(ctx, log, sats, stations, cfg, *workers, *archivePath, *missionYears); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func buildEntities(scenarioPath, tlePath string, satellites int, altitudeKm float64) ([]*core.Satellite, []*core.GroundStation, error) {
	if scenarioPath != "" {
		f, err := os.Open(scenarioPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open scenario %q: %w", scenarioPath, err)
		}
		defer f.Close()

		sats, stations, _, err := core.LoadScenario(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load scenario: %w", err)
		}
		return sats, stations, nil
	}

	if tlePath != "" {
		sets, err := readTLEFile(tlePath)
		if err != nil {
			return nil, nil, err
		}
		sats, err := core.ConstellationFromTLE(sets, time.Now().UTC(), core.DefaultRFConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("seed constellation from TLE: %w", err)
		}
		return sats, core.DefaultGroundStations(), nil
	}

	sats, err := core.NewConstellation(satellites, altitudeKm, core.DefaultRFConfig())
	if err != nil {
		return nil, nil, err
	}
	return sats, core.DefaultGroundStations(), nil
}

// readTLEFile parses a file of TLE entries: an optional name line followed by
// the two element lines.
func readTLEFile(path string) ([]core.TLESet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open TLE file %q: %w", path, err)
	}
	defer f.Close()

	var sets []core.TLESet
	var name, line1 string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "1 "):
			line1 = line
		case strings.HasPrefix(line, "2 "):
			if line1 == "" {
				return nil, fmt.Errorf("TLE file %q: line 2 without preceding line 1", path)
			}
			id := name
			if id == "" {
				id = fmt.Sprintf("TLE_%02d", len(sets)+1)
			}
			sets = append(sets, core.TLESet{ID: id, Line1: line1, Line2: line})
			name, line1 = "", ""
		default:
			name = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read TLE file %q: %w", path, err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("TLE file %q contains no element sets", path)
	}
	return sets, nil
}

func runBatch(ctx context.Context, log logging.Logger, sats []*core.Satellite, stations []*core.GroundStation, cfg core.RunConfig, workers int, archivePath string, missionYears int) error {
	opts := []core.Option{}
	if workers > 1 {
		opts = append(opts, core.WithWorkers(workers))
	}
	sim, err := core.NewSimulator(sats, stations, opts...)
	if err != nil {
		return err
	}

	tracer := otel.Tracer("linksim.cli")
	ctx, span := tracer.Start(ctx, "comparison_run")
	defer span.End()

	started := time.Now()
	result, err := sim.RunComparison(ctx, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	groundMetrics, err := core.CalculateCoverageMetrics(result.GroundStationOnly)
	if err != nil {
		return fmt.Errorf("ground-only metrics: %w", err)
	}
	crossMetrics, err := core.CalculateCoverageMetrics(result.Crosslinked)
	if err != nil {
		return fmt.Errorf("crosslinked metrics: %w", err)
	}

	log.Info(ctx, "comparison run complete",
		logging.Int("satellites", len(sats)),
		logging.Int("time_steps", cfg.TimeSteps),
		logging.String("elapsed", elapsed.String()),
	)

	fmt.Printf("Constellation: %d satellites, %d ground stations, %d steps over %.1f min\n\n",
		len(sats), len(stations), cfg.TimeSteps, cfg.OrbitPeriodMinutes)
	printSummary("Ground-station-only", len(result.GroundStationOnly), groundMetrics)
	printSummary("Crosslinked", len(result.Crosslinked), crossMetrics)

	crosslinkStations := cfg.CrosslinkGroundStations
	if crosslinkStations == 0 {
		crosslinkStations = 2
	}
	cost, err := decision.Compare(len(sats), len(stations), crosslinkStations)
	if err != nil {
		return fmt.Errorf("cost comparison: %w", err)
	}
	payback := decision.Payback(cost, missionYears)

	fmt.Printf("Cost comparison\n")
	fmt.Printf("  ground-only CapEx:   $%.1fM\n", cost.GroundOnly.TotalCapexUSD/1e6)
	fmt.Printf("  crosslinked CapEx:   $%.1fM (ISL hardware $%.1fM)\n",
		cost.Crosslinked.TotalCapexUSD/1e6, cost.Crosslinked.ISLHardwareCostUSD/1e6)
	fmt.Printf("  CapEx savings:       $%.1fM (%.1f%%)\n", cost.CostSavingsUSD/1e6, cost.SavingsPercentage)
	fmt.Printf("  OpEx savings (%dy):  $%.1fM\n", missionYears, payback.TotalOpexSavingsUSD/1e6)
	fmt.Printf("  tipping point:       %d satellites\n", decision.TippingPointSatellites(len(stations), crosslinkStations))
	fmt.Printf("  recommendation:      %s\n", cost.Recommendation)

	if archivePath != "" {
		store, err := archive.Open(archivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer store.Close()

		run := &archive.RunRecord{
			Satellites:         len(sats),
			GroundStations:     len(stations),
			TimeSteps:          cfg.TimeSteps,
			OrbitPeriodMinutes: cfg.OrbitPeriodMinutes,
			Recommendation:     string(cost.Recommendation),
			Metrics: map[core.ArchitectureKind]core.MetricsSummary{
				core.ArchitectureGroundOnly:  groundMetrics,
				core.ArchitectureCrosslinked: crossMetrics,
			},
		}
		if err := store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		fmt.Printf("\nArchived run %s to %s\n", run.ID, archivePath)
	}
	return nil
}

func printSummary(name string, records int, m core.MetricsSummary) {
	fmt.Printf("%s (%d records)\n", name, records)
	fmt.Printf("  coverage:  %6.2f%%   feasible: %6.2f%%\n", m.CoveragePercentage, m.FeasiblePercentage)
	fmt.Printf("  uptime:    %6.2f%%   downtime: %.2f min\n", m.UptimePercentage, m.DowntimeMinutes)
	fmt.Printf("  avg latency: %s   avg SNR: %s\n\n",
		formatMs(m.AverageLatencyMs), formatDB(m.AverageSNRdB))
}

func formatMs(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f ms", v)
}

func formatDB(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf dB"
	}
	return fmt.Sprintf("%.2f dB", v)
}

// runLive steps the ground-only evaluation through the time controller,
// printing each satellite's best link as simulation time advances.
func runLive(ctx context.Context, sats []*core.Satellite, stations []*core.GroundStation, cfg core.RunConfig, accelerated bool) error {
	if _, err := core.NewSimulator(sats, stations); err != nil {
		return err
	}

	mode := timectrl.RealTime
	if accelerated {
		mode = timectrl.Accelerated
	}
	tick := time.Duration(cfg.StepSeconds() * float64(time.Second))
	tc := timectrl.NewTimeController(time.Now().UTC(), tick, mode)

	tc.AddListener(func(step int, now time.Time) {
		dt := cfg.StepSeconds()
		for _, sat := range sats {
			sat.UpdatePosition(dt)
		}
		fmt.Printf("[%s] step %d\n", now.Format(time.RFC3339), step)
		for _, sat := range sats {
			rec, err := core.EvaluateBestGroundLink(sat, stations, cfg, step, float64(step)*dt/60)
			if err != nil {
				fmt.Printf("  %s: evaluation error: %v\n", sat.ID, err)
				continue
			}
			if rec.PeerID == "" {
				fmt.Printf("  %-8s no station visible\n", sat.ID)
				continue
			}
			fmt.Printf("  %-8s -> %-8s SNR=%6.2f dB feasible=%-5v latency=%s\n",
				sat.ID, rec.PeerID, rec.SNRdB, rec.IsFeasible, formatMs(rec.LatencyMs))
		}
	})

	fmt.Printf("Live run: %d steps, tick=%s, mode=%v\n", cfg.TimeSteps, tick, mode)
	if err := tc.Run(ctx, cfg.TimeSteps); err != nil {
		return err
	}
	fmt.Println("Live run complete.")
	return nil
}
