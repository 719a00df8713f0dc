package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/signalsfoundry/leo-linksim/core"
)

// RunRecord is one archived comparison run with its per-architecture metric
// summaries.
type RunRecord struct {
	ID                 string
	CreatedAt          time.Time
	Satellites         int
	GroundStations     int
	TimeSteps          int
	OrbitPeriodMinutes float64
	Recommendation     string
	Metrics            map[core.ArchitectureKind]core.MetricsSummary
}

// Store persists comparison runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			satellites INTEGER NOT NULL,
			ground_stations INTEGER NOT NULL,
			time_steps INTEGER NOT NULL,
			orbit_period_minutes REAL NOT NULL,
			recommendation TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS run_metrics (
			run_id TEXT NOT NULL,
			architecture TEXT NOT NULL,
			average_latency_ms REAL,
			average_snr_db REAL,
			coverage_percentage REAL NOT NULL,
			feasible_percentage REAL NOT NULL,
			downtime_minutes REAL NOT NULL,
			uptime_percentage REAL NOT NULL,
			PRIMARY KEY (run_id, architecture),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// NewRunID allocates a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// SaveRun archives one comparison run. An empty ID is assigned a fresh UUID;
// the stored ID is written back into run.
func (s *Store) SaveRun(ctx context.Context, run *RunRecord) error {
	if run == nil {
		return fmt.Errorf("nil run record")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, satellites, ground_stations, time_steps, orbit_period_minutes, recommendation)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Satellites, run.GroundStations,
		run.TimeSteps, run.OrbitPeriodMinutes, run.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for arch, summary := range run.Metrics {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, architecture, average_latency_ms, average_snr_db,
				coverage_percentage, feasible_percentage, downtime_minutes, uptime_percentage)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, string(arch),
			finiteOrNull(summary.AverageLatencyMs), finiteOrNull(summary.AverageSNRdB),
			summary.CoveragePercentage, summary.FeasiblePercentage,
			summary.DowntimeMinutes, summary.UptimePercentage)
		if err != nil {
			return fmt.Errorf("failed to insert metrics for %s: %w", arch, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns archived runs, newest first, without their metric rows.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, satellites, ground_stations, time_steps, orbit_period_minutes, recommendation
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Satellites, &run.GroundStations,
			&run.TimeSteps, &run.OrbitPeriodMinutes, &run.Recommendation); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run with its metric summaries, or nil when the
// id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, satellites, ground_stations, time_steps, orbit_period_minutes, recommendation
		 FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.CreatedAt, &run.Satellites, &run.GroundStations,
		&run.TimeSteps, &run.OrbitPeriodMinutes, &run.Recommendation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT architecture, average_latency_ms, average_snr_db, coverage_percentage,
			feasible_percentage, downtime_minutes, uptime_percentage
		 FROM run_metrics WHERE run_id = ? ORDER BY architecture`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run metrics: %w", err)
	}
	defer rows.Close()

	run.Metrics = make(map[core.ArchitectureKind]core.MetricsSummary)
	for rows.Next() {
		var arch string
		var latency, snr sql.NullFloat64
		var summary core.MetricsSummary
		if err := rows.Scan(&arch, &latency, &snr, &summary.CoveragePercentage,
			&summary.FeasiblePercentage, &summary.DowntimeMinutes, &summary.UptimePercentage); err != nil {
			return nil, fmt.Errorf("failed to scan run metrics: %w", err)
		}
		// NULL restores the sentinel each column carries: NaN for the
		// latency mean, -Inf for the SNR mean.
		summary.AverageLatencyMs = math.NaN()
		if latency.Valid {
			summary.AverageLatencyMs = latency.Float64
		}
		summary.AverageSNRdB = math.Inf(-1)
		if snr.Valid {
			summary.AverageSNRdB = snr.Float64
		}
		run.Metrics[core.ArchitectureKind(arch)] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

func finiteOrNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
