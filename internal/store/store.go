// Package store archives transport runs and their sampled paths in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kunok-chang/Radiation-Safety/internal/store/migrations"
	"github.com/kunok-chang/Radiation-Safety/internal/transport"
)

var ErrNotFound = errors.New("run not found")

// Run is one archived ensemble.
type Run struct {
	ID                     int64
	CreatedAt              time.Time
	AttenuationCoefficient float64
	DomainRadius           float64
	BoundaryCheckRadius    float64
	FixedStepSize          float64
	PhotonCount            int
	Seed                   uint64
	Units                  string
	CrossingCount          int
	Absorbed               int
	Escaped                int
	Diverged               int
	MeanInteractions       float64
	Elapsed                time.Duration
}

// Store persists runs in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite run archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun stores the run summary and its retained paths in one transaction
// and returns the new run id.
func (s *Store) SaveRun(ctx context.Context, cfg transport.Config, res *transport.EnsembleResult) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if res == nil {
		return 0, fmt.Errorf("result is required")
	}
	units := cfg.Units
	if units == "" {
		units = transport.Units
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
		   created_at, attenuation_coefficient, domain_radius, boundary_check_radius,
		   fixed_step_size, photon_count, seed, units, crossing_count,
		   absorbed, escaped, diverged, mean_interactions, elapsed_ms
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.now().UTC().UnixMilli(),
		cfg.AttenuationCoefficient,
		cfg.DomainRadius,
		cfg.BoundaryCheckRadius,
		cfg.FixedStepSize,
		res.PhotonCount,
		int64(res.Seed),
		units,
		res.CrossingCount,
		res.Absorbed,
		res.Escaped,
		res.Diverged,
		res.MeanInteractions,
		res.Elapsed.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO path_points (run_id, photon, seq, x, y, z) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare path insert: %w", err)
	}
	defer stmt.Close()
	for photon, path := range res.Paths {
		for seq, p := range path {
			if _, err := stmt.ExecContext(ctx, id, photon, seq, p.X, p.Y, p.Z); err != nil {
				return 0, fmt.Errorf("insert path point: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

const runColumns = `id, created_at, attenuation_coefficient, domain_radius, boundary_check_radius,
	fixed_step_size, photon_count, seed, units, crossing_count, absorbed, escaped,
	diverged, mean_interactions, elapsed_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r         Run
		createdAt int64
		seed      int64
		elapsedMS int64
	)
	if err := row.Scan(&r.ID, &createdAt, &r.AttenuationCoefficient, &r.DomainRadius,
		&r.BoundaryCheckRadius, &r.FixedStepSize, &r.PhotonCount, &seed, &r.Units,
		&r.CrossingCount, &r.Absorbed, &r.Escaped, &r.Diverged, &r.MeanInteractions,
		&elapsedMS); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.UnixMilli(createdAt).UTC()
	r.Seed = uint64(seed)
	r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}

// GetRun returns one archived run.
func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadPaths returns the retained paths of a run ordered by photon index.
func (s *Store) LoadPaths(ctx context.Context, id int64) ([]transport.Path, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT photon, x, y, z FROM path_points WHERE run_id = ? ORDER BY photon, seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load paths: %w", err)
	}
	defer rows.Close()

	var paths []transport.Path
	for rows.Next() {
		var (
			photon int
			p      transport.Point3
		)
		if err := rows.Scan(&photon, &p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("scan path point: %w", err)
		}
		for len(paths) <= photon {
			paths = append(paths, nil)
		}
		paths[photon] = append(paths[photon], p)
	}
	return paths, rows.Err()
}
