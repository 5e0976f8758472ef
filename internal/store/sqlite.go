package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS routes (
	county       TEXT NOT NULL,
	site         TEXT NOT NULL,
	distance_km  REAL NOT NULL,
	geometry     TEXT NOT NULL DEFAULT '',
	retrieved_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (county, site)
);

CREATE TABLE IF NOT EXISTS sim_runs (
	id         TEXT PRIMARY KEY,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sim_runs_status ON sim_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertRoute(ctx context.Context, r Route) error {
	if r.RetrievedAt.IsZero() {
		r.RetrievedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routes (county, site, distance_km, geometry, retrieved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (county, site) DO UPDATE SET
			distance_km = excluded.distance_km,
			geometry = excluded.geometry,
			retrieved_at = excluded.retrieved_at`,
		r.County, r.Site, r.DistanceKm, r.Geometry, r.RetrievedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert route (%s, %s)", r.County, r.Site)
}

// GetRoute returns nil when the pair has not been retrieved.
func (s *SQLiteStore) GetRoute(ctx context.Context, county, site string) (*Route, error) {
	var r Route
	err := s.db.QueryRowContext(ctx,
		`SELECT county, site, distance_km, geometry, retrieved_at FROM routes WHERE county = ? AND site = ?`,
		county, site,
	).Scan(&r.County, &r.Site, &r.DistanceKm, &r.Geometry, &r.RetrievedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get route (%s, %s)", county, site)
	}
	return &r, nil
}

func (s *SQLiteStore) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT county, site, distance_km, geometry, retrieved_at FROM routes ORDER BY county, site`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list routes")
	}
	defer func() { _ = rows.Close() }()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.County, &r.Site, &r.DistanceKm, &r.Geometry, &r.RetrievedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan route")
		}
		routes = append(routes, r)
	}
	return routes, eris.Wrap(rows.Err(), "sqlite: iterate routes")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, paramsJSON string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sim_runs (id, params, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, paramsJSON, string(RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{ID: id, Params: paramsJSON, Status: RunStatusRunning, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID, summaryJSON string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sim_runs SET status = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusComplete), summaryJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sim_runs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var summary, errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, params, status, summary, error, created_at, updated_at FROM sim_runs WHERE id = ?`,
		runID,
	).Scan(&r.ID, &r.Params, &r.Status, &summary, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	r.Summary = summary.String
	r.Error = errMsg.String
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, params, status, summary, error, created_at, updated_at FROM sim_runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var summary, errMsg sql.NullString
		if err := rows.Scan(&r.ID, &r.Params, &r.Status, &summary, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Summary = summary.String
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}
