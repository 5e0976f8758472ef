package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// for tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool, for teams sharing one
// route cache.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests to inject a
// pgxmock pool.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS routes (
	county       TEXT NOT NULL,
	site         TEXT NOT NULL,
	distance_km  DOUBLE PRECISION NOT NULL,
	geometry     TEXT NOT NULL DEFAULT '',
	retrieved_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (county, site)
);

CREATE TABLE IF NOT EXISTS sim_runs (
	id         TEXT PRIMARY KEY,
	params     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_sim_runs_status ON sim_runs(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertRoute(ctx context.Context, r Route) error {
	if r.RetrievedAt.IsZero() {
		r.RetrievedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO routes (county, site, distance_km, geometry, retrieved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (county, site) DO UPDATE SET
			distance_km = EXCLUDED.distance_km,
			geometry = EXCLUDED.geometry,
			retrieved_at = EXCLUDED.retrieved_at`,
		r.County, r.Site, r.DistanceKm, r.Geometry, r.RetrievedAt,
	)
	return eris.Wrapf(err, "postgres: upsert route (%s, %s)", r.County, r.Site)
}

// GetRoute returns nil when the pair has not been retrieved.
func (s *PostgresStore) GetRoute(ctx context.Context, county, site string) (*Route, error) {
	var r Route
	err := s.pool.QueryRow(ctx,
		`SELECT county, site, distance_km, geometry, retrieved_at FROM routes WHERE county = $1 AND site = $2`,
		county, site,
	).Scan(&r.County, &r.Site, &r.DistanceKm, &r.Geometry, &r.RetrievedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get route (%s, %s)", county, site)
	}
	return &r, nil
}

func (s *PostgresStore) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT county, site, distance_km, geometry, retrieved_at FROM routes ORDER BY county, site`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list routes")
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.County, &r.Site, &r.DistanceKm, &r.Geometry, &r.RetrievedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan route")
		}
		routes = append(routes, r)
	}
	return routes, eris.Wrap(rows.Err(), "postgres: iterate routes")
}

func (s *PostgresStore) CreateRun(ctx context.Context, paramsJSON string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sim_runs (id, params, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, paramsJSON, string(RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &Run{ID: id, Params: paramsJSON, Status: RunStatusRunning, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID, summaryJSON string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sim_runs SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
		string(RunStatusComplete), summaryJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sim_runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(RunStatusFailed), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	var r Run
	var summary, errMsg *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, params, status, summary, error, created_at, updated_at FROM sim_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Params, &r.Status, &summary, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if summary != nil {
		r.Summary = *summary
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, params, status, summary, error, created_at, updated_at FROM sim_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var summary, errMsg *string
		if err := rows.Scan(&r.ID, &r.Params, &r.Status, &summary, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if summary != nil {
			r.Summary = *summary
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
