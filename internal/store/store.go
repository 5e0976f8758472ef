// Package store persists retrieved route data and simulation runs. The
// route cache exists because every Directions query costs API quota: a
// (county, site) pair is fetched once and reused across runs.
package store

import (
	"context"
	"time"
)

// Route is one cached road route between a county seat and a site.
type Route struct {
	County      string    `json:"county"`
	Site        string    `json:"site"`
	DistanceKm  float64   `json:"distance_km"`
	Geometry    string    `json:"geometry,omitempty"` // encoded polyline
	RetrievedAt time.Time `json:"retrieved_at"`
}

// RunStatus tracks a simulation run's lifecycle.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted simulation run: its parameters as JSON, and once
// complete, the aggregated summary as JSON.
type Run struct {
	ID        string    `json:"id"`
	Params    string    `json:"params"`
	Status    RunStatus `json:"status"`
	Summary   string    `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the persistence interface shared by the SQLite and Postgres
// backends.
type Store interface {
	// Route cache
	UpsertRoute(ctx context.Context, r Route) error
	GetRoute(ctx context.Context, county, site string) (*Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	// Simulation runs
	CreateRun(ctx context.Context, paramsJSON string) (*Run, error)
	CompleteRun(ctx context.Context, runID, summaryJSON string) error
	FailRun(ctx context.Context, runID, errMsg string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
