package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPostgresFromPool(mock), mock
}

func TestPostgresUpsertRoute(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	retrieved := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO routes").
		WithArgs("Hennepin", "Mille Lacs", 152.3, "_p~iF", retrieved).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.UpsertRoute(context.Background(), Route{
		County:      "Hennepin",
		Site:        "Mille Lacs",
		DistanceKm:  152.3,
		Geometry:    "_p~iF",
		RetrievedAt: retrieved,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRoute(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	retrieved := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT county, site, distance_km").
		WithArgs("Hennepin", "Mille Lacs").
		WillReturnRows(pgxmock.
			NewRows([]string{"county", "site", "distance_km", "geometry", "retrieved_at"}).
			AddRow("Hennepin", "Mille Lacs", 152.3, "", retrieved))

	got, err := s.GetRoute(context.Background(), "Hennepin", "Mille Lacs")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 152.3, got.DistanceKm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRouteMissing(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT county, site, distance_km").
		WithArgs("Hennepin", "Unknown").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetRoute(context.Background(), "Hennepin", "Unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRunNotFound(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE sim_runs").
		WithArgs(string(RunStatusComplete), `{}`, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", `{}`)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRuns(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	now := time.Now().UTC()
	summary := `{"trials":10}`

	mock.ExpectQuery("SELECT id, params, status, summary, error").
		WithArgs(50).
		WillReturnRows(pgxmock.
			NewRows([]string{"id", "params", "status", "summary", "error", "created_at", "updated_at"}).
			AddRow("run-1", `{}`, string(RunStatusComplete), &summary, (*string)(nil), now, now).
			AddRow("run-2", `{}`, string(RunStatusRunning), (*string)(nil), (*string)(nil), now, now))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, summary, runs[0].Summary)
	assert.Empty(t, runs[1].Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}
