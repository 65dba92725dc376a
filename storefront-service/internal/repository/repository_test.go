package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupSQLite(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func setupPostgres(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := Credentials{Host: host, Port: port.Int(), User: "testuser", Password: "testpass", DBName: "testdb"}
	repo, err := NewRepository(DriverPostgres, creds.DSN())
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// both runs fn against every backend available to the test run.
func both(t *testing.T, fn func(t *testing.T, repo *Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupSQLite(t)) })
	t.Run("postgres", func(t *testing.T) { fn(t, setupPostgres(t)) })
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	_, err := NewRepository("mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupSQLite(t)
	assert.NoError(t, repo.RunMigrations())
}

func TestRebind(t *testing.T) {
	pg := &Repository{driver: DriverPostgres}
	lite := &Repository{driver: DriverSQLite}
	q := `UPDATE t SET a = ? WHERE b = ? AND c = ?`

	assert.Equal(t, `UPDATE t SET a = $1 WHERE b = $2 AND c = $3`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestSubmissions(t *testing.T) {
	both(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		done, err := repo.SucceededSubmissions(ctx, "ref-1")
		require.NoError(t, err)
		assert.Empty(t, done)

		require.NoError(t, repo.RecordSubmission(ctx, "ref-1", "aggregate", checkout.StatusSucceeded, at))
		require.NoError(t, repo.RecordSubmission(ctx, "ref-1", "vendor:a@shop.test", checkout.StatusFailed, at))
		require.NoError(t, repo.RecordSubmission(ctx, "ref-2", "aggregate", checkout.StatusSucceeded, at))

		done, err = repo.SucceededSubmissions(ctx, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"aggregate": true}, done)

		// a retry overwrites the failed outcome
		require.NoError(t, repo.RecordSubmission(ctx, "ref-1", "vendor:a@shop.test", checkout.StatusSucceeded, at.Add(time.Minute)))

		done, err = repo.SucceededSubmissions(ctx, "ref-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"aggregate": true, "vendor:a@shop.test": true}, done)
	})
}

func TestClaimReference(t *testing.T) {
	both(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()

		require.NoError(t, repo.ClaimReference(ctx, "ref-1", "cart-a"))
		require.NoError(t, repo.ClaimReference(ctx, "ref-1", "cart-a"), "same cart may resume")
		assert.ErrorIs(t, repo.ClaimReference(ctx, "ref-1", "cart-b"), checkout.ErrReferenceReused)

		require.NoError(t, repo.ClaimReference(ctx, "ref-2", "cart-b"))
	})
}

func TestOutbox(t *testing.T) {
	both(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()

		require.NoError(t, repo.CompleteCheckout(ctx, "ref-1", []byte(`{"payment_ref":"ref-1"}`)))
		require.NoError(t, repo.CompleteCheckout(ctx, "ref-1", []byte(`{"payment_ref":"ref-1"}`)), "duplicate completion is ignored")
		require.NoError(t, repo.CompleteCheckout(ctx, "ref-2", []byte(`{"payment_ref":"ref-2"}`)))

		events, err := repo.GetUnprocessedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "ref-1", events[0].AggregateId)
		assert.Equal(t, EventCheckoutCompleted, events[0].EventType)
		assert.JSONEq(t, `{"payment_ref":"ref-1"}`, string(events[0].Payload))

		require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

		events, err = repo.GetUnprocessedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ref-2", events[0].AggregateId)

		assert.ErrorIs(t, repo.MarkEventAsProcessed(ctx, "missing"), ErrEventNotFound)
	})
}

func TestGetUnprocessedEvents_Limit(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	for _, ref := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CompleteCheckout(ctx, ref, []byte(`{}`)))
	}

	events, err := repo.GetUnprocessedEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestContextCancellation(t *testing.T) {
	repo := setupSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.SucceededSubmissions(ctx, "ref-1")
	assert.Error(t, err)
}

func TestRepositorySatisfiesLedger(t *testing.T) {
	var _ checkout.Ledger = (*Repository)(nil)
}
