package metrics_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/coolctl/internal/controller"
	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	"codeberg.org/mutker/coolctl/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tick(i int) controller.Tick {
	return controller.Tick{
		Time:            time.Unix(1700000000+int64(i), 0),
		PumpSensor:      "kraken.coolant",
		PumpTemperature: 30 + float64(i)/10,
		PumpDuty:        60 + i,
		FanSensor:       "coretemp.package_id_0",
		FanTemperature:  45.5,
		FanDuty:         40,
	}
}

func countTicks(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&n))
	return n
}

func TestDisabledIsNoop(t *testing.T) {
	c, err := metrics.NewService(metrics.Config{Enabled: false}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, c.Observe(context.Background(), tick(0)))
	require.NoError(t, c.Close())
}

func TestEnabledRequiresPath(t *testing.T) {
	_, err := metrics.NewService(metrics.Config{Enabled: true}, logger.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrInvalidDBPath))
}

func TestRecordAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "metrics.db")
	cfg := metrics.Config{Enabled: true, DBPath: path, BatchSize: 2}

	c, err := metrics.NewService(cfg, logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Observe(ctx, tick(i)))
	}
	assert.Equal(t, 4, countTicks(t, path), "two full batches written")

	require.NoError(t, c.Close())
	assert.Equal(t, 5, countTicks(t, path), "partial batch flushed on close")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var sensor string
	var duty int
	require.NoError(t, db.QueryRow(
		"SELECT pump_sensor, pump_duty FROM ticks ORDER BY timestamp DESC LIMIT 1",
	).Scan(&sensor, &duty))
	assert.Equal(t, "kraken.coolant", sensor)
	assert.Equal(t, 64, duty)

	version, err := metrics.GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, metrics.SchemaVersion, version)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	cfg := metrics.Config{Enabled: true, DBPath: path, BatchSize: 1}

	for round := 0; round < 2; round++ {
		c, err := metrics.NewService(cfg, logger.Nop())
		require.NoError(t, err)
		require.NoError(t, c.Observe(context.Background(), tick(round)))
		require.NoError(t, c.Close())
	}

	assert.Equal(t, 2, countTicks(t, path))
}

func TestSchemaMismatchRecreates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE schema_versions (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL);
		INSERT INTO schema_versions VALUES (99, datetime('now'));
		CREATE TABLE ticks (legacy INTEGER);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := metrics.NewService(metrics.Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, c.Observe(context.Background(), tick(0)))
	require.NoError(t, c.Close())

	assert.Equal(t, 1, countTicks(t, path))

	backups, err := filepath.Glob(filepath.Join(dir, "backups", "metrics_v99_*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestObserveCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	c, err := metrics.NewService(metrics.Config{Enabled: true, DBPath: path, BatchSize: 1}, logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = c.Observe(ctx, tick(0))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrOperationTimeout))
}

func TestFailedBatchIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	c, err := metrics.NewService(metrics.Config{Enabled: true, DBPath: path, BatchSize: 2}, logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	bad := tick(0)
	bad.PumpDuty = 150

	require.NoError(t, c.Observe(ctx, bad))
	err = c.Observe(ctx, tick(1))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metrics.ErrTransactionFailed))

	require.NoError(t, c.Observe(ctx, tick(2)))
	require.NoError(t, c.Observe(ctx, tick(3)), "the rejected batch is not retried")
	require.NoError(t, c.Close())

	assert.Equal(t, 2, countTicks(t, path))
}
