package metrics

import (
	"database/sql"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

// SchemaVersion is bumped whenever the ticks table changes shape.
const SchemaVersion = 1

const (
	createTablesSQL = `
CREATE TABLE IF NOT EXISTS schema_versions (
	version    INTEGER PRIMARY KEY,
	applied_at TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS ticks (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp        INTEGER NOT NULL,
	pump_sensor      TEXT    NOT NULL,
	pump_temperature REAL    NOT NULL,
	pump_duty        INTEGER NOT NULL CHECK (pump_duty BETWEEN 0 AND 100),
	fan_sensor       TEXT    NOT NULL,
	fan_temperature  REAL    NOT NULL,
	fan_duty         INTEGER NOT NULL CHECK (fan_duty BETWEEN 0 AND 100)
);
CREATE INDEX IF NOT EXISTS ticks_timestamp ON ticks (timestamp);`

	recordVersionSQL = `INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))`

	selectVersionSQL = `SELECT MAX(version) FROM schema_versions`

	tableExistsSQL = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`

	insertTickSQL = `
INSERT INTO ticks (
	timestamp,
	pump_sensor, pump_temperature, pump_duty,
	fan_sensor, fan_temperature, fan_duty
) VALUES (?, ?, ?, ?, ?, ?, ?)`
)

// InitSchema creates the tables and records SchemaVersion in one
// transaction.
func InitSchema(db *sql.DB, log logger.Logger) error {
	err := inTx(db, log, func(tx *sql.Tx) error {
		if _, err := tx.Exec(createTablesSQL); err != nil {
			return err
		}
		_, err := tx.Exec(recordVersionSQL, SchemaVersion)
		return err
	})
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	log.Info().Int("version", SchemaVersion).Msg("Schema initialized")

	return nil
}

// GetSchemaVersion returns the highest recorded schema version, or 0 when
// the database has never been initialized.
func GetSchemaVersion(db *sql.DB) (int, error) {
	errFactory := errors.New()

	ok, err := tableExists(db, "schema_versions")
	if err != nil || !ok {
		return 0, err
	}

	var version sql.NullInt64
	if err := db.QueryRow(selectVersionSQL).Scan(&version); err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	return int(version.Int64), nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	if err := db.QueryRow(tableExistsSQL, name).Scan(&n); err != nil {
		return false, errors.New().Wrap(ErrSchemaValidationFailed, err).WithData(name)
	}

	return n > 0, nil
}

// inTx runs fn in a transaction, rolling back if fn fails.
func inTx(db *sql.DB, log logger.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Debug().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	return tx.Commit()
}
