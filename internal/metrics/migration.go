package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
)

const backupDirName = "backups"

var managedTables = []string{"ticks", "schema_versions"}

// ValidateAndUpdateSchema brings db to SchemaVersion. A database written by
// another version is copied into a backups directory beside dbPath, then
// dropped and recreated.
func ValidateAndUpdateSchema(db *sql.DB, dbPath string, log logger.Logger) error {
	errFactory := errors.New()

	found, err := GetSchemaVersion(db)
	if err != nil {
		return errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	switch found {
	case SchemaVersion:
		log.Debug().Int("version", found).Msg("Schema is current")
		return nil
	case 0:
		return InitSchema(db, log)
	}

	backup, err := backupDatabase(db, dbPath, found)
	if err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}
	log.Warn().
		Int("found", found).
		Int("expected", SchemaVersion).
		Str("backup", backup).
		Msg("Schema version mismatch, recreating metrics database")

	err = inTx(db, log, func(tx *sql.Tx) error {
		for _, table := range managedTables {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return fmt.Errorf("drop %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return errFactory.Wrap(ErrSchemaMigrationFailed, err)
	}

	return InitSchema(db, log)
}

// backupDatabase snapshots db with VACUUM INTO and returns the backup path.
func backupDatabase(db *sql.DB, dbPath string, version int) (string, error) {
	dir := filepath.Join(filepath.Dir(dbPath), backupDirName)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return "", err
	}

	name := fmt.Sprintf("metrics_v%d_%s.db", version, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dir, name)

	// must run outside a transaction
	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return "", errors.New().Wrap(ErrSchemaMigrationFailed, err).WithData(path)
	}

	return path, nil
}
