package metrics

import "codeberg.org/mutker/coolctl/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("metrics_invalid_db_path")

	ErrSchemaInitFailed       = errors.ErrorCode("metrics_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("metrics_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("metrics_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("metrics_transaction_failed")

	ErrStorageInit  = errors.ErrInitMetrics
	ErrStorageClose = errors.ErrShutdownFailed

	ErrMetricsCollection = errors.ErrCollectMetrics
	ErrOperationTimeout  = errors.ErrTimeout
)
