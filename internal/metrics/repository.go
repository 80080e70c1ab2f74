package metrics

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/coolctl/internal/errors"
	"codeberg.org/mutker/coolctl/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db       *sql.DB
	logger   logger.Logger
	cfg      Config
	mu       sync.Mutex
	buffer   []*TickRecord
	ticker   *time.Ticker
	shutdown chan struct{}
	done     chan struct{}
	closed   bool
}

// NewRepository opens (creating if needed) the SQLite database at cfg.DBPath.
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := ValidateAndUpdateSchema(db, cfg.DBPath, log); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Int("batch_size", cfg.BatchSize).
		Int("batch_timeout", cfg.BatchTimeout).
		Msg("Metrics repository initialized")

	repo := &repository{
		db:       db,
		logger:   log,
		cfg:      cfg,
		buffer:   make([]*TickRecord, 0, cfg.BatchSize),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	if cfg.BatchTimeout > 0 {
		repo.ticker = time.NewTicker(time.Duration(cfg.BatchTimeout) * time.Second)
		go repo.flusher()
	} else {
		close(repo.done)
	}

	return repo, nil
}

func (r *repository) Record(record *TickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New().WithMessage(ErrStorageClose, "repository closed")
	}

	r.buffer = append(r.buffer, record)
	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

// Close writes any buffered ticks and closes the database.
func (r *repository) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.shutdown)
	if r.ticker != nil {
		r.ticker.Stop()
	}
	<-r.done

	r.mu.Lock()
	flushErr := r.flush()
	r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		r.logger.Debug().Err(err).Msg("Failed to checkpoint WAL")
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	r.logger.Info().Msg("Metrics repository closed")

	return flushErr
}

func (r *repository) flusher() {
	defer close(r.done)

	for {
		select {
		case <-r.ticker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.logger.Warn().Err(err).Msg("Periodic flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdown:
			return
		}
	}
}

// flush writes the buffer in one transaction. Callers hold r.mu. A batch that
// fails to write is dropped so a broken database cannot grow the buffer.
func (r *repository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	batch := r.buffer
	r.buffer = make([]*TickRecord, 0, r.cfg.BatchSize)

	if err := r.write(batch); err != nil {
		r.logger.Warn().Err(err).Int("dropped", len(batch)).Msg("Dropped tick batch")
		return err
	}

	r.logger.Debug().Int("records", len(batch)).Msg("Flushed ticks to database")

	return nil
}

func (r *repository) write(batch []*TickRecord) error {
	errFactory := errors.New()

	err := inTx(r.db, r.logger, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertTickSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range batch {
			if _, err := stmt.Exec(
				rec.Timestamp.Unix(),
				rec.PumpSensor, rec.PumpTemperature, rec.PumpDuty,
				rec.FanSensor, rec.FanTemperature, rec.FanDuty,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	return nil
}
